package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/event-rsvp/internal/service"
	"github.com/msomdec/event-rsvp/internal/view"
)

// HandleRoot sends signed-in users home and everyone else to the login
// page. Any other unmatched path is a 404.
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		view.NotFoundPage(UserFromContext(r.Context())).Render(r.Context(), w)
		return
	}
	if UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HomeHandler renders the upcoming events page.
type HomeHandler struct {
	events *service.EventService
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(events *service.EventService) *HomeHandler {
	return &HomeHandler{events: events}
}

// HandleHome lists the next upcoming events.
// GET /home
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	events, err := h.events.GetUpcomingEvents(r.Context(), user.ID)
	if err != nil {
		slog.Error("get upcoming events", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view.HomePage(user, events).Render(r.Context(), w)
}
