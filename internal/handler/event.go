package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/msomdec/event-rsvp/internal/domain"
	"github.com/msomdec/event-rsvp/internal/service"
	"github.com/msomdec/event-rsvp/internal/view"
	datastar "github.com/starfederation/datastar-go/datastar"
)

// EventHandler serves the event pages and their live fragments.
type EventHandler struct {
	events        *service.EventService
	registrations *service.RegistrationService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events *service.EventService, registrations *service.RegistrationService) *EventHandler {
	return &EventHandler{events: events, registrations: registrations}
}

// HandleNewEventPage renders the create event form with the default start.
// GET /events/new
func (h *EventHandler) HandleNewEventPage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	form := view.NewEventForm{Start: h.events.DefaultStart().Format(service.InputLayout)}
	view.NewEventPage(user, form, nil).Render(r.Context(), w)
}

// HandleCreateEvent validates the form and redirects to the new event.
// POST /events/new
func (h *EventHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := view.NewEventForm{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Start:       r.PostFormValue("start"),
	}
	eventID, err := h.events.CreateEvent(r.Context(), user.ID, form.Name, form.Description, form.Start)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			w.WriteHeader(http.StatusBadRequest)
			view.NewEventPage(user, form, validationMessages(err)).Render(r.Context(), w)
			return
		}
		slog.Error("create event", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/events/"+strconv.FormatInt(eventID, 10), http.StatusSeeOther)
}

// HandleEventPage renders an event with attendees, registrations and feed.
// GET /events/{eventID}
func (h *EventHandler) HandleEventPage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := domain.ParseID("event", r.PathValue("eventID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	detail, err := h.events.FindEventAndRegistrations(r.Context(), user.ID, eventID)
	if err != nil {
		slog.Error("find event and registrations", "event_id", eventID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if detail == nil {
		w.WriteHeader(http.StatusNotFound)
		view.NotFoundPage(user).Render(r.Context(), w)
		return
	}

	view.EventPage(user, detail).Render(r.Context(), w)
}

// HandleRegistrationsPage renders one page of an event's registrations.
// An offset that is not a non-negative integer is treated as 0.
// GET /events/{eventID}/registrations?offset=
func (h *EventHandler) HandleRegistrationsPage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := domain.ParseID("event", r.PathValue("eventID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	base := "/events/" + strconv.FormatInt(eventID, 10) + "/registrations"
	urlFor := func(windowStart, total, size, offset int) string {
		return base + "?" + url.Values{"offset": {strconv.Itoa(windowStart)}}.Encode()
	}

	roster, err := h.events.RegistrationRoster(r.Context(), user.ID, eventID, offset, urlFor)
	if err != nil {
		slog.Error("list registrations", "event_id", eventID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if roster == nil {
		w.WriteHeader(http.StatusNotFound)
		view.NotFoundPage(user).Render(r.Context(), w)
		return
	}

	view.RegistrationsPage(user, roster).Render(r.Context(), w)
}

// HandlePostFeed posts the feedText signal to the event feed and patches
// the refreshed feed list via SSE.
// POST /events/{eventID}/feed
func (h *EventHandler) HandlePostFeed(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := domain.ParseID("event", r.PathValue("eventID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var signals struct {
		FeedText string `json:"feedText"`
	}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if _, err := h.events.CreateFeedItem(r.Context(), user.ID, eventID, signals.FeedText); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			http.Error(w, "Bad Request", http.StatusBadRequest)
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Not Found", http.StatusNotFound)
		default:
			slog.Error("create feed item", "event_id", eventID, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	feed, err := h.events.FeedItems(r.Context(), user.ID, eventID)
	if err != nil {
		slog.Error("load feed items", "event_id", eventID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if feed == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.FeedItemsFragment(feed),
		datastar.WithSelectorID(view.FeedItemsID),
		datastar.WithModeInner(),
	)
	sse.PatchElementTempl(view.FeedCountFragment(feed.Total))
	sse.MarshalAndPatchSignals(map[string]any{"feedText": ""})
}

// HandleRSVP records the caller's attendance and patches the RSVP block.
// POST /events/{eventID}/rsvp?attending=true|false
func (h *EventHandler) HandleRSVP(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := domain.ParseID("event", r.PathValue("eventID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	attending, err := strconv.ParseBool(r.URL.Query().Get("attending"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	reg, err := h.registrations.RSVP(r.Context(), user.ID, eventID, attending)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("rsvp", "event_id", eventID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.RSVPFragment(eventID, &domain.MyRegistration{ID: reg.ID, Attending: reg.Attending}))
}

// validationMessages splits a joined validation error into one message per
// failure without the sentinel prefix.
func validationMessages(err error) []string {
	var msgs []string
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimPrefix(line, domain.ErrInvalidInput.Error()+": ")
		if line != "" {
			msgs = append(msgs, strings.ToUpper(line[:1])+line[1:])
		}
	}
	return msgs
}
