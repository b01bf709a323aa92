package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/event-rsvp/internal/domain"
	"github.com/msomdec/event-rsvp/internal/service"
	"github.com/msomdec/event-rsvp/internal/view"
)

// SetupHandler serves the user administration screens.
type SetupHandler struct {
	users       *service.UserService
	invitations *service.InvitationService
}

// NewSetupHandler creates a new SetupHandler.
func NewSetupHandler(users *service.UserService, invitations *service.InvitationService) *SetupHandler {
	return &SetupHandler{users: users, invitations: invitations}
}

// HandleUsers lists users.
// GET /setup/users
func (h *SetupHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	page, err := h.users.ListUsers(r.Context())
	if err != nil {
		slog.Error("list users", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	view.UsersPage(user, page).Render(r.Context(), w)
}

// HandleUser shows one user.
// GET /setup/users/{userID}
func (h *SetupHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	userID, err := domain.ParseID("user", r.PathValue("userID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	target, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			view.NotFoundPage(user).Render(r.Context(), w)
			return
		}
		slog.Error("get user", "user_id", userID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	view.UserPage(user, target).Render(r.Context(), w)
}

// HandleCreateInvitation issues an invitation code. JSON clients get
// {"code": "..."}; browsers get a page showing the code.
// POST /setup/invitation/create
func (h *SetupHandler) HandleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	inv, err := h.invitations.Create(r.Context(), user.ID)
	if err != nil {
		slog.Error("create invitation", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "application/json" {
		writeJSON(w, http.StatusCreated, map[string]string{"code": inv.Code})
		return
	}
	view.InvitationCreatedPage(user, inv).Render(r.Context(), w)
}
