package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/msomdec/event-rsvp/internal/domain"
	"github.com/msomdec/event-rsvp/internal/service"
	"github.com/msomdec/event-rsvp/internal/view"
)

// InvitationHandler serves the invitation sign-up flow.
type InvitationHandler struct {
	invitations *service.InvitationService
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(invitations *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// HandleWelcome asks for an invitation code.
// GET /invitation/welcome
func (h *InvitationHandler) HandleWelcome(w http.ResponseWriter, r *http.Request) {
	view.WelcomePage(r.URL.Query().Get("c"), "").Render(r.Context(), w)
}

// HandleNewUserSetupPage renders the sign-up form, or sends the visitor
// back to the welcome page when the code is not usable.
// GET /invitation/newUserSetup?c=
func (h *InvitationHandler) HandleNewUserSetupPage(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("c")
	check, err := h.invitations.Validate(r.Context(), code)
	if err != nil {
		slog.Error("validate invitation", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !check.Valid {
		http.Redirect(w, r, "/invitation/welcome", http.StatusSeeOther)
		return
	}
	view.NewUserSetupPage(service.SignUp{InviteCode: code}, nil).Render(r.Context(), w)
}

// HandleNewUserSetup creates the account and redirects to the login page.
// POST /invitation/newUserSetup
func (h *InvitationHandler) HandleNewUserSetup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := service.SignUp{
		InviteCode:      r.PostFormValue("c"),
		Username:        r.PostFormValue("username"),
		Email:           r.PostFormValue("email"),
		FirstName:       r.PostFormValue("firstName"),
		LastName:        r.PostFormValue("lastName"),
		Password:        r.PostFormValue("password"),
		PasswordConfirm: r.PostFormValue("passwordConfirm"),
	}

	user, err := h.invitations.Redeem(r.Context(), form)
	if err != nil {
		var msgs []string
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			msgs = validationMessages(err)
		case errors.Is(err, domain.ErrDuplicateUsername):
			msgs = []string{"That username is already taken."}
		case errors.Is(err, domain.ErrInvalidInvitation):
			http.Redirect(w, r, "/invitation/welcome", http.StatusSeeOther)
			return
		default:
			slog.Error("redeem invitation", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		view.NewUserSetupPage(form, msgs).Render(r.Context(), w)
		return
	}

	http.Redirect(w, r, "/login?"+url.Values{"username": {user.Username}}.Encode(), http.StatusSeeOther)
}

// HandleValidate checks an invitation code.
// POST /invitation/validate
// Request:  {"code":"..."}
// Response: {"valid": bool, "code": "...", "reason": "..."}
func (h *InvitationHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	check, err := h.invitations.Validate(r.Context(), req.Code)
	if err != nil {
		writeServiceError(w, "validate invitation", err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

// HandleRedeem creates an account from a JSON sign-up request.
// POST /invitation/redeem
// Request:  {"code","username","email","firstName","lastName","password","passwordConfirm"}
// Response: {"user": {...}}
func (h *InvitationHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code            string `json:"code"`
		Username        string `json:"username"`
		Email           string `json:"email"`
		FirstName       string `json:"firstName"`
		LastName        string `json:"lastName"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.invitations.Redeem(r.Context(), service.SignUp{
		InviteCode:      req.Code,
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		writeServiceError(w, "redeem invitation", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": toUserDTO(user)})
}
