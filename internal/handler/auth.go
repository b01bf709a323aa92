package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/event-rsvp/internal/domain"
	"github.com/msomdec/event-rsvp/internal/service"
	"github.com/msomdec/event-rsvp/internal/view"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth         *service.AuthService
	throttle     *service.TokenBucket
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler. throttle may be nil.
func NewAuthHandler(auth *service.AuthService, throttle *service.TokenBucket, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, throttle: throttle, cookieSecure: cookieSecure}
}

// HandleLoginPage renders the login form. The username query parameter
// prefills the form after sign-up.
// GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	view.LoginPage(r.URL.Query().Get("username"), "").Render(r.Context(), w)
}

// HandleLogin processes the login form and redirects home on success.
// POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")

	if !h.allow(r) {
		w.WriteHeader(http.StatusTooManyRequests)
		view.LoginPage(username, "Too many login attempts. Please wait a minute and try again.").Render(r.Context(), w)
		return
	}

	token, err := h.auth.Login(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			w.WriteHeader(http.StatusUnauthorized)
			view.LoginPage(username, "Invalid username or password.").Render(r.Context(), w)
			return
		}
		slog.Error("login user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.setAuthCookie(w, token, int(service.TokenLifetime.Seconds()))
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// HandleAPILogin processes a JSON login request and returns a bearer token.
// POST /services/auth/login
// Request:  {"username":"...","password":"..."}
// Response: {"token":"...","user":{...}}
func (h *AuthHandler) HandleAPILogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if !h.allow(r) {
		writeError(w, http.StatusTooManyRequests, "Too many login attempts.")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password.")
			return
		}
		slog.Error("login user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	userID, _ := h.auth.ValidateToken(token)
	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		slog.Error("get user after login", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toUserDTO(user),
	})
}

// HandleLogout clears the auth cookie.
// POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.setAuthCookie(w, "", -1)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleMe returns the currently authenticated user.
// GET /services/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

func (h *AuthHandler) allow(r *http.Request) bool {
	return h.throttle == nil || h.throttle.Allow(clientIP(r))
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}
