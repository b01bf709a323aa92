package handler

import (
	"net/http"

	"github.com/msomdec/event-rsvp/internal/domain"
	"github.com/msomdec/event-rsvp/internal/service"
)

// Services are the dependencies of the HTTP layer.
type Services struct {
	Auth          *service.AuthService
	Events        *service.EventService
	Registrations *service.RegistrationService
	Invitations   *service.InvitationService
	Users         *service.UserService
	LoginThrottle *service.TokenBucket
	CookieSecure  bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, s Services) {
	authH := NewAuthHandler(s.Auth, s.LoginThrottle, s.CookieSecure)
	homeH := NewHomeHandler(s.Events)
	eventH := NewEventHandler(s.Events, s.Registrations)
	servicesH := NewServicesHandler(s.Events, s.Registrations)
	setupH := NewSetupHandler(s.Users, s.Invitations)
	inviteH := NewInvitationHandler(s.Invitations)

	page := func(h http.HandlerFunc) http.Handler { return RequireAuth(s.Auth, h) }
	rest := func(h http.HandlerFunc) http.Handler { return RestAuth(s.Auth, h) }
	admin := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(s.Auth, RequirePerm(domain.PermManageUsers, h))
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.Handle("GET /", OptionalAuth(s.Auth, http.HandlerFunc(HandleRoot)))

	mux.HandleFunc("GET /login", authH.HandleLoginPage)
	mux.HandleFunc("POST /login", authH.HandleLogin)
	mux.HandleFunc("POST /logout", authH.HandleLogout)

	mux.Handle("GET /home", page(homeH.HandleHome))
	mux.Handle("GET /events/new", page(eventH.HandleNewEventPage))
	mux.Handle("POST /events/new", page(eventH.HandleCreateEvent))
	mux.Handle("GET /events/{eventID}", page(eventH.HandleEventPage))
	mux.Handle("GET /events/{eventID}/registrations", page(eventH.HandleRegistrationsPage))
	mux.Handle("POST /events/{eventID}/feed", page(eventH.HandlePostFeed))
	mux.Handle("POST /events/{eventID}/rsvp", page(eventH.HandleRSVP))

	mux.HandleFunc("POST /services/auth/login", authH.HandleAPILogin)
	mux.Handle("GET /services/auth/me", rest(authH.HandleMe))
	mux.Handle("GET /services/events/{eventID}", rest(servicesH.HandleGetEvent))
	mux.Handle("GET /services/events/{eventID}/feeditems", rest(servicesH.HandleListFeedItems))
	mux.Handle("POST /services/events/{eventID}/feeditems", rest(servicesH.HandleCreateFeedItem))
	mux.Handle("POST /services/registrations", rest(servicesH.HandleCreateRegistration))
	mux.Handle("PATCH /services/registrations/{registrationID}", rest(servicesH.HandleUpdateRegistration))

	mux.Handle("GET /setup/users", admin(setupH.HandleUsers))
	mux.Handle("GET /setup/users/{userID}", admin(setupH.HandleUser))
	mux.Handle("POST /setup/invitation/create", admin(setupH.HandleCreateInvitation))

	mux.HandleFunc("GET /invitation/welcome", inviteH.HandleWelcome)
	mux.HandleFunc("GET /invitation/newUserSetup", inviteH.HandleNewUserSetupPage)
	mux.HandleFunc("POST /invitation/newUserSetup", inviteH.HandleNewUserSetup)
	mux.HandleFunc("POST /invitation/validate", inviteH.HandleValidate)
	mux.HandleFunc("POST /invitation/redeem", inviteH.HandleRedeem)
}
