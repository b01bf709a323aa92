package handler

import (
	"net/http"

	"github.com/msomdec/event-rsvp/internal/domain"
	"github.com/msomdec/event-rsvp/internal/service"
)

// ServicesHandler exposes events, feed items and registrations as JSON.
type ServicesHandler struct {
	events        *service.EventService
	registrations *service.RegistrationService
}

// NewServicesHandler creates a new ServicesHandler.
func NewServicesHandler(events *service.EventService, registrations *service.RegistrationService) *ServicesHandler {
	return &ServicesHandler{events: events, registrations: registrations}
}

// HandleGetEvent returns an event with attendees, registrations and feed.
// GET /services/events/{eventID}
// Response: {"event": {...}}
func (h *ServicesHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	eventID, err := domain.ParseID("event", r.PathValue("eventID"))
	if err != nil {
		writeServiceError(w, "get event", err)
		return
	}

	detail, err := h.events.FindEventAndRegistrations(r.Context(), user.ID, eventID)
	if err != nil {
		writeServiceError(w, "get event", err)
		return
	}
	if detail == nil {
		writeError(w, http.StatusNotFound, "Event not found.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"event": toEventDTO(detail)})
}

// HandleListFeedItems returns the newest feed items of an event.
// GET /services/events/{eventID}/feeditems
// Response: {"items": [...], "total": n}
func (h *ServicesHandler) HandleListFeedItems(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	eventID, err := domain.ParseID("event", r.PathValue("eventID"))
	if err != nil {
		writeServiceError(w, "list feed items", err)
		return
	}

	feed, err := h.events.FeedItems(r.Context(), user.ID, eventID)
	if err != nil {
		writeServiceError(w, "list feed items", err)
		return
	}
	if feed == nil {
		writeError(w, http.StatusNotFound, "Event not found.")
		return
	}

	writeJSON(w, http.StatusOK, toFeedDTO(*feed))
}

// HandleCreateFeedItem posts to an event feed.
// POST /services/events/{eventID}/feeditems
// Request:  {"text":"..."}
// Response: {"id": n}
func (h *ServicesHandler) HandleCreateFeedItem(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	eventID, err := domain.ParseID("event", r.PathValue("eventID"))
	if err != nil {
		writeServiceError(w, "create feed item", err)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	id, err := h.events.CreateFeedItem(r.Context(), user.ID, eventID, req.Text)
	if err != nil {
		writeServiceError(w, "create feed item", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// HandleCreateRegistration registers the caller for an event.
// POST /services/registrations
// Request:  {"eventId": n, "userId": n (optional), "attending": bool (optional)}
// Response: {"registration": {...}}
func (h *ServicesHandler) HandleCreateRegistration(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	var req struct {
		EventID   int64 `json:"eventId"`
		UserID    int64 `json:"userId"`
		Attending *bool `json:"attending"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	reg, err := h.registrations.Register(r.Context(), user.ID, req.EventID, req.UserID, req.Attending)
	if err != nil {
		writeServiceError(w, "create registration", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"registration": toRegistrationDTO(reg)})
}

// HandleUpdateRegistration changes the attending flag of the caller's
// registration.
// PATCH /services/registrations/{registrationID}
// Request:  {"attending": bool}
// Response: {"registration": {...}}
func (h *ServicesHandler) HandleUpdateRegistration(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	registrationID, err := domain.ParseID("registration", r.PathValue("registrationID"))
	if err != nil {
		writeServiceError(w, "update registration", err)
		return
	}

	var req struct {
		Attending *bool `json:"attending"`
	}
	if err := readJSON(r, &req); err != nil || req.Attending == nil {
		writeError(w, http.StatusBadRequest, "attending is required.")
		return
	}

	reg, err := h.registrations.UpdateAttending(r.Context(), user.ID, registrationID, *req.Attending)
	if err != nil {
		writeServiceError(w, "update registration", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"registration": toRegistrationDTO(reg)})
}
