package domain

import (
	"context"
	"time"
)

const (
	EventNameMaxLength        = 50
	EventDescriptionMaxLength = 500
	UpcomingEventsLimit       = 10
)

// MyRegistration is the context user's own registration for an event.
type MyRegistration struct {
	ID        int64
	Attending bool
}

// Event is a scheduled gathering users can register for.
type Event struct {
	ID          int64
	Name        string
	Description string // empty when no description was given
	Start       time.Time
	CreatedAt   time.Time
	Owner       *UserRef
	CreatedBy   *UserRef
	// MyRegistration is nil when the context user has not registered.
	MyRegistration *MyRegistration
}

// EventRepository defines persistence operations for events.
// Find methods return nil, nil when nothing matches.
type EventRepository interface {
	Create(ctx context.Context, name, description string, start time.Time, createdBy int64) (int64, error)
	FindByID(ctx context.Context, contextUserID, eventID int64) (*Event, error)
	ListUpcoming(ctx context.Context, contextUserID int64, now time.Time, limit int) ([]Event, error)
}
