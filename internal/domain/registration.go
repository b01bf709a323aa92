package domain

import (
	"context"
	"time"
)

const (
	DefaultRegistrationPageSize = 20
	AttendingPageSize           = 100
)

// Registration records a user's RSVP for an event.
type Registration struct {
	ID        int64
	EventID   int64
	UserID    int64
	User      *UserRef // populated by list queries only
	CreatedBy int64
	CreatedAt time.Time
	Attending bool
}

// RegistrationPage is a bounded page of registrations plus the total
// number of matching registrations. Total comes from a separate count
// query, so under concurrent writes len(Items) may disagree with Total.
type RegistrationPage struct {
	Items []Registration
	Total int
}

// AttendingOrDefault normalises an unspecified attending flag to false.
func AttendingOrDefault(attending *bool) bool {
	return attending != nil && *attending
}

// RegistrationRepository defines persistence operations for registrations.
// Find methods return nil, nil when nothing matches.
type RegistrationRepository interface {
	// Create inserts a registration. Uniqueness per (event, user) is checked
	// by callers first; a concurrent duplicate surfaces as
	// ErrDuplicateRegistration.
	Create(ctx context.Context, eventID, userID, createdBy int64, attending *bool) (int64, error)
	FindByEventAndUser(ctx context.Context, eventID, userID int64) (*Registration, error)
	FindByID(ctx context.Context, registrationID int64) (*Registration, error)
	UpdateAttending(ctx context.Context, registrationID int64, attending bool) (*Registration, error)
	CountForEvent(ctx context.Context, eventID int64) (int, error)
	CountAttendingForEvent(ctx context.Context, eventID int64) (int, error)
	ListForEvent(ctx context.Context, contextUserID, eventID int64, limit, offset int) (*RegistrationPage, error)
	ListAttendingForEvent(ctx context.Context, contextUserID, eventID int64) (*RegistrationPage, error)
}
