package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
	"github.com/msomdec/event-rsvp/internal/repository/sqlite"
	"github.com/msomdec/event-rsvp/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

// testNow is a fixed instant used by services under test.
var testNow = time.Date(2025, 5, 20, 17, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func losAngeles(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	return loc
}

func newTestEventService(t *testing.T, db *sqlite.DB) *service.EventService {
	t.Helper()
	return service.NewEventService(db.Events(), db.Registrations(), db.FeedItems(), clock.NewFixed(testNow), losAngeles(t))
}

func createUser(t *testing.T, db *sqlite.DB, username, firstName, lastName string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     username,
		Email:        username,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: "hash",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create user %s: %v", username, err)
	}
	return user
}

func createEvent(t *testing.T, db *sqlite.DB, owner *domain.User, name string, start time.Time) int64 {
	t.Helper()
	id, err := db.Events().Create(context.Background(), name, "", start, owner.ID)
	if err != nil {
		t.Fatalf("Create event %s: %v", name, err)
	}
	return id
}
