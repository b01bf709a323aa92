package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msomdec/event-rsvp/internal/domain"
	"github.com/msomdec/event-rsvp/internal/service"
)

func TestRegistrationService_Register(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewRegistrationService(db.Events(), db.Registrations())
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	guest := createUser(t, db, "guest@example.com", "Gus", "Guest")
	eventID := createEvent(t, db, owner, "Picnic", testNow.Add(24*time.Hour))

	yes := true
	reg, err := svc.Register(ctx, guest.ID, eventID, 0, &yes)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.UserID != guest.ID || reg.CreatedBy != guest.ID || !reg.Attending {
		t.Fatalf("unexpected registration: %+v", reg)
	}

	if _, err := svc.Register(ctx, guest.ID, eventID, guest.ID, nil); !errors.Is(err, domain.ErrDuplicateRegistration) {
		t.Fatalf("expected ErrDuplicateRegistration, got %v", err)
	}

	n, err := db.Registrations().CountForEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("CountForEvent: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one registration, got %d", n)
	}
}

func TestRegistrationService_Register_DefaultsToNotAttending(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewRegistrationService(db.Events(), db.Registrations())
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Picnic", testNow.Add(24*time.Hour))

	reg, err := svc.Register(context.Background(), owner.ID, eventID, 0, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Attending {
		t.Fatal("expected attending to default to false")
	}
}

func TestRegistrationService_Register_Rejects(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewRegistrationService(db.Events(), db.Registrations())
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	guest := createUser(t, db, "guest@example.com", "Gus", "Guest")
	eventID := createEvent(t, db, owner, "Picnic", testNow.Add(24*time.Hour))

	if _, err := svc.Register(ctx, owner.ID, eventID, guest.ID, nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("registering another user: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Register(ctx, owner.ID, eventID+1, 0, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing event: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Register(ctx, owner.ID, 0, 0, nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("zero event id: expected ErrInvalidInput, got %v", err)
	}
}

func TestRegistrationService_UpdateAttending(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewRegistrationService(db.Events(), db.Registrations())
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	guest := createUser(t, db, "guest@example.com", "Gus", "Guest")
	eventID := createEvent(t, db, owner, "Picnic", testNow.Add(24*time.Hour))

	reg, err := svc.Register(ctx, guest.ID, eventID, 0, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.UpdateAttending(ctx, owner.ID, reg.ID, true); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for another user's registration, got %v", err)
	}
	if _, err := svc.UpdateAttending(ctx, guest.ID, reg.ID+100, true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	updated, err := svc.UpdateAttending(ctx, guest.ID, reg.ID, true)
	if err != nil {
		t.Fatalf("UpdateAttending: %v", err)
	}
	if !updated.Attending || updated.ID != reg.ID {
		t.Fatalf("unexpected registration: %+v", updated)
	}
}

func TestRegistrationService_RSVP(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewRegistrationService(db.Events(), db.Registrations())
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Picnic", testNow.Add(24*time.Hour))

	first, err := svc.RSVP(ctx, owner.ID, eventID, true)
	if err != nil {
		t.Fatalf("RSVP: %v", err)
	}
	if !first.Attending {
		t.Fatal("expected attending after first RSVP")
	}

	second, err := svc.RSVP(ctx, owner.ID, eventID, false)
	if err != nil {
		t.Fatalf("RSVP: %v", err)
	}
	if second.ID != first.ID || second.Attending {
		t.Fatalf("expected the same registration updated to not attending, got %+v", second)
	}

	attending, err := db.Registrations().CountAttendingForEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("CountAttendingForEvent: %v", err)
	}
	if attending != 0 {
		t.Fatalf("expected 0 attending, got %d", attending)
	}

	if _, err := svc.RSVP(ctx, owner.ID, eventID+1, true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
