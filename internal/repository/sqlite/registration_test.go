package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
)

func boolPtr(b bool) *bool { return &b }

func TestRegistrationRepository_AttendanceRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := db.Registrations()
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	guest := createUser(t, db, "guest@example.com", "Gus", "Guest")
	eventID := createEvent(t, db, owner, "Launch Party", time.Now().Add(time.Hour))

	id, err := repo.Create(ctx, eventID, guest.ID, owner.ID, boolPtr(true))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reg, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if reg == nil || !reg.Attending {
		t.Fatalf("expected attending registration, got %+v", reg)
	}
	if reg.UserID != guest.ID || reg.CreatedBy != owner.ID || reg.EventID != eventID {
		t.Fatalf("unexpected registration: %+v", reg)
	}

	updated, err := repo.UpdateAttending(ctx, id, false)
	if err != nil {
		t.Fatalf("UpdateAttending: %v", err)
	}
	if updated == nil || updated.Attending {
		t.Fatalf("expected updated row with attending=false, got %+v", updated)
	}

	reg, err = repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID after update: %v", err)
	}
	if reg.Attending {
		t.Fatal("expected attending=false after update")
	}
}

func TestRegistrationRepository_Create_DefaultsAttendingToFalse(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Meetup", time.Now().Add(time.Hour))

	id, err := db.Registrations().Create(ctx, eventID, owner.ID, owner.ID, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	reg, err := db.Registrations().FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if reg.Attending {
		t.Fatal("expected unspecified attending to be stored as false")
	}
}

func TestRegistrationRepository_Create_Duplicate(t *testing.T) {
	db := newTestDB(t)
	repo := db.Registrations()
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Meetup", time.Now().Add(time.Hour))

	if _, err := repo.Create(ctx, eventID, owner.ID, owner.ID, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := repo.Create(ctx, eventID, owner.ID, owner.ID, boolPtr(true))
	if !errors.Is(err, domain.ErrDuplicateRegistration) {
		t.Fatalf("expected ErrDuplicateRegistration, got %v", err)
	}
}

func TestRegistrationRepository_FindByEventAndUser(t *testing.T) {
	db := newTestDB(t)
	repo := db.Registrations()
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	guest := createUser(t, db, "guest@example.com", "Gus", "Guest")
	eventID := createEvent(t, db, owner, "Meetup", time.Now().Add(time.Hour))

	reg, err := repo.FindByEventAndUser(ctx, eventID, guest.ID)
	if err != nil {
		t.Fatalf("FindByEventAndUser: %v", err)
	}
	if reg != nil {
		t.Fatalf("expected nil, got %+v", reg)
	}

	id, err := repo.Create(ctx, eventID, guest.ID, guest.ID, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	reg, err = repo.FindByEventAndUser(ctx, eventID, guest.ID)
	if err != nil {
		t.Fatalf("FindByEventAndUser: %v", err)
	}
	if reg == nil || reg.ID != id {
		t.Fatalf("expected registration %d, got %+v", id, reg)
	}
}

func TestRegistrationRepository_UpdateAttending_Absent(t *testing.T) {
	db := newTestDB(t)

	reg, err := db.Registrations().UpdateAttending(context.Background(), 42, true)
	if err != nil {
		t.Fatalf("UpdateAttending: %v", err)
	}
	if reg != nil {
		t.Fatalf("expected nil for an absent registration, got %+v", reg)
	}
}

func TestRegistrationRepository_Counts(t *testing.T) {
	db := newTestDB(t)
	repo := db.Registrations()
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Meetup", time.Now().Add(time.Hour))

	for i := 0; i < 5; i++ {
		u := createUser(t, db, fmt.Sprintf("u%d@example.com", i), "User", fmt.Sprint(i))
		if _, err := repo.Create(ctx, eventID, u.ID, u.ID, boolPtr(i%2 == 0)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	total, err := repo.CountForEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("CountForEvent: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected 5 registrations, got %d", total)
	}
	attending, err := repo.CountAttendingForEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("CountAttendingForEvent: %v", err)
	}
	if attending != 3 {
		t.Fatalf("expected 3 attending, got %d", attending)
	}

	// Unknown events count as zero rather than failing.
	missing, err := repo.CountForEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("CountForEvent (missing): %v", err)
	}
	if missing != 0 {
		t.Fatalf("expected 0 for a missing event, got %d", missing)
	}
}

func TestRegistrationRepository_ListForEvent_Empty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Quiet", time.Now().Add(time.Hour))

	page, err := db.Registrations().ListForEvent(ctx, owner.ID, eventID, 20, 0)
	if err != nil {
		t.Fatalf("ListForEvent: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 || page.Items == nil {
		t.Fatalf("expected empty non-nil page, got %+v", page)
	}

	attending, err := db.Registrations().ListAttendingForEvent(ctx, owner.ID, eventID)
	if err != nil {
		t.Fatalf("ListAttendingForEvent: %v", err)
	}
	if attending.Total != 0 || len(attending.Items) != 0 {
		t.Fatalf("expected empty attending page, got %+v", attending)
	}
}

func TestRegistrationRepository_ListForEvent_Paging(t *testing.T) {
	db := newTestDB(t)
	repo := db.Registrations()
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Big", time.Now().Add(time.Hour))

	var ids []int64
	for i := 0; i < 7; i++ {
		u := createUser(t, db, fmt.Sprintf("u%d@example.com", i), "User", fmt.Sprint(i))
		id, err := repo.Create(ctx, eventID, u.ID, u.ID, nil)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, id)
	}

	tests := []struct {
		limit, offset int
		wantIDs       []int64
	}{
		{limit: 3, offset: 0, wantIDs: ids[0:3]},
		{limit: 3, offset: 3, wantIDs: ids[3:6]},
		{limit: 3, offset: 6, wantIDs: ids[6:7]},
		{limit: 3, offset: 10, wantIDs: nil},
		{limit: 100, offset: 0, wantIDs: ids},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit=%d,offset=%d", tt.limit, tt.offset), func(t *testing.T) {
			page, err := repo.ListForEvent(ctx, owner.ID, eventID, tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("ListForEvent: %v", err)
			}
			if page.Total != 7 {
				t.Fatalf("expected total 7, got %d", page.Total)
			}
			if len(page.Items) > tt.limit || len(page.Items) > page.Total {
				t.Fatalf("page of %d items exceeds limit %d or total %d", len(page.Items), tt.limit, page.Total)
			}
			if len(page.Items) != len(tt.wantIDs) {
				t.Fatalf("expected %d items, got %d", len(tt.wantIDs), len(page.Items))
			}
			for i, reg := range page.Items {
				if reg.ID != tt.wantIDs[i] {
					t.Fatalf("position %d: expected registration %d, got %d", i, tt.wantIDs[i], reg.ID)
				}
				if reg.User == nil || reg.User.ID != reg.UserID {
					t.Fatalf("expected hydrated user, got %+v", reg.User)
				}
			}
		})
	}
}

func TestRegistrationRepository_ListForEvent_InvalidPage(t *testing.T) {
	db := newTestDB(t)
	repo := db.Registrations()

	tests := []struct {
		name          string
		limit, offset int
	}{
		{"negative offset", 10, -1},
		{"zero limit", 0, 0},
		{"negative limit", -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.ListForEvent(context.Background(), 1, 1, tt.limit, tt.offset)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRegistrationRepository_ListAttendingForEvent(t *testing.T) {
	db := newTestDB(t)
	repo := db.Registrations()
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Party", time.Now().Add(time.Hour))

	yes := createUser(t, db, "yes@example.com", "Yes", "Please")
	no := createUser(t, db, "no@example.com", "No", "Thanks")
	if _, err := repo.Create(ctx, eventID, yes.ID, yes.ID, boolPtr(true)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, eventID, no.ID, no.ID, boolPtr(false)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	page, err := repo.ListAttendingForEvent(ctx, owner.ID, eventID)
	if err != nil {
		t.Fatalf("ListAttendingForEvent: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("expected one attending registration, got total=%d items=%d", page.Total, len(page.Items))
	}
	if page.Items[0].User.Name != "Yes Please" {
		t.Fatalf("unexpected attendee: %+v", page.Items[0].User)
	}
}

func TestRegistrationRepository_SameCreatedAtOrdersByID(t *testing.T) {
	db := newTestDB(t)
	db.Clock = clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := db.Registrations()
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Tie", time.Now().Add(time.Hour))

	var users []*domain.User
	for i := 0; i < 4; i++ {
		users = append(users, createUser(t, db, fmt.Sprintf("t%d@example.com", i), "Tie", fmt.Sprint(i)))
	}
	// Register newest user first so registration ids run opposite to user ids.
	var ids []int64
	for i := len(users) - 1; i >= 0; i-- {
		id, err := repo.Create(ctx, eventID, users[i].ID, owner.ID, boolPtr(true))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, id)
	}

	all, err := repo.ListForEvent(ctx, owner.ID, eventID, 10, 0)
	if err != nil {
		t.Fatalf("ListForEvent: %v", err)
	}
	attending, err := repo.ListAttendingForEvent(ctx, owner.ID, eventID)
	if err != nil {
		t.Fatalf("ListAttendingForEvent: %v", err)
	}
	for name, page := range map[string]*domain.RegistrationPage{"all": all, "attending": attending} {
		if len(page.Items) != len(ids) {
			t.Fatalf("%s: expected %d items, got %d", name, len(ids), len(page.Items))
		}
		for i, reg := range page.Items {
			if !reg.CreatedAt.Equal(page.Items[0].CreatedAt) {
				t.Fatalf("%s: expected identical created_at, got %v and %v", name, reg.CreatedAt, page.Items[0].CreatedAt)
			}
			if reg.ID != ids[i] {
				t.Fatalf("%s position %d: expected registration %d, got %d", name, i, ids[i], reg.ID)
			}
		}
	}

	second, err := repo.ListForEvent(ctx, owner.ID, eventID, 2, 2)
	if err != nil {
		t.Fatalf("ListForEvent offset 2: %v", err)
	}
	if len(second.Items) != 2 || second.Items[0].ID != ids[2] || second.Items[1].ID != ids[3] {
		t.Fatalf("second page does not continue the id order: %+v", second.Items)
	}
}

func TestRegistrationRepository_ListAttendingForEvent_PageBound(t *testing.T) {
	db := newTestDB(t)
	repo := db.Registrations()
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Crowd", time.Now().Add(time.Hour))

	for i := 0; i < domain.AttendingPageSize+1; i++ {
		u := createUser(t, db, fmt.Sprintf("crowd%d@example.com", i), "Crowd", fmt.Sprint(i))
		if _, err := repo.Create(ctx, eventID, u.ID, u.ID, boolPtr(true)); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	// Not attending rows never count toward the attending total.
	declined := createUser(t, db, "declined@example.com", "Dee", "Clined")
	if _, err := repo.Create(ctx, eventID, declined.ID, declined.ID, boolPtr(false)); err != nil {
		t.Fatalf("Create declined: %v", err)
	}

	page, err := repo.ListAttendingForEvent(ctx, owner.ID, eventID)
	if err != nil {
		t.Fatalf("ListAttendingForEvent: %v", err)
	}
	if len(page.Items) != domain.AttendingPageSize {
		t.Fatalf("expected %d items, got %d", domain.AttendingPageSize, len(page.Items))
	}
	if page.Total != domain.AttendingPageSize+1 {
		t.Fatalf("expected total %d, got %d", domain.AttendingPageSize+1, page.Total)
	}
	for _, reg := range page.Items {
		if !reg.Attending {
			t.Fatalf("non-attending registration %d in attending page", reg.ID)
		}
	}
}
