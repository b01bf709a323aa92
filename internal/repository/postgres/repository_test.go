package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
)

func TestEventRepository_LaunchParty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	guest := createUser(t, db, "guest@example.com", "Gus", "Guest")

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Microsecond)
	eventID, err := db.Events().Create(ctx, "Launch Party", "Bring snacks", start, owner.ID)
	if err != nil {
		t.Fatalf("Create event: %v", err)
	}
	attending := true
	if _, err := db.Registrations().Create(ctx, eventID, guest.ID, guest.ID, &attending); err != nil {
		t.Fatalf("Create registration: %v", err)
	}

	event, err := db.Events().FindByID(ctx, guest.ID, eventID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if event == nil || event.Name != "Launch Party" || !event.Start.Equal(start) {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Owner != event.CreatedBy {
		t.Fatal("expected owner and creator to share one UserRef")
	}
	if event.MyRegistration == nil || !event.MyRegistration.Attending {
		t.Fatalf("unexpected my registration: %+v", event.MyRegistration)
	}

	upcoming, err := db.Events().ListUpcoming(ctx, owner.ID, time.Now().UTC(), domain.UpcomingEventsLimit)
	if err != nil {
		t.Fatalf("ListUpcoming: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].MyRegistration != nil {
		t.Fatalf("unexpected upcoming events: %+v", upcoming)
	}

	absent, err := db.Events().FindByID(ctx, owner.ID, eventID+100)
	if err != nil || absent != nil {
		t.Fatalf("expected nil, nil for an absent event, got %+v, %v", absent, err)
	}
}

func TestRegistrationRepository_DuplicateAndAttendance(t *testing.T) {
	db := newTestDB(t)
	repo := db.Registrations()
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Meetup", time.Now().Add(time.Hour))

	id, err := repo.Create(ctx, eventID, owner.ID, owner.ID, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, eventID, owner.ID, owner.ID, nil); !errors.Is(err, domain.ErrDuplicateRegistration) {
		t.Fatalf("expected ErrDuplicateRegistration, got %v", err)
	}

	updated, err := repo.UpdateAttending(ctx, id, true)
	if err != nil {
		t.Fatalf("UpdateAttending: %v", err)
	}
	if updated == nil || !updated.Attending {
		t.Fatalf("expected attending registration, got %+v", updated)
	}

	missing, err := repo.UpdateAttending(ctx, id+100, true)
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for an absent registration, got %+v, %v", missing, err)
	}

	n, err := repo.CountAttendingForEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("CountAttendingForEvent: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 attending, got %d", n)
	}
}

func TestRegistrationRepository_ListForEvent(t *testing.T) {
	db := newTestDB(t)
	repo := db.Registrations()
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Big", time.Now().Add(time.Hour))

	for i := 0; i < 5; i++ {
		u := createUser(t, db, fmt.Sprintf("u%d@example.com", i), "User", fmt.Sprint(i))
		if _, err := repo.Create(ctx, eventID, u.ID, u.ID, nil); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := repo.ListForEvent(ctx, owner.ID, eventID, 2, 4)
	if err != nil {
		t.Fatalf("ListForEvent: %v", err)
	}
	if page.Total != 5 || len(page.Items) != 1 {
		t.Fatalf("expected total 5 with 1 item, got total=%d items=%d", page.Total, len(page.Items))
	}

	if _, err := repo.ListForEvent(ctx, owner.ID, eventID, 2, -1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFeedItemRepository_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Chatty", time.Now().Add(time.Hour))

	for _, text := range []string{"first", "second"} {
		if _, err := db.FeedItems().Create(ctx, text, eventID, owner.ID); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := db.FeedItems().FindPage(ctx, eventID)
	if err != nil {
		t.Fatalf("FindPage: %v", err)
	}
	if page.Total != 2 || page.Items[0].Text != "second" {
		t.Fatalf("unexpected feed page: %+v", page)
	}
}

func TestUserRepository_Authenticate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "login@example.com", "Lo", "Gin")

	id, err := db.Users().Authenticate(ctx, "login@example.com", func(string) bool { return false })
	if err != nil || id != 0 {
		t.Fatalf("expected failed login, got %d, %v", id, err)
	}
	id, err = db.Users().Authenticate(ctx, "login@example.com", func(string) bool { return true })
	if err != nil || id != user.ID {
		t.Fatalf("expected login as %d, got %d, %v", user.ID, id, err)
	}

	got, err := db.Users().GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.LoginAttempts != 0 || got.NumberOfLogins != 1 || got.LastLoginAt == nil {
		t.Fatalf("unexpected login counters: %+v", got)
	}
}

func TestInvitationRepository_Redeem(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	admin := createUser(t, db, "admin@example.com", "Ad", "Min")

	if _, err := db.Invitations().Create(ctx, "pgcode0001", admin.ID); err != nil {
		t.Fatalf("Create: %v", err)
	}
	user := &domain.User{Username: "new@example.com", Email: "new@example.com", PasswordHash: "hash"}
	if err := db.Invitations().Redeem(ctx, "pgcode0001", user); err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	again := &domain.User{Username: "again@example.com", Email: "again@example.com", PasswordHash: "hash"}
	if err := db.Invitations().Redeem(ctx, "pgcode0001", again); !errors.Is(err, domain.ErrInvalidInvitation) {
		t.Fatalf("expected ErrInvalidInvitation, got %v", err)
	}
}

func TestRepositories_SameCreatedAtOrdersByID(t *testing.T) {
	db := newTestDB(t)
	db.Clock = clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", "Olive", "Owner")
	eventID := createEvent(t, db, owner, "Tie", time.Now().Add(time.Hour))

	var users []*domain.User
	for i := 0; i < 4; i++ {
		users = append(users, createUser(t, db, fmt.Sprintf("t%d@example.com", i), "Tie", fmt.Sprint(i)))
	}
	attending := true
	var regIDs, feedIDs []int64
	for i := len(users) - 1; i >= 0; i-- {
		id, err := db.Registrations().Create(ctx, eventID, users[i].ID, owner.ID, &attending)
		if err != nil {
			t.Fatalf("Create registration: %v", err)
		}
		regIDs = append(regIDs, id)

		feedID, err := db.FeedItems().Create(ctx, fmt.Sprint("post ", i), eventID, users[i].ID)
		if err != nil {
			t.Fatalf("Create feed item: %v", err)
		}
		feedIDs = append(feedIDs, feedID)
	}

	regs, err := db.Registrations().ListForEvent(ctx, owner.ID, eventID, 10, 0)
	if err != nil {
		t.Fatalf("ListForEvent: %v", err)
	}
	for i, reg := range regs.Items {
		if reg.ID != regIDs[i] {
			t.Fatalf("registration position %d: expected %d, got %d", i, regIDs[i], reg.ID)
		}
	}

	feed, err := db.FeedItems().FindPage(ctx, eventID)
	if err != nil {
		t.Fatalf("FindPage: %v", err)
	}
	if len(feed.Items) != len(feedIDs) {
		t.Fatalf("expected %d feed items, got %d", len(feedIDs), len(feed.Items))
	}
	for i, item := range feed.Items {
		if want := feedIDs[len(feedIDs)-1-i]; item.ID != want {
			t.Fatalf("feed position %d: expected %d, got %d", i, want, item.ID)
		}
	}
}
