package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/event-rsvp/internal/domain"
)

func TestUserRepository_Create(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "ada@example.com", "Ada", "Lovelace")

	if user.ID == 0 {
		t.Fatal("expected user ID to be set after create")
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestUserRepository_Create_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "dup@example.com", "First", "User")

	err := db.Users().Create(context.Background(), &domain.User{
		Username:     "dup@example.com",
		Email:        "other@example.com",
		PasswordHash: "hash",
	})
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	ctx := context.Background()

	user := &domain.User{
		Username:     "admin@example.com",
		Email:        "admin@example.com",
		FirstName:    "Grace",
		LastName:     "Hopper",
		PasswordHash: "hash",
		Perms:        domain.Perms{ManageUsers: true},
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Name() != "Grace Hopper" {
		t.Fatalf("expected name 'Grace Hopper', got %q", found.Name())
	}
	if !found.Perms.ManageUsers {
		t.Fatal("expected manageUsers permission")
	}
	if found.LastLoginAt != nil {
		t.Fatal("expected no last login for a new user")
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), 999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_List(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "c@example.com", "Carl", "Zeiss")
	createUser(t, db, "a@example.com", "Ada", "Lovelace")
	createUser(t, db, "b@example.com", "Alan", "Turing")

	page, err := db.Users().List(context.Background(), 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("expected total 3, got %d", page.Total)
	}
	if !page.HasMore {
		t.Fatal("expected HasMore with 3 users and a limit of 2")
	}
	if len(page.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(page.Users))
	}
	if page.Users[0].LastName != "Lovelace" || page.Users[1].LastName != "Turing" {
		t.Fatalf("unexpected order: %s, %s", page.Users[0].LastName, page.Users[1].LastName)
	}
}

func TestUserRepository_Authenticate(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	ctx := context.Background()
	user := createUser(t, db, "login@example.com", "Log", "In")

	id, err := repo.Authenticate(ctx, "login@example.com", func(string) bool { return false })
	if err != nil {
		t.Fatalf("Authenticate (bad password): %v", err)
	}
	if id != 0 {
		t.Fatalf("expected 0 for a failed login, got %d", id)
	}

	found, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.LoginAttempts != 1 {
		t.Fatalf("expected 1 login attempt, got %d", found.LoginAttempts)
	}

	var gotHash string
	id, err = repo.Authenticate(ctx, "login@example.com", func(hash string) bool {
		gotHash = hash
		return true
	})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id != user.ID {
		t.Fatalf("expected user ID %d, got %d", user.ID, id)
	}
	if gotHash != "hash" {
		t.Fatalf("expected stored hash to be verified, got %q", gotHash)
	}

	found, err = repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.LoginAttempts != 0 || found.NumberOfLogins != 1 || found.LastLoginAt == nil {
		t.Fatalf("unexpected login counters: attempts=%d logins=%d last=%v",
			found.LoginAttempts, found.NumberOfLogins, found.LastLoginAt)
	}
}

func TestUserRepository_Authenticate_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	called := false
	id, err := db.Users().Authenticate(context.Background(), "nobody@example.com", func(string) bool {
		called = true
		return true
	})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id != 0 || called {
		t.Fatalf("expected no verification for an unknown user, id=%d called=%v", id, called)
	}
}
