package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/msomdec/event-rsvp/internal/domain"
	"github.com/msomdec/event-rsvp/internal/service"
	"golang.org/x/crypto/bcrypt"
)

func validSignUp(code string) service.SignUp {
	return service.SignUp{
		InviteCode:      code,
		Username:        "new@example.com",
		Email:           "new@example.com",
		FirstName:       "Nora",
		LastName:        "New",
		Password:        "password1",
		PasswordConfirm: "password1",
	}
}

func TestInvitationService_CreateAndValidate(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewInvitationService(db.Invitations(), bcrypt.MinCost)
	ctx := context.Background()
	admin := createUser(t, db, "admin@example.com", "Ada", "Admin")

	inv, err := svc.Create(ctx, admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(inv.Code) != domain.InvitationCodeLength {
		t.Fatalf("expected a %d character code, got %q", domain.InvitationCodeLength, inv.Code)
	}

	check, err := svc.Validate(ctx, inv.Code)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !check.Valid {
		t.Fatalf("expected valid code, got %+v", check)
	}

	check, err = svc.Validate(ctx, "  ")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if check.Valid || check.Code != service.InviteCodeRequired || check.Reason != "An invite code is required." {
		t.Fatalf("unexpected result for empty code: %+v", check)
	}

	check, err = svc.Validate(ctx, "nope")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if check.Valid || check.Code != service.InviteCodeInvalid {
		t.Fatalf("unexpected result for unknown code: %+v", check)
	}
}

func TestInvitationService_Redeem(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewInvitationService(db.Invitations(), bcrypt.MinCost)
	ctx := context.Background()
	admin := createUser(t, db, "admin@example.com", "Ada", "Admin")
	inv, err := svc.Create(ctx, admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	user, err := svc.Redeem(ctx, validSignUp(inv.Code))
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected the new user to have an ID")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password1")) != nil {
		t.Fatal("expected the password to be stored as a bcrypt hash")
	}

	check, err := svc.Validate(ctx, inv.Code)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if check.Valid {
		t.Fatal("expected a redeemed code to be invalid")
	}

	second := validSignUp(inv.Code)
	second.Username = "other@example.com"
	if _, err := svc.Redeem(ctx, second); !errors.Is(err, domain.ErrInvalidInvitation) {
		t.Fatalf("expected ErrInvalidInvitation, got %v", err)
	}
}

func TestInvitationService_Redeem_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewInvitationService(db.Invitations(), bcrypt.MinCost)

	tests := []struct {
		name    string
		mutate  func(*service.SignUp)
		wantMsg string
	}{
		{"missing username", func(f *service.SignUp) { f.Username = "" }, "username is required"},
		{"username without at", func(f *service.SignUp) { f.Username = "newuser" }, `must contain "@"`},
		{"username with space", func(f *service.SignUp) { f.Username = "new user@example.com" }, `must contain "@"`},
		{"long username", func(f *service.SignUp) { f.Username = strings.Repeat("a", 100) + "@example.com" }, "username must be shorter"},
		{"missing email", func(f *service.SignUp) { f.Email = " " }, "email is required"},
		{"missing first name", func(f *service.SignUp) { f.FirstName = "" }, "first name is required"},
		{"missing last name", func(f *service.SignUp) { f.LastName = "" }, "last name is required"},
		{"short password", func(f *service.SignUp) { f.Password, f.PasswordConfirm = "pass1", "pass1" }, "at least 8 characters"},
		{"password without digit", func(f *service.SignUp) { f.Password, f.PasswordConfirm = "password", "password" }, "at least 8 characters"},
		{"mismatched confirmation", func(f *service.SignUp) { f.PasswordConfirm = "password2" }, "do not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validSignUp("ABCDEFGHIJ")
			tt.mutate(&form)
			_, err := svc.Redeem(context.Background(), form)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("expected %q in %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestValidPassword(t *testing.T) {
	tests := map[string]bool{
		"password1": true,
		"12345678a": true,
		"password":  false,
		"12345678":  false,
		"pass1":     false,
	}
	for password, want := range tests {
		if got := service.ValidPassword(password); got != want {
			t.Errorf("ValidPassword(%q) = %v, want %v", password, got, want)
		}
	}
}
