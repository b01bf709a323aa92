package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/msomdec/event-rsvp/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// UserListLimit is the number of users shown on the setup screen.
const UserListLimit = 100

// UserService backs the user administration screens.
type UserService struct {
	users      domain.UserRepository
	bcryptCost int
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// ListUsers returns the first UserListLimit users by last then first name.
func (s *UserService) ListUsers(ctx context.Context) (*domain.UserPage, error) {
	page, err := s.users.List(ctx, UserListLimit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return page, nil
}

// GetUser returns one user or domain.ErrNotFound.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// EnsureAdmin creates an administrator with the manageUsers permission
// when no user exists yet. It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, nil
	}
	if !ValidUsername(username) || len(username) > domain.MaxUsernameLength {
		return false, fmt.Errorf("%w: admin username must be email-like", domain.ErrInvalidInput)
	}
	if !ValidPassword(password) {
		return false, fmt.Errorf("%w: admin password must be at least 8 characters with a number and a letter", domain.ErrInvalidInput)
	}

	n, err := s.users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	admin := &domain.User{
		Username:     username,
		Email:        username,
		FirstName:    "Admin",
		PasswordHash: string(hash),
		Perms:        domain.Perms{ManageUsers: true},
	}
	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	slog.Info("bootstrap admin created", "username", username, "user_id", admin.ID)
	return true, nil
}
