package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/msomdec/event-rsvp/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const inviteCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var (
	usernamePattern = regexp.MustCompile(`[^@]@[^@]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
	letterPattern   = regexp.MustCompile(`(?i)[a-z]`)
)

// Invitation check result codes.
const (
	InviteCodeRequired = "INVITE_CODE_REQUIRED"
	InviteCodeInvalid  = "INVITE_CODE_INVALID"
)

// InvitationCheck is the outcome of validating an invitation code.
type InvitationCheck struct {
	Valid  bool   `json:"valid"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// SignUp holds the new-user form submitted with an invitation code.
type SignUp struct {
	InviteCode      string
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
}

// InvitationService issues invitation codes and turns them into accounts.
type InvitationService struct {
	invitations domain.InvitationRepository
	bcryptCost  int
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(invitations domain.InvitationRepository, bcryptCost int) *InvitationService {
	return &InvitationService{invitations: invitations, bcryptCost: bcryptCost}
}

// Create stores a fresh invitation code issued by createdBy.
func (s *InvitationService) Create(ctx context.Context, createdBy int64) (*domain.Invitation, error) {
	code, err := generateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("generate invite code: %w", err)
	}
	inv, err := s.invitations.Create(ctx, code, createdBy)
	if err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	return inv, nil
}

// Validate reports whether code is an existing unused invitation.
func (s *InvitationService) Validate(ctx context.Context, code string) (InvitationCheck, error) {
	if strings.TrimSpace(code) == "" {
		return InvitationCheck{Code: InviteCodeRequired, Reason: "An invite code is required."}, nil
	}
	inv, err := s.invitations.FindUnused(ctx, code)
	if err != nil {
		return InvitationCheck{}, fmt.Errorf("find invitation: %w", err)
	}
	if inv == nil {
		return InvitationCheck{Code: InviteCodeInvalid, Reason: "The invite code is not valid."}, nil
	}
	return InvitationCheck{Valid: true}, nil
}

// Redeem validates the sign-up form, creates the user and marks the code
// used in one transaction.
func (s *InvitationService) Redeem(ctx context.Context, form SignUp) (*domain.User, error) {
	if err := validateSignUp(form); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     strings.TrimSpace(form.Username),
		Email:        strings.TrimSpace(form.Email),
		FirstName:    strings.TrimSpace(form.FirstName),
		LastName:     strings.TrimSpace(form.LastName),
		PasswordHash: string(hash),
	}
	if err := s.invitations.Redeem(ctx, form.InviteCode, user); err != nil {
		if errors.Is(err, domain.ErrInvalidInvitation) || errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("redeem invitation: %w", err)
	}
	return user, nil
}

func validateSignUp(f SignUp) error {
	var errs []error
	invalid := func(msg string) {
		errs = append(errs, fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg))
	}

	username := strings.TrimSpace(f.Username)
	switch {
	case username == "":
		invalid("username is required")
	case len(username) > domain.MaxUsernameLength:
		invalid(fmt.Sprintf("username must be shorter than %d characters", domain.MaxUsernameLength))
	case !ValidUsername(username):
		invalid(`username must contain "@" with no spaces`)
	}
	if strings.TrimSpace(f.Email) == "" {
		invalid("email is required")
	}
	if strings.TrimSpace(f.FirstName) == "" {
		invalid("first name is required")
	}
	if strings.TrimSpace(f.LastName) == "" {
		invalid("last name is required")
	}
	if f.Password == "" {
		invalid("password is required")
	} else if !ValidPassword(f.Password) {
		invalid("password must be at least 8 characters and contain at least one number and one letter")
	}
	if f.Password != f.PasswordConfirm {
		invalid("password and confirmation do not match")
	}
	return errors.Join(errs...)
}

// ValidUsername reports whether username is email-like without spaces.
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username) && !strings.ContainsAny(username, " \t\r\n")
}

// ValidPassword reports whether password has at least 8 characters with a
// digit and a letter.
func ValidPassword(password string) bool {
	return len(password) >= 8 && digitPattern.MatchString(password) && letterPattern.MatchString(password)
}

func generateInviteCode() (string, error) {
	size := big.NewInt(int64(len(inviteCodeAlphabet)))
	var b strings.Builder
	b.Grow(domain.InvitationCodeLength)
	for b.Len() < domain.InvitationCodeLength {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(inviteCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
