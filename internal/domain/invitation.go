package domain

import (
	"context"
	"time"
)

// InvitationCodeLength is the number of characters in an invitation code.
const InvitationCodeLength = 10

// Invitation is a single-use code allowing a new user to sign up.
type Invitation struct {
	ID        int64
	Code      string
	CreatedAt time.Time
	Used      bool
	CreatedBy int64
}

// InvitationRepository defines persistence operations for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, code string, createdBy int64) (*Invitation, error)
	// FindUnused returns nil, nil when the code does not exist or was used.
	FindUnused(ctx context.Context, code string) (*Invitation, error)
	// Redeem creates the user and marks the code used in one transaction.
	// It returns ErrInvalidInvitation when the code is no longer unused.
	Redeem(ctx context.Context, code string, user *User) error
}
