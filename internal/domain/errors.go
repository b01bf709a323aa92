package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDuplicateRegistration = errors.New("registration already exists for the user for this event")
	ErrDuplicateUsername     = errors.New("username already exists")
	ErrInvalidInvitation     = errors.New("invitation code is not valid")
)

// ValidateID rejects identifiers that are not positive integers.
func ValidateID(kind string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s id must be a positive integer, got %d", ErrInvalidInput, kind, id)
	}
	return nil
}

// ValidatePage rejects a negative offset or a non-positive limit.
func ValidatePage(limit, offset int) error {
	if offset < 0 {
		return fmt.Errorf("%w: offset must not be negative, got %d", ErrInvalidInput, offset)
	}
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be greater than 0, got %d", ErrInvalidInput, limit)
	}
	return nil
}
