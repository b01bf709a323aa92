package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/msomdec/event-rsvp/internal/domain"
)

// RegistrationService implements the RSVP protocol on top of the
// registration repository: every write is a lookup followed by a create or
// an update.
type RegistrationService struct {
	events        domain.EventRepository
	registrations domain.RegistrationRepository
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(events domain.EventRepository, registrations domain.RegistrationRepository) *RegistrationService {
	return &RegistrationService{events: events, registrations: registrations}
}

// Register creates a registration of the context user for an event. A
// userID of 0 means the context user; any other user is rejected. A nil
// attending is stored as false.
func (s *RegistrationService) Register(ctx context.Context, contextUserID, eventID, userID int64, attending *bool) (*domain.Registration, error) {
	if userID == 0 {
		userID = contextUserID
	}
	if userID != contextUserID {
		return nil, fmt.Errorf("%w: cannot register another user", domain.ErrInvalidInput)
	}
	if err := domain.ValidateID("event", eventID); err != nil {
		return nil, err
	}

	if err := s.requireEvent(ctx, contextUserID, eventID); err != nil {
		return nil, err
	}

	existing, err := s.registrations.FindByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateRegistration
	}

	id, err := s.registrations.Create(ctx, eventID, userID, contextUserID, attending)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateRegistration) {
			return nil, err
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	reg, err := s.registrations.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload registration: %w", err)
	}
	if reg == nil {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

// UpdateAttending changes the attending flag of a registration owned by
// the context user.
func (s *RegistrationService) UpdateAttending(ctx context.Context, contextUserID, registrationID int64, attending bool) (*domain.Registration, error) {
	reg, err := s.registrations.FindByID(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}
	if reg == nil {
		return nil, domain.ErrNotFound
	}
	if reg.UserID != contextUserID {
		return nil, domain.ErrUnauthorized
	}

	updated, err := s.registrations.UpdateAttending(ctx, reg.ID, attending)
	if err != nil {
		return nil, fmt.Errorf("update attending: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}
	return updated, nil
}

// RSVP records whether the context user will attend an event, updating an
// existing registration or creating one.
func (s *RegistrationService) RSVP(ctx context.Context, contextUserID, eventID int64, attending bool) (*domain.Registration, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return nil, err
	}
	if err := s.requireEvent(ctx, contextUserID, eventID); err != nil {
		return nil, err
	}

	existing, err := s.registrations.FindByEventAndUser(ctx, eventID, contextUserID)
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}
	if existing == nil {
		_, err := s.registrations.Create(ctx, eventID, contextUserID, contextUserID, &attending)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrDuplicateRegistration):
			// A concurrent request created it first; fall through to the update.
		default:
			return nil, fmt.Errorf("create registration: %w", err)
		}
		existing, err = s.registrations.FindByEventAndUser(ctx, eventID, contextUserID)
		if err != nil {
			return nil, fmt.Errorf("reload registration: %w", err)
		}
		if existing == nil {
			return nil, domain.ErrNotFound
		}
		if existing.Attending == attending {
			return existing, nil
		}
	}

	updated, err := s.registrations.UpdateAttending(ctx, existing.ID, attending)
	if err != nil {
		return nil, fmt.Errorf("update attending: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}
	return updated, nil
}

func (s *RegistrationService) requireEvent(ctx context.Context, contextUserID, eventID int64) error {
	event, err := s.events.FindByID(ctx, contextUserID, eventID)
	if err != nil {
		return fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return domain.ErrNotFound
	}
	return nil
}
