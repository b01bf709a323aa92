package service_test

import (
	"context"
	"time"

	"github.com/msomdec/event-rsvp/internal/domain"
)

// fakeEvents is an in-memory EventRepository that counts calls.
type fakeEvents struct {
	events map[int64]*domain.Event
	calls  int
	err    error
}

func (f *fakeEvents) Create(ctx context.Context, name, description string, start time.Time, createdBy int64) (int64, error) {
	f.calls++
	id := int64(len(f.events) + 1)
	if f.events == nil {
		f.events = map[int64]*domain.Event{}
	}
	f.events[id] = &domain.Event{ID: id, Name: name, Description: description, Start: start}
	return id, nil
}

func (f *fakeEvents) FindByID(ctx context.Context, contextUserID, eventID int64) (*domain.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events[eventID], nil
}

func (f *fakeEvents) ListUpcoming(ctx context.Context, contextUserID int64, now time.Time, limit int) ([]domain.Event, error) {
	f.calls++
	return nil, f.err
}

// fakeRegistrations returns canned pages and counts calls.
type fakeRegistrations struct {
	page      *domain.RegistrationPage
	attending *domain.RegistrationPage
	listErr   error
	calls     int
}

func (f *fakeRegistrations) Create(ctx context.Context, eventID, userID, createdBy int64, attending *bool) (int64, error) {
	f.calls++
	return 0, nil
}

func (f *fakeRegistrations) FindByEventAndUser(ctx context.Context, eventID, userID int64) (*domain.Registration, error) {
	f.calls++
	return nil, nil
}

func (f *fakeRegistrations) FindByID(ctx context.Context, registrationID int64) (*domain.Registration, error) {
	f.calls++
	return nil, nil
}

func (f *fakeRegistrations) UpdateAttending(ctx context.Context, registrationID int64, attending bool) (*domain.Registration, error) {
	f.calls++
	return nil, nil
}

func (f *fakeRegistrations) CountForEvent(ctx context.Context, eventID int64) (int, error) {
	f.calls++
	return 0, nil
}

func (f *fakeRegistrations) CountAttendingForEvent(ctx context.Context, eventID int64) (int, error) {
	f.calls++
	return 0, nil
}

func (f *fakeRegistrations) ListForEvent(ctx context.Context, contextUserID, eventID int64, limit, offset int) (*domain.RegistrationPage, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.page, nil
}

func (f *fakeRegistrations) ListAttendingForEvent(ctx context.Context, contextUserID, eventID int64) (*domain.RegistrationPage, error) {
	f.calls++
	return f.attending, nil
}

// fakeFeed returns a canned feed page.
type fakeFeed struct {
	page  *domain.FeedPage
	err   error
	calls int
}

func (f *fakeFeed) Create(ctx context.Context, text string, eventID, createdBy int64) (int64, error) {
	f.calls++
	return 1, f.err
}

func (f *fakeFeed) FindPage(ctx context.Context, eventID int64) (*domain.FeedPage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}
