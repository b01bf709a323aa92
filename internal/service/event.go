package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/msomdec/event-rsvp/internal/service"

// EventSummary is the list projection of an event.
type EventSummary struct {
	ID             int64
	Name           string
	Start          FormattedTime
	Owner          *domain.UserRef
	MyRegistration *domain.MyRegistration
}

// FeedItemView is a feed item with its creation time formatted for display.
type FeedItemView struct {
	ID        int64
	Text      string
	CreatedBy *domain.UserRef
	Created   FormattedTime
}

// FeedView is the newest page of an event's feed.
type FeedView struct {
	Items []FeedItemView
	Total int
}

// EventDetail composes everything shown on an event page.
type EventDetail struct {
	EventSummary
	Description    string
	CreatedBy      *domain.UserRef
	Created        FormattedTime
	Attendees      []string
	AttendingTotal int
	Registrations  domain.RegistrationPage
	Feed           FeedView
}

// RegistrationRoster is one page of an event's full registration list.
type RegistrationRoster struct {
	Event         EventSummary
	Registrations []domain.Registration
	Total         int
	Offset        int
	Pagination    Pagination
}

// EventService composes event, registration and feed reads into view models.
type EventService struct {
	events        domain.EventRepository
	registrations domain.RegistrationRepository
	feed          domain.FeedItemRepository
	clock         clock.Clock
	loc           *time.Location
	tracer        trace.Tracer
}

// NewEventService creates a new EventService rendering times in loc.
func NewEventService(events domain.EventRepository, registrations domain.RegistrationRepository, feed domain.FeedItemRepository, clk clock.Clock, loc *time.Location) *EventService {
	if loc == nil {
		loc = time.UTC
	}
	return &EventService{
		events:        events,
		registrations: registrations,
		feed:          feed,
		clock:         clk,
		loc:           loc,
		tracer:        otel.Tracer(tracerName),
	}
}

// Location returns the display timezone.
func (s *EventService) Location() *time.Location {
	return s.loc
}

// FindEventAndRegistrations loads an event with its attendees, first page
// of registrations and newest feed items. It returns nil, nil when the
// event does not exist. The dependent reads run concurrently and the first
// failure is returned without a partial result.
func (s *EventService) FindEventAndRegistrations(ctx context.Context, contextUserID, eventID int64) (_ *EventDetail, err error) {
	ctx, span := s.tracer.Start(ctx, "EventService.FindEventAndRegistrations",
		trace.WithAttributes(attribute.Int64("event.id", eventID)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := domain.ValidateID("event", eventID); err != nil {
		return nil, err
	}

	event, err := s.events.FindByID(ctx, contextUserID, eventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, nil
	}

	var (
		attending     *domain.RegistrationPage
		registrations *domain.RegistrationPage
		feed          *domain.FeedPage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		attending, err = s.registrations.ListAttendingForEvent(gctx, contextUserID, event.ID)
		if err != nil {
			return fmt.Errorf("list attending registrations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		registrations, err = s.registrations.ListForEvent(gctx, contextUserID, event.ID, domain.DefaultRegistrationPageSize, 0)
		if err != nil {
			return fmt.Errorf("list registrations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		feed, err = s.feed.FindPage(gctx, event.ID)
		if err != nil {
			return fmt.Errorf("find feed page: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail := &EventDetail{
		EventSummary:   s.summarize(event),
		Description:    event.Description,
		CreatedBy:      event.CreatedBy,
		Created:        formatTime(event.CreatedAt, s.loc),
		Attendees:      make([]string, 0, len(attending.Items)),
		AttendingTotal: attending.Total,
		Registrations:  *registrations,
		Feed:           s.feedView(feed),
	}
	for _, r := range attending.Items {
		if r.User != nil {
			detail.Attendees = append(detail.Attendees, r.User.Name)
		}
	}
	span.SetAttributes(
		attribute.Int("registrations.total", registrations.Total),
		attribute.Int("feed.total", feed.Total),
	)
	return detail, nil
}

// GetUpcomingEvents lists the next events starting from now.
func (s *EventService) GetUpcomingEvents(ctx context.Context, contextUserID int64) ([]EventSummary, error) {
	events, err := s.events.ListUpcoming(ctx, contextUserID, s.clock.Now(), domain.UpcomingEventsLimit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	summaries := make([]EventSummary, 0, len(events))
	for i := range events {
		summaries = append(summaries, s.summarize(&events[i]))
	}
	return summaries, nil
}

// FindEvent returns the summary of one event, or nil, nil when absent.
func (s *EventService) FindEvent(ctx context.Context, contextUserID, eventID int64) (*EventSummary, error) {
	event, err := s.events.FindByID(ctx, contextUserID, eventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, nil
	}
	summary := s.summarize(event)
	return &summary, nil
}

// RegistrationRoster returns one AttendingPageSize page of an event's
// registrations. A negative offset is treated as 0. It returns nil, nil
// when the event does not exist.
func (s *EventService) RegistrationRoster(ctx context.Context, contextUserID, eventID int64, offset int, urlFor PageURLFunc) (*RegistrationRoster, error) {
	if offset < 0 {
		offset = 0
	}
	event, err := s.FindEvent(ctx, contextUserID, eventID)
	if err != nil || event == nil {
		return nil, err
	}

	page, err := s.registrations.ListForEvent(ctx, contextUserID, eventID, domain.AttendingPageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return &RegistrationRoster{
		Event:         *event,
		Registrations: page.Items,
		Total:         page.Total,
		Offset:        offset,
		Pagination:    BuildPagination(urlFor, page.Total, domain.AttendingPageSize, offset),
	}, nil
}

// CreateEvent validates the form values and stores a new event owned by
// createdBy. start is a wall-clock time in the display timezone.
func (s *EventService) CreateEvent(ctx context.Context, createdBy int64, name, description, start string) (int64, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	var errs []error
	switch {
	case name == "":
		errs = append(errs, fmt.Errorf("%w: name is required", domain.ErrInvalidInput))
	case utf8.RuneCountInString(name) >= domain.EventNameMaxLength:
		errs = append(errs, fmt.Errorf("%w: name must be shorter than %d characters", domain.ErrInvalidInput, domain.EventNameMaxLength))
	}
	if utf8.RuneCountInString(description) >= domain.EventDescriptionMaxLength {
		errs = append(errs, fmt.Errorf("%w: description must be shorter than %d characters", domain.ErrInvalidInput, domain.EventDescriptionMaxLength))
	}

	var startAt time.Time
	if strings.TrimSpace(start) == "" {
		errs = append(errs, fmt.Errorf("%w: start date and time is required", domain.ErrInvalidInput))
	} else if t, ok := parseLocalTime(strings.TrimSpace(start), s.loc); ok {
		startAt = t
	} else {
		errs = append(errs, fmt.Errorf("%w: unable to determine start date and time, try YYYY-MM-DD HH:MM", domain.ErrInvalidInput))
	}
	if len(errs) > 0 {
		return 0, errors.Join(errs...)
	}

	id, err := s.events.Create(ctx, name, description, startAt, createdBy)
	if err != nil {
		return 0, fmt.Errorf("create event: %w", err)
	}
	return id, nil
}

// DefaultStart is the suggested start of a new event: seven days from now
// at 19:00 in the display timezone.
func (s *EventService) DefaultStart() time.Time {
	d := s.clock.Now().In(s.loc).AddDate(0, 0, 7)
	return time.Date(d.Year(), d.Month(), d.Day(), 19, 0, 0, 0, s.loc)
}

// CreateFeedItem posts text to the feed of an existing event.
func (s *EventService) CreateFeedItem(ctx context.Context, contextUserID, eventID int64, text string) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	}
	event, err := s.events.FindByID(ctx, contextUserID, eventID)
	if err != nil {
		return 0, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return 0, domain.ErrNotFound
	}

	id, err := s.feed.Create(ctx, text, event.ID, contextUserID)
	if err != nil {
		return 0, fmt.Errorf("create feed item: %w", err)
	}
	return id, nil
}

// FeedItems returns the newest feed items of an event, or nil, nil when
// the event does not exist.
func (s *EventService) FeedItems(ctx context.Context, contextUserID, eventID int64) (*FeedView, error) {
	event, err := s.events.FindByID(ctx, contextUserID, eventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, nil
	}
	page, err := s.feed.FindPage(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("find feed page: %w", err)
	}
	view := s.feedView(page)
	return &view, nil
}

func (s *EventService) summarize(e *domain.Event) EventSummary {
	return EventSummary{
		ID:             e.ID,
		Name:           e.Name,
		Start:          formatTime(e.Start, s.loc),
		Owner:          e.Owner,
		MyRegistration: e.MyRegistration,
	}
}

func (s *EventService) feedView(page *domain.FeedPage) FeedView {
	view := FeedView{Items: make([]FeedItemView, 0, len(page.Items)), Total: page.Total}
	for _, item := range page.Items {
		view.Items = append(view.Items, FeedItemView{
			ID:        item.ID,
			Text:      item.Text,
			CreatedBy: item.CreatedBy,
			Created:   formatTime(item.CreatedAt, s.loc),
		})
	}
	return view
}
