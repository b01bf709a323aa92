package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
)

// EventRepository implements domain.EventRepository using Postgres.
type EventRepository struct {
	pool *pgxpool.Pool
	clock clock.Clock
}

func NewEventRepository(pool *pgxpool.Pool, clk clock.Clock) *EventRepository {
	return &EventRepository{pool: pool, clock: clk}
}

// eventSelect binds the context user as $1.
const eventSelect = `
SELECT e.id, e.name, e.description, e.start_at, e.created_at,
	e.owner_id, ou.first_name, ou.last_name,
	e.created_by, cu.first_name, cu.last_name,
	r.id, r.attending
FROM events e
LEFT JOIN users ou ON ou.id = e.owner_id
LEFT JOIN users cu ON cu.id = e.created_by
LEFT JOIN registrations r ON r.event_id = e.id AND r.user_id = $1::BIGINT`

func (r *EventRepository) Create(ctx context.Context, name, description string, start time.Time, createdBy int64) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}

	const stmt = `
INSERT INTO events (name, description, start_at, created_at, owner_id, created_by)
VALUES ($1::TEXT, $2::TEXT, $3::TIMESTAMPTZ, $4::TIMESTAMPTZ, $5::BIGINT, $5::BIGINT)
RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, stmt, name, nullString(description), start.UTC(), r.clock.Now(), createdBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return id, nil
}

func (r *EventRepository) FindByID(ctx context.Context, contextUserID, eventID int64) (*domain.Event, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, eventSelect+` WHERE e.id = $2::BIGINT LIMIT 1`, contextUserID, eventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (r *EventRepository) ListUpcoming(ctx context.Context, contextUserID int64, now time.Time, limit int) ([]domain.Event, error) {
	if err := domain.ValidatePage(limit, 0); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		eventSelect+` WHERE e.start_at >= $2::TIMESTAMPTZ ORDER BY e.start_at ASC, e.id LIMIT $3::INTEGER`,
		contextUserID, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return scanEvents(rows)
}

// scanEvents consumes and closes rows, sharing owners and creators through
// one UserCache.
func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	defer rows.Close()

	cache := domain.NewUserCache()
	events := []domain.Event{}
	for rows.Next() {
		var (
			e                         domain.Event
			description               *string
			ownerID, createdByID      int64
			ownerFirst, ownerLast     *string
			creatorFirst, creatorLast *string
			registrationID            *int64
			attending                 *bool
		)
		if err := rows.Scan(&e.ID, &e.Name, &description, &e.Start, &e.CreatedAt,
			&ownerID, &ownerFirst, &ownerLast,
			&createdByID, &creatorFirst, &creatorLast,
			&registrationID, &attending); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		e.Description = deref(description)
		e.Start = e.Start.UTC()
		e.CreatedAt = e.CreatedAt.UTC()
		e.Owner = cache.GetOrPut(ownerID, deref(ownerFirst), deref(ownerLast))
		e.CreatedBy = cache.GetOrPut(createdByID, deref(creatorFirst), deref(creatorLast))
		if registrationID != nil {
			e.MyRegistration = &domain.MyRegistration{
				ID:        *registrationID,
				Attending: domain.AttendingOrDefault(attending),
			}
		}
		events = append(events, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}
	return events, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
