package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
)

// EventRepository implements domain.EventRepository using SQLite.
type EventRepository struct {
	db *sql.DB
	clock clock.Clock
}

// NewEventRepository creates a new SQLite-backed EventRepository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db.SqlDB, clock: db.clk()}
}

// eventSelect joins owner and creator names plus the registration of the
// context user, bound as the first parameter.
const eventSelect = `SELECT e.id, e.name, e.description, e.start_at, e.created_at,
	e.owner_id, ou.first_name, ou.last_name,
	e.created_by, cu.first_name, cu.last_name,
	r.id, r.attending
	FROM events e
	LEFT JOIN users ou ON ou.id = e.owner_id
	LEFT JOIN users cu ON cu.id = e.created_by
	LEFT JOIN registrations r ON r.event_id = e.id AND r.user_id = ?`

func (r *EventRepository) Create(ctx context.Context, name, description string, start time.Time, createdBy int64) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO events (name, description, start_at, created_at, owner_id, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name, nullString(description), start.UTC(), r.clock.Now(), createdBy, createdBy,
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get event id: %w", err)
	}
	return id, nil
}

func (r *EventRepository) FindByID(ctx context.Context, contextUserID, eventID int64) (*domain.Event, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, eventSelect+` WHERE e.id = ? LIMIT 1`, contextUserID, eventID)
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

	rows, err := r.db.QueryContext(ctx,
		eventSelect+` WHERE e.start_at >= ? ORDER BY e.start_at ASC, e.id LIMIT ?`,
		contextUserID, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return scanEvents(rows)
}

// scanEvents consumes and closes rows. Owners and creators are shared
// through one UserCache for the whole result set.
func scanEvents(rows *sql.Rows) ([]domain.Event, error) {
	defer rows.Close()

	cache := domain.NewUserCache()
	events := []domain.Event{}
	for rows.Next() {
		var (
			e                         domain.Event
			description               sql.NullString
			ownerID, createdByID      int64
			ownerFirst, ownerLast     sql.NullString
			creatorFirst, creatorLast sql.NullString
			registrationID            sql.NullInt64
			attending                 sql.NullBool
		)
		if err := rows.Scan(&e.ID, &e.Name, &description, &e.Start, &e.CreatedAt,
			&ownerID, &ownerFirst, &ownerLast,
			&createdByID, &creatorFirst, &creatorLast,
			&registrationID, &attending); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		e.Description = description.String
		e.Start = e.Start.UTC()
		e.CreatedAt = e.CreatedAt.UTC()
		if ownerID != 0 {
			e.Owner = cache.GetOrPut(ownerID, ownerFirst.String, ownerLast.String)
		}
		if createdByID != 0 {
			e.CreatedBy = cache.GetOrPut(createdByID, creatorFirst.String, creatorLast.String)
		}
		if registrationID.Valid {
			e.MyRegistration = &domain.MyRegistration{
				ID:        registrationID.Int64,
				Attending: attending.Bool,
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
