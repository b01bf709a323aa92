package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
)

// RegistrationRepository implements domain.RegistrationRepository using Postgres.
type RegistrationRepository struct {
	pool *pgxpool.Pool
	clock clock.Clock
}

func NewRegistrationRepository(pool *pgxpool.Pool, clk clock.Clock) *RegistrationRepository {
	return &RegistrationRepository{pool: pool, clock: clk}
}

const (
	registrationColumns = `id, event_id, user_id, created_by, created_at, attending`

	registrationListSelect = `
SELECT r.id, r.event_id, r.user_id, r.created_by, r.created_at, r.attending, u.first_name, u.last_name
FROM registrations r
JOIN users u ON u.id = r.user_id`

	countRegistrationsSQL          = `SELECT COUNT(*) FROM registrations WHERE event_id = $1::BIGINT`
	countAttendingRegistrationsSQL = `SELECT COUNT(*) FROM registrations WHERE event_id = $1::BIGINT AND attending`
)

func (r *RegistrationRepository) Create(ctx context.Context, eventID, userID, createdBy int64, attending *bool) (int64, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return 0, err
	}
	if err := domain.ValidateID("user", userID); err != nil {
		return 0, err
	}

	const stmt = `
INSERT INTO registrations (event_id, user_id, created_by, created_at, attending)
VALUES ($1::BIGINT, $2::BIGINT, $3::BIGINT, $4::TIMESTAMPTZ, $5::BOOLEAN)
RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, stmt,
		eventID, userID, createdBy, r.clock.Now(), domain.AttendingOrDefault(attending),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicateRegistration
		}
		return 0, fmt.Errorf("insert registration: %w", err)
	}
	return id, nil
}

func (r *RegistrationRepository) FindByEventAndUser(ctx context.Context, eventID, userID int64) (*domain.Registration, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return nil, err
	}
	if err := domain.ValidateID("user", userID); err != nil {
		return nil, err
	}
	return findRegistration(ctx, r.pool,
		`SELECT `+registrationColumns+` FROM registrations WHERE event_id = $1::BIGINT AND user_id = $2::BIGINT`,
		eventID, userID)
}

func (r *RegistrationRepository) FindByID(ctx context.Context, registrationID int64) (*domain.Registration, error) {
	if err := domain.ValidateID("registration", registrationID); err != nil {
		return nil, err
	}
	return findRegistration(ctx, r.pool,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1::BIGINT`, registrationID)
}

func (r *RegistrationRepository) UpdateAttending(ctx context.Context, registrationID int64, attending bool) (*domain.Registration, error) {
	if err := domain.ValidateID("registration", registrationID); err != nil {
		return nil, err
	}
	return findRegistration(ctx, r.pool, `
UPDATE registrations SET attending = $1::BOOLEAN WHERE id = $2::BIGINT
RETURNING `+registrationColumns, attending, registrationID)
}

func (r *RegistrationRepository) CountForEvent(ctx context.Context, eventID int64) (int, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return 0, err
	}
	n, err := countRows(ctx, r.pool, countRegistrationsSQL, eventID)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (r *RegistrationRepository) CountAttendingForEvent(ctx context.Context, eventID int64) (int, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return 0, err
	}
	n, err := countRows(ctx, r.pool, countAttendingRegistrationsSQL, eventID)
	if err != nil {
		return 0, fmt.Errorf("count attending registrations: %w", err)
	}
	return n, nil
}

// ListForEvent returns one page of an event's registrations. The count and
// the page are separate reads and may disagree under concurrent writes.
func (r *RegistrationRepository) ListForEvent(ctx context.Context, contextUserID, eventID int64, limit, offset int) (*domain.RegistrationPage, error) {
	if err := domain.ValidatePage(limit, offset); err != nil {
		return nil, err
	}
	if err := domain.ValidateID("event", eventID); err != nil {
		return nil, err
	}
	return r.listPage(ctx, countRegistrationsSQL,
		registrationListSelect+`
WHERE r.event_id = $1::BIGINT
ORDER BY r.created_at, r.id
LIMIT $2::INTEGER OFFSET $3::INTEGER`,
		eventID, limit, offset)
}

func (r *RegistrationRepository) ListAttendingForEvent(ctx context.Context, contextUserID, eventID int64) (*domain.RegistrationPage, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return nil, err
	}
	return r.listPage(ctx, countAttendingRegistrationsSQL,
		registrationListSelect+`
WHERE r.event_id = $1::BIGINT AND r.attending
ORDER BY r.created_at, r.id
LIMIT $2::INTEGER OFFSET $3::INTEGER`,
		eventID, domain.AttendingPageSize, 0)
}

func (r *RegistrationRepository) listPage(ctx context.Context, countSQL, pageSQL string, eventID int64, limit, offset int) (*domain.RegistrationPage, error) {
	page := &domain.RegistrationPage{Items: []domain.Registration{}}
	err := withConn(ctx, r.pool, func(conn *pgxpool.Conn) error {
		total, err := countRows(ctx, conn, countSQL, eventID)
		if err != nil {
			return fmt.Errorf("count registrations: %w", err)
		}
		page.Total = total

		rows, err := conn.Query(ctx, pageSQL, eventID, limit, offset)
		if err != nil {
			return fmt.Errorf("list registrations: %w", err)
		}
		defer rows.Close()

		cache := domain.NewUserCache()
		for rows.Next() {
			var (
				reg         domain.Registration
				first, last string
			)
			if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.CreatedBy, &reg.CreatedAt, &reg.Attending,
				&first, &last); err != nil {
				return fmt.Errorf("scan registration: %w", err)
			}
			reg.CreatedAt = reg.CreatedAt.UTC()
			reg.User = cache.GetOrPut(reg.UserID, first, last)
			page.Items = append(page.Items, reg)
		}
		if rows.Err() != nil {
			return fmt.Errorf("iterate registrations: %w", rows.Err())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func findRegistration(ctx context.Context, q querier, query string, args ...any) (*domain.Registration, error) {
	var reg domain.Registration
	err := q.QueryRow(ctx, query, args...).
		Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.CreatedBy, &reg.CreatedAt, &reg.Attending)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}
	reg.CreatedAt = reg.CreatedAt.UTC()
	return &reg, nil
}
