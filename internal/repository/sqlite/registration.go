package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
)

// RegistrationRepository implements domain.RegistrationRepository using SQLite.
type RegistrationRepository struct {
	db *sql.DB
	clock clock.Clock
}

// NewRegistrationRepository creates a new SQLite-backed RegistrationRepository.
func NewRegistrationRepository(db *DB) *RegistrationRepository {
	return &RegistrationRepository{db: db.SqlDB, clock: db.clk()}
}

const (
	registrationColumns = `id, event_id, user_id, created_by, created_at, attending`

	registrationListSelect = `SELECT r.id, r.event_id, r.user_id, r.created_by, r.created_at, r.attending,
		u.first_name, u.last_name
		FROM registrations r
		JOIN users u ON u.id = r.user_id`

	countRegistrationsSQL          = `SELECT COUNT(*) FROM registrations WHERE event_id = ?`
	countAttendingRegistrationsSQL = `SELECT COUNT(*) FROM registrations WHERE event_id = ? AND attending = 1`
)

func (r *RegistrationRepository) Create(ctx context.Context, eventID, userID, createdBy int64, attending *bool) (int64, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return 0, err
	}
	if err := domain.ValidateID("user", userID); err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO registrations (event_id, user_id, created_by, created_at, attending)
		 VALUES (?, ?, ?, ?, ?)`,
		eventID, userID, createdBy, r.clock.Now(), domain.AttendingOrDefault(attending),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, domain.ErrDuplicateRegistration
		}
		return 0, fmt.Errorf("insert registration: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get registration id: %w", err)
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
	return findRegistration(ctx, r.db,
		`SELECT `+registrationColumns+` FROM registrations WHERE event_id = ? AND user_id = ?`,
		eventID, userID)
}

func (r *RegistrationRepository) FindByID(ctx context.Context, registrationID int64) (*domain.Registration, error) {
	if err := domain.ValidateID("registration", registrationID); err != nil {
		return nil, err
	}
	return findRegistration(ctx, r.db,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = ?`, registrationID)
}

func (r *RegistrationRepository) UpdateAttending(ctx context.Context, registrationID int64, attending bool) (*domain.Registration, error) {
	if err := domain.ValidateID("registration", registrationID); err != nil {
		return nil, err
	}

	var updated *domain.Registration
	err := withConn(ctx, r.db, func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx,
			`UPDATE registrations SET attending = ? WHERE id = ?`, attending, registrationID)
		if err != nil {
			return fmt.Errorf("update attending: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return nil
		}
		updated, err = findRegistration(ctx, conn,
			`SELECT `+registrationColumns+` FROM registrations WHERE id = ?`, registrationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *RegistrationRepository) CountForEvent(ctx context.Context, eventID int64) (int, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return 0, err
	}
	n, err := countRows(ctx, r.db, countRegistrationsSQL, eventID)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (r *RegistrationRepository) CountAttendingForEvent(ctx context.Context, eventID int64) (int, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return 0, err
	}
	n, err := countRows(ctx, r.db, countAttendingRegistrationsSQL, eventID)
	if err != nil {
		return 0, fmt.Errorf("count attending registrations: %w", err)
	}
	return n, nil
}

// ListForEvent returns one page of an event's registrations ordered by
// creation time then id. The total is read by a separate query before the
// page, so the two can disagree under concurrent writes.
func (r *RegistrationRepository) ListForEvent(ctx context.Context, contextUserID, eventID int64, limit, offset int) (*domain.RegistrationPage, error) {
	if err := domain.ValidatePage(limit, offset); err != nil {
		return nil, err
	}
	if err := domain.ValidateID("event", eventID); err != nil {
		return nil, err
	}
	return r.listPage(ctx, countRegistrationsSQL,
		registrationListSelect+` WHERE r.event_id = ? ORDER BY r.created_at, r.id LIMIT ? OFFSET ?`,
		eventID, limit, offset)
}

// ListAttendingForEvent returns the first AttendingPageSize attending
// registrations of an event.
func (r *RegistrationRepository) ListAttendingForEvent(ctx context.Context, contextUserID, eventID int64) (*domain.RegistrationPage, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return nil, err
	}
	return r.listPage(ctx, countAttendingRegistrationsSQL,
		registrationListSelect+` WHERE r.event_id = ? AND r.attending = 1 ORDER BY r.created_at, r.id LIMIT ? OFFSET ?`,
		eventID, domain.AttendingPageSize, 0)
}

func (r *RegistrationRepository) listPage(ctx context.Context, countSQL, pageSQL string, eventID int64, limit, offset int) (*domain.RegistrationPage, error) {
	page := &domain.RegistrationPage{Items: []domain.Registration{}}
	err := withConn(ctx, r.db, func(conn *sql.Conn) error {
		total, err := countRows(ctx, conn, countSQL, eventID)
		if err != nil {
			return fmt.Errorf("count registrations: %w", err)
		}
		page.Total = total

		rows, err := conn.QueryContext(ctx, pageSQL, eventID, limit, offset)
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
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func findRegistration(ctx context.Context, q querier, query string, args ...any) (*domain.Registration, error) {
	var reg domain.Registration
	err := q.QueryRowContext(ctx, query, args...).
		Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.CreatedBy, &reg.CreatedAt, &reg.Attending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}
	reg.CreatedAt = reg.CreatedAt.UTC()
	return &reg, nil
}
