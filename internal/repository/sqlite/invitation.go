package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
)

// InvitationRepository implements domain.InvitationRepository using SQLite.
type InvitationRepository struct {
	db *sql.DB
	clock clock.Clock
}

// NewInvitationRepository creates a new SQLite-backed InvitationRepository.
func NewInvitationRepository(db *DB) *InvitationRepository {
	return &InvitationRepository{db: db.SqlDB, clock: db.clk()}
}

func (r *InvitationRepository) Create(ctx context.Context, code string, createdBy int64) (*domain.Invitation, error) {
	now := r.clock.Now()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (code, created_at, created_by) VALUES (?, ?, ?)`,
		code, now, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert invitation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get invitation id: %w", err)
	}
	return &domain.Invitation{ID: id, Code: code, CreatedAt: now, CreatedBy: createdBy}, nil
}

func (r *InvitationRepository) FindUnused(ctx context.Context, code string) (*domain.Invitation, error) {
	var (
		inv       domain.Invitation
		createdBy sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, created_at, used, created_by FROM invitations WHERE code = ? AND used = 0 LIMIT 1`, code,
	).Scan(&inv.ID, &inv.Code, &inv.CreatedAt, &inv.Used, &createdBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	inv.CreatedBy = createdBy.Int64
	return &inv, nil
}

func (r *InvitationRepository) Redeem(ctx context.Context, code string, user *domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE invitations SET used = 1 WHERE code = ? AND used = 0`, code)
	if err != nil {
		return fmt.Errorf("use invitation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrInvalidInvitation
	}

	if err := insertUser(ctx, tx, user, r.clock.Now()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		user.ID = 0
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
