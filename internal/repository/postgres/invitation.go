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

// InvitationRepository implements domain.InvitationRepository using Postgres.
type InvitationRepository struct {
	pool *pgxpool.Pool
	clock clock.Clock
}

func NewInvitationRepository(pool *pgxpool.Pool, clk clock.Clock) *InvitationRepository {
	return &InvitationRepository{pool: pool, clock: clk}
}

func (r *InvitationRepository) Create(ctx context.Context, code string, createdBy int64) (*domain.Invitation, error) {
	const stmt = `
INSERT INTO invitations (code, created_at, created_by)
VALUES ($1::TEXT, $2::TIMESTAMPTZ, $3::BIGINT)
RETURNING id`
	now := r.clock.Now()
	var id int64
	if err := r.pool.QueryRow(ctx, stmt, code, now, createdBy).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert invitation: %w", err)
	}
	return &domain.Invitation{ID: id, Code: code, CreatedAt: now, CreatedBy: createdBy}, nil
}

func (r *InvitationRepository) FindUnused(ctx context.Context, code string) (*domain.Invitation, error) {
	var (
		inv       domain.Invitation
		createdBy *int64
	)
	err := r.pool.QueryRow(ctx, `
SELECT id, code, created_at, used, created_by
FROM invitations
WHERE code = $1::TEXT AND NOT used
LIMIT 1`, code).Scan(&inv.ID, &inv.Code, &inv.CreatedAt, &inv.Used, &createdBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	if createdBy != nil {
		inv.CreatedBy = *createdBy
	}
	inv.CreatedAt = inv.CreatedAt.UTC()
	return &inv, nil
}

func (r *InvitationRepository) Redeem(ctx context.Context, code string, user *domain.User) error {
	err := withTx(ctx, r.pool, func(ctx context.Context) error {
		tx := txFromContext(ctx)
		tag, err := tx.Exec(ctx, `UPDATE invitations SET used = TRUE WHERE code = $1::TEXT AND NOT used`, code)
		if err != nil {
			return fmt.Errorf("use invitation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrInvalidInvitation
		}
		return insertUser(ctx, tx, user, r.clock.Now())
	})
	if err != nil {
		user.ID = 0
		return err
	}
	return nil
}
