package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
)

// UserRepository implements domain.UserRepository using Postgres.
type UserRepository struct {
	pool *pgxpool.Pool
	clock clock.Clock
}

func NewUserRepository(pool *pgxpool.Pool, clk clock.Clock) *UserRepository {
	return &UserRepository{pool: pool, clock: clk}
}

const userColumns = `id, username, email, first_name, last_name, password_hash, created_at,
	login_attempts, last_login_at, number_of_logins, perm_manage_users`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return insertUser(ctx, queryable(ctx, r.pool), user, r.clock.Now())
}

func insertUser(ctx context.Context, q querier, user *domain.User, now time.Time) error {
	const stmt = `
INSERT INTO users (username, email, first_name, last_name, password_hash, created_at, perm_manage_users)
VALUES ($1::TEXT, $2::TEXT, $3::TEXT, $4::TEXT, $5::TEXT, $6::TIMESTAMPTZ, $7::BOOLEAN)
RETURNING id`
	var id int64
	err := q.QueryRow(ctx, stmt,
		user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, now, user.Perms.ManageUsers,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := domain.ValidateID("user", id); err != nil {
		return nil, err
	}
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1::BIGINT`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1::TEXT`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by username: %w", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context, limit int) (*domain.UserPage, error) {
	if err := domain.ValidatePage(limit, 0); err != nil {
		return nil, err
	}

	page := &domain.UserPage{Users: []domain.User{}}
	err := withConn(ctx, r.pool, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+userColumns+` FROM users ORDER BY last_name, first_name, id LIMIT $1::INTEGER`, limit)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			user, err := scanUser(rows)
			if err != nil {
				return fmt.Errorf("scan user: %w", err)
			}
			page.Users = append(page.Users, *user)
		}
		if rows.Err() != nil {
			return fmt.Errorf("iterate users: %w", rows.Err())
		}

		total, err := countRows(ctx, conn, `SELECT COUNT(*) FROM users`)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		page.Total = total
		page.HasMore = total > len(page.Users)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	n, err := countRows(ctx, r.pool, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) Authenticate(ctx context.Context, username string, verify func(passwordHash string) bool) (int64, error) {
	var authenticated int64
	err := withTx(ctx, r.pool, func(ctx context.Context) error {
		tx := txFromContext(ctx)

		var (
			userID int64
			hash   string
		)
		err := tx.QueryRow(ctx,
			`SELECT id, password_hash FROM users WHERE username = $1::TEXT FOR UPDATE`, username,
		).Scan(&userID, &hash)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("query credentials: %w", err)
		}

		if !verify(hash) {
			if _, err := tx.Exec(ctx,
				`UPDATE users SET login_attempts = login_attempts + 1 WHERE id = $1::BIGINT`, userID,
			); err != nil {
				return fmt.Errorf("record failed login: %w", err)
			}
			return nil
		}

		if _, err := tx.Exec(ctx, `
UPDATE users
SET login_attempts = 0, last_login_at = $1::TIMESTAMPTZ, number_of_logins = number_of_logins + 1
WHERE id = $2::BIGINT`, r.clock.Now(), userID,
		); err != nil {
			return fmt.Errorf("record login: %w", err)
		}
		authenticated = userID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return authenticated, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.CreatedAt, &u.LoginAttempts, &u.LastLoginAt, &u.NumberOfLogins, &u.Perms.ManageUsers); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
