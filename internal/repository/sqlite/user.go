package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
	clock clock.Clock
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.SqlDB, clock: db.clk()}
}

const userColumns = `id, username, email, first_name, last_name, password_hash, created_at,
	login_attempts, last_login_at, number_of_logins, perm_manage_users`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return insertUser(ctx, r.db, user, r.clock.Now())
}

func insertUser(ctx context.Context, q querier, user *domain.User, now time.Time) error {
	result, err := q.ExecContext(ctx,
		`INSERT INTO users (username, email, first_name, last_name, password_hash, created_at, perm_manage_users)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, now, user.Perms.ManageUsers,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := domain.ValidateID("user", id); err != nil {
		return nil, err
	}
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
	err := withConn(ctx, r.db, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx,
			`SELECT `+userColumns+` FROM users ORDER BY last_name, first_name, id LIMIT ?`, limit)
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
		if err := rows.Err(); err != nil {
			return err
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
	n, err := countRows(ctx, r.db, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) Authenticate(ctx context.Context, username string, verify func(passwordHash string) bool) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		userID int64
		hash   string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE username = ?`, username,
	).Scan(&userID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query credentials: %w", err)
	}

	if !verify(hash) {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET login_attempts = login_attempts + 1 WHERE id = ?`, userID,
		); err != nil {
			return 0, fmt.Errorf("record failed login: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("commit: %w", err)
		}
		return 0, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET login_attempts = 0, last_login_at = ?, number_of_logins = number_of_logins + 1
		 WHERE id = ?`, r.clock.Now(), userID,
	); err != nil {
		return 0, fmt.Errorf("record login: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return userID, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		lastLogin sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.CreatedAt, &u.LoginAttempts, &lastLogin, &u.NumberOfLogins, &u.Perms.ManageUsers); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}
