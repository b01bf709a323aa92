package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
	"github.com/msomdec/event-rsvp/internal/repository/postgres/migrations"
)

// DB is the Postgres-backed store. It implements domain.Store.
type DB struct {
	Pool *pgxpool.Pool
	// Clock stamps created_at and last_login_at. Nil means clock.System.
	Clock clock.Clock
}

var _ domain.Store = (*DB)(nil)

// New connects a pool to the database at url and verifies it is reachable.
func New(ctx context.Context, url string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	// Statements are prepared once per connection and reused.
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Migrate applies the embedded schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Apply(ctx, db.Pool)
}

// Close closes every pooled connection.
func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

func (db *DB) Users() domain.UserRepository                 { return NewUserRepository(db.Pool, db.clk()) }
func (db *DB) Events() domain.EventRepository               { return NewEventRepository(db.Pool, db.clk()) }
func (db *DB) Registrations() domain.RegistrationRepository { return NewRegistrationRepository(db.Pool, db.clk()) }
func (db *DB) FeedItems() domain.FeedItemRepository         { return NewFeedItemRepository(db.Pool, db.clk()) }
func (db *DB) Invitations() domain.InvitationRepository     { return NewInvitationRepository(db.Pool, db.clk()) }

func (db *DB) clk() clock.Clock {
	if db.Clock == nil {
		return clock.System
	}
	return db.Clock
}

// querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// withTx runs fn inside a transaction carried by the context. Nested calls
// join the outer transaction.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// queryable returns the transaction carried by ctx, or the pool.
func queryable(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// withConn runs fn on a connection acquired from the pool and released on
// every path.
func withConn(ctx context.Context, pool *pgxpool.Pool, fn func(conn *pgxpool.Conn) error) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Release()
	return fn(conn)
}

func countRows(ctx context.Context, q querier, query string, args ...any) (int, error) {
	var n int
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
