package migrations_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/msomdec/event-rsvp/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrations.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	return db
}

func TestRunMigrations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first migration run: %v", err)
	}

	// The registrations table carries the (event, user) uniqueness constraint.
	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (username, email, first_name, last_name, password_hash) VALUES (?, ?, ?, ?, ?)`,
		"ada@example.com", "ada@example.com", "Ada", "Lovelace", "hash",
	); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO events (name, start_at, owner_id, created_by) VALUES ('Launch', '2030-01-01 19:00:00', 1, 1)`,
	); err != nil {
		t.Fatalf("insert event: %v", err)
	}
	insert := `INSERT INTO registrations (event_id, user_id, created_by) VALUES (1, 1, 1)`
	if _, err := db.ExecContext(ctx, insert); err != nil {
		t.Fatalf("insert registration: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert); err == nil {
		t.Fatal("expected duplicate registration insert to fail")
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("second run (idempotent): %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 migration records, got %d", count)
	}
}

func TestRunFS_AppliesInFilenameOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"002_add.sql":    {Data: []byte("INSERT INTO things (name) VALUES ('second');")},
		"001_create.sql": {Data: []byte("CREATE TABLE things (name TEXT NOT NULL);")},
		"README.md":      {Data: []byte("ignored")},
	}
	if err := migrations.RunFS(ctx, db, fsys); err != nil {
		t.Fatalf("RunFS: %v", err)
	}

	var name string
	if err := db.QueryRowContext(ctx, "SELECT name FROM things").Scan(&name); err != nil {
		t.Fatalf("select: %v", err)
	}
	if name != "second" {
		t.Fatalf("expected 'second', got %q", name)
	}
}

func TestRunFS_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"001_broken.sql": {Data: []byte("CREATE TABLE broken (;")},
	}
	if err := migrations.RunFS(ctx, db, fsys); err == nil {
		t.Fatal("expected error for broken migration")
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no recorded migrations, got %d", count)
	}
}
