package domain

import "context"

// Database defines lifecycle operations for the underlying store.
// Each implementation (SQLite, Postgres) owns its own migration files
// and strategy, so the backend can be swapped from configuration.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}

// Store bundles the repositories exposed by a Database implementation.
type Store interface {
	Database
	Users() UserRepository
	Events() EventRepository
	Registrations() RegistrationRepository
	FeedItems() FeedItemRepository
	Invitations() InvitationRepository
}
