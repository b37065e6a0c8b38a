package domain

import "context"

// Database defines lifecycle operations for the underlying slot backend.
// Migrate prepares the backend; for SQLite it applies schema migrations.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
