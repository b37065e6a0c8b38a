package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/user-directory/internal/domain"
)

// SlotRepository implements domain.SlotStore using SQLite.
type SlotRepository struct {
	db *sql.DB
}

// NewSlotRepository creates a new SQLite-backed SlotRepository.
func NewSlotRepository(db *DB) *SlotRepository {
	return &SlotRepository{db: db.SqlDB}
}

func (r *SlotRepository) Get(ctx context.Context, visitorID, slot string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM visitor_slots WHERE visitor_id = ? AND slot = ?`,
		visitorID, slot,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("query slot %s: %w", slot, err)
	}
	return value, nil
}

func (r *SlotRepository) Put(ctx context.Context, visitorID, slot, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO visitor_slots (visitor_id, slot, value, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (visitor_id, slot) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		visitorID, slot, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert slot %s: %w", slot, err)
	}
	return nil
}
