package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/msomdec/user-directory/internal/domain"
)

const keyPrefix = "directory:slot:"

// Store implements domain.SlotStore and domain.Database on top of Redis.
// Each slot is a plain string key without expiry.
type Store struct {
	client *goredis.Client
}

// New creates a Redis-backed slot store. The connection is established lazily.
func New(addr, password string, db int) *Store {
	return &Store{client: goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Migrate verifies connectivity. Redis needs no schema.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close releases the client's connections.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Get(ctx context.Context, visitorID, slot string) (string, error) {
	value, err := s.client.Get(ctx, slotKey(visitorID, slot)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get slot %s: %w", slot, err)
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, visitorID, slot, value string) error {
	if err := s.client.Set(ctx, slotKey(visitorID, slot), value, 0).Err(); err != nil {
		return fmt.Errorf("set slot %s: %w", slot, err)
	}
	return nil
}

func slotKey(visitorID, slot string) string {
	return keyPrefix + visitorID + ":" + slot
}
