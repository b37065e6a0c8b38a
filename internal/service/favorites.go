package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/msomdec/user-directory/internal/domain"
)

// FavoriteService loads and stores a visitor's favorites. With persistence
// off, every listing view starts from an empty set and nothing is written.
type FavoriteService struct {
	slots   domain.SlotStore
	persist bool
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(slots domain.SlotStore, persist bool) *FavoriteService {
	return &FavoriteService{slots: slots, persist: persist}
}

// Persistent reports whether favorites survive a reload.
func (s *FavoriteService) Persistent() bool {
	return s.persist
}

// Load returns the visitor's starting favorites for a new listing view.
func (s *FavoriteService) Load(ctx context.Context, visitorID string) (domain.FavoriteSet, error) {
	if !s.persist {
		return domain.NewFavoriteSet(), nil
	}

	raw, err := s.slots.Get(ctx, visitorID, domain.SlotFavorites)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewFavoriteSet(), nil
		}
		return domain.FavoriteSet{}, fmt.Errorf("read %s slot: %w", domain.SlotFavorites, err)
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		slog.Debug("discard malformed slot", "slot", domain.SlotFavorites, "error", err)
		return domain.NewFavoriteSet(), nil
	}
	return domain.NewFavoriteSet(ids...), nil
}

// Save writes the set when persistence is on.
func (s *FavoriteService) Save(ctx context.Context, visitorID string, favorites domain.FavoriteSet) error {
	if !s.persist {
		return nil
	}

	data, err := json.Marshal(favorites.IDs())
	if err != nil {
		return fmt.Errorf("encode %s slot: %w", domain.SlotFavorites, err)
	}
	if err := s.slots.Put(ctx, visitorID, domain.SlotFavorites, string(data)); err != nil {
		return fmt.Errorf("write %s slot: %w", domain.SlotFavorites, err)
	}
	return nil
}
