package domain

import "context"

// Slot names used by the directory. Each visitor owns one value per slot.
const (
	SlotNewUsers  = "newUsers"
	SlotFavorites = "favorites"
)

// SlotStore persists raw per-visitor values under a slot name. It stands in
// for browser local storage: values are opaque strings and callers decide
// how to decode them.
type SlotStore interface {
	// Get returns ErrNotFound when the slot has never been written.
	Get(ctx context.Context, visitorID, slot string) (string, error)
	Put(ctx context.Context, visitorID, slot, value string) error
}
