package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/msomdec/user-directory/internal/domain"
)

// AdditionService manages the users a visitor created locally. They live
// in the visitor's newUsers slot as a JSON array, most recent first.
type AdditionService struct {
	slots domain.SlotStore
	ids   *IDGenerator

	// mu serializes read-prepend-write cycles on the slot.
	mu sync.Mutex
}

// NewAdditionService creates a new AdditionService.
func NewAdditionService(slots domain.SlotStore, ids *IDGenerator) *AdditionService {
	return &AdditionService{slots: slots, ids: ids}
}

// List returns the visitor's local additions. An absent or malformed slot
// yields an empty list.
func (s *AdditionService) List(ctx context.Context, visitorID string) ([]domain.User, error) {
	raw, err := s.slots.Get(ctx, visitorID, domain.SlotNewUsers)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.User{}, nil
		}
		return nil, fmt.Errorf("read %s slot: %w", domain.SlotNewUsers, err)
	}
	return decodeUsers(raw), nil
}

// Add validates the form, builds a user with a fresh time-derived ID and
// prepends it to the visitor's local additions.
func (s *AdditionService) Add(ctx context.Context, visitorID string, form domain.UserForm) (*domain.User, error) {
	if form.Blank() {
		return nil, fmt.Errorf("%w: Name and email are required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.List(ctx, visitorID)
	if err != nil {
		return nil, err
	}

	var floor int64
	for _, u := range existing {
		floor = max(floor, u.ID)
	}

	user := domain.User{
		ID:      s.ids.Next(floor),
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Website: form.Website,
		Company: domain.Company{Name: form.Company},
	}

	updated := append([]domain.User{user}, existing...)
	data, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("encode %s slot: %w", domain.SlotNewUsers, err)
	}
	if err := s.slots.Put(ctx, visitorID, domain.SlotNewUsers, string(data)); err != nil {
		return nil, fmt.Errorf("write %s slot: %w", domain.SlotNewUsers, err)
	}

	return &user, nil
}

// decodeUsers parses a persisted user array. Anything that is not a JSON
// array decodes to an empty list; array elements that are not user objects
// are dropped.
func decodeUsers(raw string) []domain.User {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		slog.Debug("discard malformed slot", "slot", domain.SlotNewUsers, "error", err)
		return []domain.User{}
	}

	users := make([]domain.User, 0, len(elems))
	for _, elem := range elems {
		if !bytes.HasPrefix(bytes.TrimSpace(elem), []byte("{")) {
			continue
		}
		var u domain.User
		if err := json.Unmarshal(elem, &u); err != nil {
			slog.Debug("discard malformed user", "slot", domain.SlotNewUsers, "error", err)
			continue
		}
		users = append(users, u)
	}
	return users
}

// IDGenerator issues identifiers derived from the wall clock in
// milliseconds. IDs are strictly increasing within a process, so two
// submissions in the same millisecond still get distinct values.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates an IDGenerator reading the given clock. A nil
// clock means time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns the current Unix millisecond, bumped past both the last ID
// it issued and floor.
func (g *IDGenerator) Next(floor int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := max(g.now().UnixMilli(), g.last+1, floor+1)
	g.last = id
	return id
}
