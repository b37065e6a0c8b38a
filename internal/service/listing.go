package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/user-directory/internal/domain"
)

// ListingState is everything the listing page renders from.
type ListingState struct {
	Users         []domain.User
	Favorites     domain.FavoriteSet
	Search        string
	FavoritesOnly bool
}

// Visible is the derived list shown to the visitor. It is recomputed from
// the state on every call.
func (s ListingState) Visible() []domain.User {
	return FilterUsers(s.Users, Filter{Search: s.Search, FavoritesOnly: s.FavoritesOnly}, s.Favorites)
}

// Event is a visitor action or data arrival that changes a ListingState.
type Event interface {
	listingEvent()
}

// UsersLoaded replaces the directory contents.
type UsersLoaded struct {
	Users []domain.User
}

// SearchChanged sets the name search term.
type SearchChanged struct {
	Term string
}

// FavoritesOnlyChanged switches the favorites-only restriction.
type FavoritesOnlyChanged struct {
	Enabled bool
}

// FavoriteToggled flips favorite membership for one user.
type FavoriteToggled struct {
	UserID int64
}

func (UsersLoaded) listingEvent()          {}
func (SearchChanged) listingEvent()        {}
func (FavoritesOnlyChanged) listingEvent() {}
func (FavoriteToggled) listingEvent()      {}

// Reduce returns the state that results from applying e to s. It has no
// side effects; s itself is left unchanged.
func Reduce(s ListingState, e Event) ListingState {
	switch e := e.(type) {
	case UsersLoaded:
		s.Users = e.Users
	case SearchChanged:
		s.Search = e.Term
	case FavoritesOnlyChanged:
		s.FavoritesOnly = e.Enabled
	case FavoriteToggled:
		s.Favorites = s.Favorites.Toggle(e.UserID)
	}
	return s
}

// ListingService keeps one ListingState per open listing page. A view lives
// until it has been idle for the configured TTL; reloading the page opens a
// new view and starts over.
type ListingService struct {
	directory *DirectoryService
	favorites *FavoriteService
	ttl       time.Duration
	now       func() time.Time

	mu    sync.Mutex
	views map[string]*listingView
}

type listingView struct {
	visitorID string

	mu      sync.Mutex
	state   ListingState
	touched time.Time
}

// NewListingService creates a new ListingService.
func NewListingService(directory *DirectoryService, favorites *FavoriteService, ttl time.Duration) *ListingService {
	return &ListingService{
		directory: directory,
		favorites: favorites,
		ttl:       ttl,
		now:       time.Now,
		views:     make(map[string]*listingView),
	}
}

// Open loads the directory for a visitor and registers a new view over it.
// Nothing is registered when loading fails.
func (s *ListingService) Open(ctx context.Context, visitorID string) (string, ListingState, error) {
	users, err := s.directory.Load(ctx, visitorID)
	if err != nil {
		return "", ListingState{}, err
	}

	favorites, err := s.favorites.Load(ctx, visitorID)
	if err != nil {
		return "", ListingState{}, fmt.Errorf("load favorites: %w", err)
	}

	state := Reduce(ListingState{Favorites: favorites}, UsersLoaded{Users: users})
	viewID := uuid.NewString()

	s.mu.Lock()
	s.views[viewID] = &listingView{visitorID: visitorID, state: state, touched: s.now()}
	s.mu.Unlock()

	return viewID, state, nil
}

// Dispatch applies an event to a view the visitor owns and returns the new
// state. Unknown, expired and foreign views are reported as
// domain.ErrNotFound.
func (s *ListingService) Dispatch(ctx context.Context, visitorID, viewID string, events ...Event) (ListingState, error) {
	s.mu.Lock()
	view, ok := s.views[viewID]
	s.mu.Unlock()
	if !ok || view.visitorID != visitorID {
		return ListingState{}, domain.ErrNotFound
	}

	view.mu.Lock()
	defer view.mu.Unlock()

	next := view.state
	favoritesChanged := false
	for _, e := range events {
		if _, ok := e.(FavoriteToggled); ok {
			favoritesChanged = true
		}
		next = Reduce(next, e)
	}

	if favoritesChanged {
		if err := s.favorites.Save(ctx, visitorID, next.Favorites); err != nil {
			return ListingState{}, fmt.Errorf("save favorites: %w", err)
		}
	}

	view.state = next
	view.touched = s.now()
	return next, nil
}

// Sweep drops views idle for longer than the TTL and returns how many were
// removed.
func (s *ListingService) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, view := range s.views {
		view.mu.Lock()
		idle := view.touched.Before(cutoff)
		view.mu.Unlock()
		if idle {
			delete(s.views, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired views periodically until ctx is done.
func (s *ListingService) Run(ctx context.Context) {
	interval := max(s.ttl/2, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("expired listing views", "count", n)
			}
		}
	}
}
