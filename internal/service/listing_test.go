package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/user-directory/internal/domain"
	"github.com/msomdec/user-directory/internal/service"
)

func TestReduce(t *testing.T) {
	start := service.ListingState{Favorites: domain.NewFavoriteSet()}

	s := service.Reduce(start, service.UsersLoaded{Users: remoteUsers()})
	assert.Len(t, s.Users, 3)
	assert.Empty(t, start.Users, "reduce must not modify its input state")

	s = service.Reduce(s, service.SearchChanged{Term: "er"})
	assert.Equal(t, "er", s.Search)

	s = service.Reduce(s, service.FavoritesOnlyChanged{Enabled: true})
	assert.True(t, s.FavoritesOnly)

	before := s
	s = service.Reduce(s, service.FavoriteToggled{UserID: 2})
	assert.True(t, s.Favorites.Has(2))
	assert.False(t, before.Favorites.Has(2), "toggle must not leak into previous state")

	s = service.Reduce(s, service.FavoriteToggled{UserID: 2})
	assert.False(t, s.Favorites.Has(2))
}

func TestListingState_VisibleIsDerived(t *testing.T) {
	s := service.Reduce(service.ListingState{}, service.UsersLoaded{Users: remoteUsers()})
	assert.Len(t, s.Visible(), 3)

	s = service.Reduce(s, service.SearchChanged{Term: "leanne"})
	assert.Equal(t, []string{"Leanne Graham"}, names(s.Visible()))

	s = service.Reduce(s, service.FavoritesOnlyChanged{Enabled: true})
	assert.Empty(t, s.Visible())

	s = service.Reduce(s, service.FavoriteToggled{UserID: 1})
	assert.Equal(t, []string{"Leanne Graham"}, names(s.Visible()))

	s = service.Reduce(s, service.SearchChanged{Term: ""})
	assert.Equal(t, []string{"Leanne Graham"}, names(s.Visible()))
}

type listingFixture struct {
	slots    *memSlots
	source   *fakeSource
	listings *service.ListingService
}

func newListingFixture(t *testing.T, persistFavorites bool) listingFixture {
	t.Helper()
	slots := newMemSlots()
	source := &fakeSource{users: remoteUsers()}
	additions := service.NewAdditionService(slots, service.NewIDGenerator(nil))
	directory := service.NewDirectoryService(source, additions)
	favorites := service.NewFavoriteService(slots, persistFavorites)
	return listingFixture{
		slots:    slots,
		source:   source,
		listings: service.NewListingService(directory, favorites, time.Minute),
	}
}

func TestListingService_OpenStartsWithEmptyFavorites(t *testing.T) {
	f := newListingFixture(t, false)
	ctx := context.Background()

	viewID, state, err := f.listings.Open(ctx, "visitor-1")
	require.NoError(t, err)
	assert.NotEmpty(t, viewID)
	assert.Len(t, state.Users, 3)
	assert.Equal(t, 0, state.Favorites.Len())

	_, err = f.listings.Dispatch(ctx, "visitor-1", viewID, service.FavoriteToggled{UserID: 1})
	require.NoError(t, err)

	// A reload opens a fresh view with an empty set again.
	_, reloaded, err := f.listings.Open(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Favorites.Len())
	assert.Equal(t, 0, f.slots.puts, "favorites must not be written when persistence is off")
}

func TestListingService_PersistedFavoritesSurviveReload(t *testing.T) {
	f := newListingFixture(t, true)
	ctx := context.Background()

	viewID, _, err := f.listings.Open(ctx, "visitor-1")
	require.NoError(t, err)

	_, err = f.listings.Dispatch(ctx, "visitor-1", viewID, service.FavoriteToggled{UserID: 3})
	require.NoError(t, err)

	_, reloaded, err := f.listings.Open(ctx, "visitor-1")
	require.NoError(t, err)
	assert.True(t, reloaded.Favorites.Has(3))
}

func TestListingService_OpenFailsWhenRemoteFails(t *testing.T) {
	f := newListingFixture(t, false)
	f.source.err = errUpstream
	f.slots.set("visitor-1", domain.SlotNewUsers, `[{"id":9,"name":"Local","email":"l@example.com"}]`)

	viewID, state, err := f.listings.Open(context.Background(), "visitor-1")
	require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Empty(t, viewID)
	assert.Empty(t, state.Users)
}

func TestListingService_DispatchAppliesEvents(t *testing.T) {
	f := newListingFixture(t, false)
	ctx := context.Background()

	viewID, _, err := f.listings.Open(ctx, "visitor-1")
	require.NoError(t, err)

	state, err := f.listings.Dispatch(ctx, "visitor-1", viewID,
		service.SearchChanged{Term: "ERVIN"},
		service.FavoritesOnlyChanged{Enabled: false},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ervin Howell"}, names(state.Visible()))

	state, err = f.listings.Dispatch(ctx, "visitor-1", viewID, service.FavoritesOnlyChanged{Enabled: true})
	require.NoError(t, err)
	assert.Empty(t, state.Visible())
	assert.Equal(t, "ERVIN", state.Search, "state carries over between dispatches")
}

func TestListingService_DispatchUnknownOrForeignView(t *testing.T) {
	f := newListingFixture(t, false)
	ctx := context.Background()

	_, err := f.listings.Dispatch(ctx, "visitor-1", "missing", service.SearchChanged{Term: "x"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	viewID, _, err := f.listings.Open(ctx, "visitor-1")
	require.NoError(t, err)

	_, err = f.listings.Dispatch(ctx, "visitor-2", viewID, service.SearchChanged{Term: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListingService_DispatchSaveFailureKeepsState(t *testing.T) {
	f := newListingFixture(t, true)
	ctx := context.Background()

	viewID, _, err := f.listings.Open(ctx, "visitor-1")
	require.NoError(t, err)

	f.slots.err = errors.New("disk full")
	_, err = f.listings.Dispatch(ctx, "visitor-1", viewID, service.FavoriteToggled{UserID: 1})
	require.Error(t, err)

	f.slots.err = nil
	state, err := f.listings.Dispatch(ctx, "visitor-1", viewID, service.SearchChanged{Term: ""})
	require.NoError(t, err)
	assert.False(t, state.Favorites.Has(1), "failed toggle must not be committed")
}

func TestListingService_SweepExpiresIdleViews(t *testing.T) {
	f := newListingFixture(t, false)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.listings.SetClock(func() time.Time { return now })

	stale, _, err := f.listings.Open(ctx, "visitor-1")
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	fresh, _, err := f.listings.Open(ctx, "visitor-1")
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, f.listings.Sweep())

	_, err = f.listings.Dispatch(ctx, "visitor-1", stale, service.SearchChanged{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.listings.Dispatch(ctx, "visitor-1", fresh, service.SearchChanged{})
	assert.NoError(t, err)
}

func TestListingService_RunStopsWithContext(t *testing.T) {
	f := newListingFixture(t, false)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.listings.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
