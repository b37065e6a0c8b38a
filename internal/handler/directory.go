package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/user-directory/internal/domain"
	"github.com/msomdec/user-directory/internal/service"
	"github.com/msomdec/user-directory/internal/view"
)

// DirectoryHandler serves the listing page, its live filter and favorite
// updates, and the user detail page.
type DirectoryHandler struct {
	directory *service.DirectoryService
	listings  *service.ListingService
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(directory *service.DirectoryService, listings *service.ListingService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, listings: listings}
}

// listingSignals are the datastar signals bound by the listing page.
type listingSignals struct {
	Search        string `json:"search"`
	FavoritesOnly bool   `json:"favoritesOnly"`
}

// HandleListing opens a new listing view and renders the full page.
func (h *DirectoryHandler) HandleListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewID, state, err := h.listings.Open(ctx, VisitorFromContext(ctx))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrRemoteUnavailable) {
			status = http.StatusBadGateway
		}
		slog.Error("open listing", "error", err)
		renderPage(w, r, status, view.ErrorPage("Failed to fetch users. Please try again later."))
		return
	}

	renderPage(w, r, http.StatusOK, view.ListingPage(viewID, state.Visible(), state.Favorites, state.Search, state.FavoritesOnly))
}

// HandleFilter applies the search and favorites-only signals to a view and
// patches the user list.
func (h *DirectoryHandler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	var signals listingSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	h.dispatch(w, r,
		service.SearchChanged{Term: signals.Search},
		service.FavoritesOnlyChanged{Enabled: signals.FavoritesOnly},
	)
}

// HandleToggleFavorite flips the favorite state of one user in a view and
// patches the user list.
func (h *DirectoryHandler) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// The favorites-only checkbox may have changed without an input event
	// reaching the server yet, so re-apply the current signals too.
	events := []service.Event{service.FavoriteToggled{UserID: id}}
	var signals listingSignals
	if err := datastar.ReadSignals(r, &signals); err == nil {
		events = append(events,
			service.SearchChanged{Term: signals.Search},
			service.FavoritesOnlyChanged{Enabled: signals.FavoritesOnly},
		)
	}

	h.dispatch(w, r, events...)
}

func (h *DirectoryHandler) dispatch(w http.ResponseWriter, r *http.Request, events ...service.Event) {
	ctx := r.Context()
	viewID := r.PathValue("view")

	state, err := h.listings.Dispatch(ctx, VisitorFromContext(ctx), viewID, events...)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The view expired or belongs to someone else; start over.
			sse := datastar.NewSSE(w, r)
			if err := sse.Redirect("/"); err != nil {
				slog.Error("redirect stale view", "error", err)
			}
			return
		}
		slog.Error("update listing", "error", err, "view", viewID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(
		view.UserListFragment(viewID, state.Visible(), state.Favorites),
		datastar.WithSelectorID(view.UserListID),
		datastar.WithModeInner(),
	); err != nil {
		slog.Error("patch user list", "error", err, "view", viewID)
	}
}

// HandleDetail renders a single user, looking in the visitor's local
// additions before the remote directory.
func (h *DirectoryHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderPage(w, r, http.StatusNotFound, view.NotFoundPage("User not found."))
		return
	}

	ctx := r.Context()
	user, err := h.directory.Get(ctx, VisitorFromContext(ctx), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			renderPage(w, r, http.StatusNotFound, view.NotFoundPage("User not found."))
			return
		}
		slog.Error("get user", "error", err, "id", id)
		renderPage(w, r, http.StatusBadGateway, view.ErrorPage("Failed to fetch user details. Please try again later."))
		return
	}

	renderPage(w, r, http.StatusOK, view.UserDetailPage(user))
}
