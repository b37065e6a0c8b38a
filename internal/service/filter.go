package service

import (
	"strings"

	"github.com/msomdec/user-directory/internal/domain"
)

// Filter selects which users of the directory are visible.
type Filter struct {
	Search        string
	FavoritesOnly bool
}

// FilterUsers returns, in order, the users that match both the search term
// and the favorites restriction. The input is not modified.
func FilterUsers(users []domain.User, f Filter, favorites domain.FavoriteSet) []domain.User {
	term := strings.ToLower(f.Search)
	visible := make([]domain.User, 0, len(users))
	for _, u := range users {
		if !matchesSearch(u, term) {
			continue
		}
		if f.FavoritesOnly && !favorites.Has(u.ID) {
			continue
		}
		visible = append(visible, u)
	}
	return visible
}

// matchesSearch expects term already lowercased. An empty term matches all.
func matchesSearch(u domain.User, term string) bool {
	return term == "" || strings.Contains(strings.ToLower(u.Name), term)
}
