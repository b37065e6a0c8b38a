package domain

import "slices"

// FavoriteSet is a set of user IDs marked as favorite. It has value
// semantics: Toggle returns a new set and leaves the receiver untouched.
type FavoriteSet struct {
	ids map[int64]struct{}
}

// NewFavoriteSet builds a set from the given IDs. Duplicates collapse.
func NewFavoriteSet(ids ...int64) FavoriteSet {
	s := FavoriteSet{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Has reports whether id is a member.
func (s FavoriteSet) Has(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of members.
func (s FavoriteSet) Len() int {
	return len(s.ids)
}

// Toggle removes id if present, otherwise adds it.
func (s FavoriteSet) Toggle(id int64) FavoriteSet {
	next := FavoriteSet{ids: make(map[int64]struct{}, len(s.ids)+1)}
	for k := range s.ids {
		next.ids[k] = struct{}{}
	}
	if _, ok := next.ids[id]; ok {
		delete(next.ids, id)
	} else {
		next.ids[id] = struct{}{}
	}
	return next
}

// IDs returns the members in ascending order.
func (s FavoriteSet) IDs() []int64 {
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
