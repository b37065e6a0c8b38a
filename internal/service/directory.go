package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/msomdec/user-directory/internal/domain"
)

// DirectoryService builds the merged user directory a visitor sees.
type DirectoryService struct {
	remote    domain.UserSource
	additions *AdditionService
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(remote domain.UserSource, additions *AdditionService) *DirectoryService {
	return &DirectoryService{remote: remote, additions: additions}
}

// Load fetches the remote users and merges the visitor's local additions
// ahead of them. When the remote fetch fails the error is returned and local
// additions are not consulted.
func (s *DirectoryService) Load(ctx context.Context, visitorID string) ([]domain.User, error) {
	remoteUsers, err := s.remote.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list remote users: %w", err)
	}

	local, err := s.additions.List(ctx, visitorID)
	if err != nil {
		return nil, fmt.Errorf("list local additions: %w", err)
	}

	return MergeUsers(local, remoteUsers), nil
}

// Get returns a single user, checking the visitor's local additions before
// the remote source.
func (s *DirectoryService) Get(ctx context.Context, visitorID string, id int64) (*domain.User, error) {
	local, err := s.additions.List(ctx, visitorID)
	if err != nil {
		return nil, fmt.Errorf("list local additions: %w", err)
	}
	for _, u := range local {
		if u.ID == id {
			return &u, nil
		}
	}

	user, err := s.remote.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get remote user: %w", err)
	}
	return user, nil
}

// MergeUsers returns local followed by remote in a new slice. local is
// expected most-recent-first, as the addition store keeps it.
func MergeUsers(local, remote []domain.User) []domain.User {
	merged := make([]domain.User, 0, len(local)+len(remote))
	merged = append(merged, local...)
	return append(merged, remote...)
}
