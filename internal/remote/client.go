// Package remote talks to the upstream HTTP user collection.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/msomdec/user-directory/internal/domain"
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 4 << 20

// Client implements domain.UserSource against a JSON REST endpoint that
// serves GET /users and GET /users/{id}.
type Client struct {
	baseURL string
	http    *http.Client
	group   singleflight.Group
}

// NewClient creates a Client for the given base URL. Every request is bound
// by timeout in addition to the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// ListUsers fetches the full remote collection. Concurrent calls share one
// in-flight request; nothing is cached once it completes.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	v, err := c.shared(ctx, "/users", func(ctx context.Context) (any, error) {
		var users []domain.User
		if err := c.getJSON(ctx, "/users", &users); err != nil {
			return nil, err
		}
		return users, nil
	})
	if err != nil {
		return nil, err
	}
	// Callers may reorder or extend the slice; hand each its own copy.
	return append([]domain.User(nil), v.([]domain.User)...), nil
}

// GetUser fetches a single remote user. A 404 maps to domain.ErrNotFound.
func (c *Client) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	path := "/users/" + strconv.FormatInt(id, 10)
	v, err := c.shared(ctx, path, func(ctx context.Context) (any, error) {
		var user domain.User
		if err := c.getJSON(ctx, path, &user); err != nil {
			return nil, err
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	user := v.(domain.User)
	return &user, nil
}

// shared runs fn once per key across concurrent callers. The upstream request
// outlives any single caller's cancellation; a caller whose context ends
// stops waiting and its result is dropped.
func (c *Client) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", domain.ErrRemoteUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("GET %s: %w", path, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: GET %s: status %d", domain.ErrRemoteUnavailable, path, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrRemoteUnavailable, path, err)
	}
	return nil
}
