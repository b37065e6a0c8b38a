package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/msomdec/user-directory/internal/domain"
)

// memSlots is an in-memory domain.SlotStore.
type memSlots struct {
	mu     sync.Mutex
	values map[string]string
	err    error
	puts   int
}

func newMemSlots() *memSlots {
	return &memSlots{values: make(map[string]string)}
}

func (m *memSlots) Get(_ context.Context, visitorID, slot string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.values[visitorID+"/"+slot]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *memSlots) Put(_ context.Context, visitorID, slot, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.values[visitorID+"/"+slot] = value
	m.puts++
	return nil
}

func (m *memSlots) set(visitorID, slot, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[visitorID+"/"+slot] = value
}

// fakeSource is a domain.UserSource returning canned data.
type fakeSource struct {
	users []domain.User
	err   error
	calls int
}

func (f *fakeSource) ListUsers(context.Context) ([]domain.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.User(nil), f.users...), nil
}

func (f *fakeSource) GetUser(_ context.Context, id int64) (*domain.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

var errUpstream = errors.Join(domain.ErrRemoteUnavailable, errors.New("status 500"))

func remoteUsers() []domain.User {
	return []domain.User{
		{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz", Company: domain.Company{Name: "Romaguera-Crona"}},
		{ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv", Company: domain.Company{Name: "Deckow-Crist"}},
		{ID: 3, Name: "Clementine Bauch", Email: "Nathan@yesenia.net", Company: domain.Company{Name: "Romaguera-Jacobson"}},
	}
}
