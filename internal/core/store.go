package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrUserNotFound is returned when a user ID does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserStore loads users for the table and its exports.
type UserStore interface {
	// List returns one page of matching users and the total match count.
	List(ctx context.Context, q UserQuery) ([]User, int, error)

	// Stream calls fn for every matching user in sort order, ignoring paging.
	Stream(ctx context.Context, q UserQuery, fn func(User) error) error

	Delete(ctx context.Context, id int64) error
}

// MemoryStore keeps users in memory. It backs the demo when no database is
// configured.
type MemoryStore struct {
	mu    sync.RWMutex
	users []User
}

// NewMemoryStore returns a store holding a copy of users.
func NewMemoryStore(users []User) *MemoryStore {
	return &MemoryStore{users: slices.Clone(users)}
}

func (m *MemoryStore) matching(q UserQuery) []User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		if q.Matches(u) {
			out = append(out, u)
		}
	}
	slices.SortStableFunc(out, q.Compare)
	return out
}

func (m *MemoryStore) List(ctx context.Context, q UserQuery) ([]User, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	all := m.matching(q)
	start := min(q.Offset(), len(all))
	end := min(start+q.PerPage, len(all))
	return all[start:end], len(all), nil
}

func (m *MemoryStore) Stream(ctx context.Context, q UserQuery, fn func(User) error) error {
	for _, u := range m.matching(q) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.users, func(u User) bool { return u.ID == id })
	if i < 0 {
		return fmt.Errorf("delete user %d: %w", id, ErrUserNotFound)
	}
	m.users = slices.Delete(m.users, i, i+1)
	return nil
}
