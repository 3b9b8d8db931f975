package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process table keyed by record ID. It backs the services
// when DB_DRIVER=memory and stands in for Postgres in tests. It is safe for
// concurrent use.
type Memory[T any] struct {
	mu        sync.RWMutex
	items     map[string]T
	id        func(T) string
	createdAt func(T) time.Time
}

// NewMemory returns an empty table. id and createdAt extract the key and
// the list ordering field from a record.
func NewMemory[T any](id func(T) string, createdAt func(T) time.Time) *Memory[T] {
	return &Memory[T]{
		items:     make(map[string]T),
		id:        id,
		createdAt: createdAt,
	}
}

// Get returns the record with the given ID.
func (m *Memory[T]) Get(id string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return v, nil
}

// Insert stores a new record, replacing any record with the same ID.
func (m *Memory[T]) Insert(v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[m.id(v)] = v
}

// Replace overwrites an existing record.
func (m *Memory[T]) Replace(v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.id(v)
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	m.items[id] = v
	return nil
}

// Delete removes the record with the given ID.
func (m *Memory[T]) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// List returns one page of the records accepted by match (all records when
// match is nil), newest first, and the number of matching records.
func (m *Memory[T]) List(match func(T) bool, p Page) ([]T, int) {
	p = NewPage(p.Number, p.Size)

	m.mu.RLock()
	all := make([]T, 0, len(m.items))
	for _, v := range m.items {
		if match == nil || match(v) {
			all = append(all, v)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(all, func(a, b T) int {
		if c := m.createdAt(b).Compare(m.createdAt(a)); c != 0 {
			return c
		}
		return cmp.Compare(m.id(a), m.id(b))
	})

	total := len(all)
	start := min(p.Offset(), total)
	end := min(start+p.Size, total)
	return all[start:end], total
}

// Ping implements Pinger. An in-process table is always reachable.
func (m *Memory[T]) Ping(context.Context) error { return nil }

// ContainsFold reports whether substr is within s, ignoring case. It is the
// in-memory counterpart of the ILIKE filter.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
