package resource

import (
	"context"
	"slices"
	"time"

	"github.com/cityservices/api/internal/store"
)

// MemoryRepository keeps resources in process memory.
type MemoryRepository struct {
	table *store.Memory[Resource]
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		table: store.NewMemory(
			func(r Resource) string { return r.ID },
			func(r Resource) time.Time { return r.CreatedAt },
		),
	}
}

// List implements Repository.
func (m *MemoryRepository) List(_ context.Context, f Filter) ([]Resource, int, error) {
	var match func(Resource) bool
	if f.Name != "" {
		match = func(r Resource) bool { return store.ContainsFold(r.Name, f.Name) }
	}
	items, total := m.table.List(match, f.Page)
	for i := range items {
		items[i].Tags = slices.Clone(items[i].Tags)
	}
	return items, total, nil
}

// Get implements Repository.
func (m *MemoryRepository) Get(_ context.Context, id string) (Resource, error) {
	r, err := m.table.Get(id)
	r.Tags = slices.Clone(r.Tags)
	return r, err
}

// Create implements Repository.
func (m *MemoryRepository) Create(_ context.Context, r Resource) error {
	r.Tags = slices.Clone(r.Tags)
	m.table.Insert(r)
	return nil
}

// Update implements Repository.
func (m *MemoryRepository) Update(_ context.Context, r Resource) error {
	r.Tags = slices.Clone(r.Tags)
	return m.table.Replace(r)
}

// Delete implements Repository.
func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	return m.table.Delete(id)
}

// Ping implements store.Pinger.
func (m *MemoryRepository) Ping(ctx context.Context) error {
	return m.table.Ping(ctx)
}
