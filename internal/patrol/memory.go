package patrol

import (
	"context"
	"time"

	"github.com/cityservices/api/internal/store"
)

// MemoryRepository keeps patrols in process memory.
type MemoryRepository struct {
	table *store.Memory[Patrol]
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		table: store.NewMemory(
			func(p Patrol) string { return p.ID },
			func(p Patrol) time.Time { return p.CreatedAt },
		),
	}
}

// List implements Repository.
func (m *MemoryRepository) List(_ context.Context, f Filter) ([]Patrol, int, error) {
	var match func(Patrol) bool
	if f.Location != "" {
		match = func(p Patrol) bool { return store.ContainsFold(p.Location, f.Location) }
	}
	items, total := m.table.List(match, f.Page)
	return items, total, nil
}

// Get implements Repository.
func (m *MemoryRepository) Get(_ context.Context, id string) (Patrol, error) {
	return m.table.Get(id)
}

// Create implements Repository.
func (m *MemoryRepository) Create(_ context.Context, p Patrol) error {
	m.table.Insert(p)
	return nil
}

// Update implements Repository.
func (m *MemoryRepository) Update(_ context.Context, p Patrol) error {
	return m.table.Replace(p)
}

// Delete implements Repository.
func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	return m.table.Delete(id)
}

// Ping implements store.Pinger.
func (m *MemoryRepository) Ping(ctx context.Context) error {
	return m.table.Ping(ctx)
}
