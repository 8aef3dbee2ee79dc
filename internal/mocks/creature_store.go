package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/store"
)

// MockCreatureStore implements store.CreatureStore for testing.
type MockCreatureStore struct {
	CreateFn         func(ctx context.Context, c *domain.Creature) error
	FindFn           func(ctx context.Context, filter store.CreatureFilter, page store.Page) ([]domain.Creature, error)
	CountFn          func(ctx context.Context, filter store.CreatureFilter) (int64, error)
	UpdateProgressFn func(ctx context.Context, c *domain.Creature) error
	TransferFn       func(ctx context.Context, id int64, from, to domain.Location) error
	DeleteFn         func(ctx context.Context, id int64, loc domain.Location) error

	mu        sync.Mutex
	creatures map[int64]domain.Creature
	nextID    int64

	// Calls counts invocations per method name.
	Calls map[string]int
}

var _ store.CreatureStore = (*MockCreatureStore)(nil)

// NewMockCreatureStore creates an empty store.
func NewMockCreatureStore() *MockCreatureStore {
	return &MockCreatureStore{
		creatures: make(map[int64]domain.Creature),
		Calls:     make(map[string]int),
	}
}

// Seed stores creatures as is, keeping their ids.
func (m *MockCreatureStore) Seed(creatures ...domain.Creature) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range creatures {
		m.creatures[c.ID] = c
		m.nextID = max(m.nextID, c.ID)
	}
}

// Snapshot returns the stored copy of creature id.
func (m *MockCreatureStore) Snapshot(id int64) (domain.Creature, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creatures[id]
	return c, ok
}

func (m *MockCreatureStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[name]++
}

func matches(c domain.Creature, f store.CreatureFilter) bool {
	if f.ID != 0 && c.ID != f.ID {
		return false
	}
	if f.HeldBy != "" && c.HeldBy != f.HeldBy {
		return false
	}
	if f.StoredBy != "" && c.StoredBy != f.StoredBy {
		return false
	}
	if f.OwnedBy != "" && c.HeldBy != f.OwnedBy && c.StoredBy != f.OwnedBy {
		return false
	}
	return true
}

func (m *MockCreatureStore) filter(f store.CreatureFilter) []domain.Creature {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Creature
	for _, c := range m.creatures {
		if matches(c, f) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Create implements store.CreatureStore.
func (m *MockCreatureStore) Create(ctx context.Context, c *domain.Creature) error {
	m.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.creatures[c.ID] = *c
	return nil
}

// GetByID implements store.CreatureStore.
func (m *MockCreatureStore) GetByID(ctx context.Context, id int64) (*domain.Creature, error) {
	return m.FindOne(ctx, store.CreatureFilter{ID: id})
}

// FindOne implements store.CreatureStore.
func (m *MockCreatureStore) FindOne(ctx context.Context, filter store.CreatureFilter) (*domain.Creature, error) {
	found, err := m.Find(ctx, filter, store.Page{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, store.ErrCreatureNotFound
	}
	return &found[0], nil
}

// Find implements store.CreatureStore.
func (m *MockCreatureStore) Find(ctx context.Context, filter store.CreatureFilter, page store.Page) ([]domain.Creature, error) {
	m.record("Find")
	if m.FindFn != nil {
		return m.FindFn(ctx, filter, page)
	}
	all := m.filter(filter)
	if page.Offset >= len(all) {
		return nil, nil
	}
	all = all[page.Offset:]
	if page.Limit > 0 && len(all) > page.Limit {
		all = all[:page.Limit]
	}
	return all, nil
}

// Count implements store.CreatureStore.
func (m *MockCreatureStore) Count(ctx context.Context, filter store.CreatureFilter) (int64, error) {
	m.record("Count")
	if m.CountFn != nil {
		return m.CountFn(ctx, filter)
	}
	return int64(len(m.filter(filter))), nil
}

// UpdateProgress implements store.CreatureStore.
func (m *MockCreatureStore) UpdateProgress(ctx context.Context, c *domain.Creature) error {
	m.record("UpdateProgress")
	if m.UpdateProgressFn != nil {
		return m.UpdateProgressFn(ctx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.creatures[c.ID]
	if !ok {
		return store.ErrCreatureNotFound
	}
	existing.Level, existing.Experience, existing.Stats = c.Level, c.Experience, c.Stats
	m.creatures[c.ID] = existing
	return nil
}

// Transfer implements store.CreatureStore.
func (m *MockCreatureStore) Transfer(ctx context.Context, id int64, from, to domain.Location) error {
	m.record("Transfer")
	if m.TransferFn != nil {
		return m.TransferFn(ctx, id, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creatures[id]
	if !ok {
		return store.ErrCreatureNotFound
	}
	if loc, ok := c.Location(); !ok || loc != from {
		return store.ErrCreatureNotFound
	}
	c.MoveTo(to)
	m.creatures[id] = c
	return nil
}

// Delete implements store.CreatureStore.
func (m *MockCreatureStore) Delete(ctx context.Context, id int64, loc domain.Location) error {
	m.record("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, loc)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creatures[id]
	if !ok {
		return store.ErrCreatureNotFound
	}
	if current, ok := c.Location(); !ok || current != loc {
		return store.ErrCreatureNotFound
	}
	delete(m.creatures, id)
	return nil
}

// WithTx returns the same mock; transactions are not simulated.
func (m *MockCreatureStore) WithTx(*sql.Tx) store.CreatureStore {
	return m
}
