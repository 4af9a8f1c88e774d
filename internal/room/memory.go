package room

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps rooms in process memory. Used by tests and STORE_DRIVER=memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	rooms map[string]Room
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rooms: make(map[string]Room)}
}

func (m *MemoryRepository) Create(_ context.Context, r *Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().UTC()
	m.rooms[r.ID] = *r
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryRepository) List(_ context.Context, filter Filter) ([]*Room, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*Room
	for _, r := range m.rooms {
		if filter.ActiveOnly && !r.Active {
			continue
		}
		r := r
		all = append(all, &r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	start := (filter.Page - 1) * filter.PageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *MemoryRepository) SetActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[id]
	if !ok {
		return ErrNotFound
	}
	r.Active = active
	m.rooms[id] = r
	return nil
}
