package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps recurring slots in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	slots map[string]Slot
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{slots: make(map[string]Slot)}
}

func (m *MemoryRepository) Create(_ context.Context, s *Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now().UTC()
	m.slots[s.ID] = *s
	return nil
}

func (m *MemoryRepository) ListActiveByRoom(_ context.Context, roomID string) ([]*Slot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Slot
	for _, s := range m.slots {
		if s.RoomID != roomID || !s.Active {
			continue
		}
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weekday != out[j].Weekday {
			return out[i].Weekday < out[j].Weekday
		}
		return out[i].Start < out[j].Start
	})
	return out, nil
}

func (m *MemoryRepository) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[id]
	if !ok {
		return ErrNotFound
	}
	s.Active = false
	m.slots[id] = s
	return nil
}
