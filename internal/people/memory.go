package people

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps people in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	people map[string]Person
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{people: make(map[string]Person)}
}

func (m *MemoryRepository) Create(_ context.Context, p *Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.Email != nil {
		for _, existing := range m.people {
			if existing.Email != nil && strings.EqualFold(*existing.Email, *p.Email) {
				return ErrEmailTaken
			}
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	m.people[p.ID] = *p
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.people[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}
