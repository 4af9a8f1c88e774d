package activity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps activities in process memory.
type MemoryRepository struct {
	mu         sync.Mutex
	activities map[string]Activity
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{activities: make(map[string]Activity)}
}

func (m *MemoryRepository) Create(_ context.Context, a *Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	m.activities[a.ID] = *a
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.activities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *MemoryRepository) AddEnrollments(_ context.Context, id string, additions int) (*Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.activities[id]
	if !ok {
		return nil, ErrNotFound
	}
	if a.MaxParticipants != nil && a.EnrolledCount+additions > *a.MaxParticipants {
		return nil, ErrEnrollmentFull
	}
	a.EnrolledCount += additions
	m.activities[id] = a
	return &a, nil
}
