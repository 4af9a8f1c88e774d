package reservation

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
	"github.com/nekogravitycat/classroom-booking-backend/internal/workflow"
)

// MemoryStore is a Store kept in process memory. Room locks are plain mutexes,
// so it is only safe within a single process.
type MemoryStore struct {
	mu           sync.RWMutex
	reservations map[string]*Reservation

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reservations: make(map[string]*Reservation),
		locks:        make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) roomLock(roomID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[roomID] = l
	}
	return l
}

func (s *MemoryStore) ListActive(_ context.Context, roomID string, window timerange.Range, excludeID string) ([]*Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listActiveLocked(roomID, window, excludeID), nil
}

func (s *MemoryStore) listActiveLocked(roomID string, window timerange.Range, excludeID string) []*Reservation {
	var out []*Reservation
	for _, r := range s.reservations {
		if r.RoomID != roomID || r.ID == excludeID {
			continue
		}
		if !r.Status.Occupies() || !r.Range.Overlaps(window) {
			continue
		}
		out = append(out, clone(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Range.Start.Before(out[j].Range.Start) })
	return out
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r), nil
}

func (s *MemoryStore) List(_ context.Context, filter Filter) ([]*Reservation, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*Reservation
	for _, r := range s.reservations {
		if filter.RoomID != "" && r.RoomID != filter.RoomID {
			continue
		}
		if filter.RequestedBy != "" && r.RequestedBy != filter.RequestedBy {
			continue
		}
		if filter.ActivityID != "" && (r.ActivityID == nil || *r.ActivityID != filter.ActivityID) {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.From != nil && !r.Range.End.After(*filter.From) {
			continue
		}
		if filter.To != nil && !r.Range.Start.Before(*filter.To) {
			continue
		}
		all = append(all, r)
	}

	desc := strings.EqualFold(filter.SortOrder, "DESC")
	sort.Slice(all, func(i, j int) bool {
		if desc {
			return all[i].Range.Start.After(all[j].Range.Start)
		}
		return all[i].Range.Start.Before(all[j].Range.Start)
	})

	total := len(all)
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	start := (page - 1) * size
	if start >= total {
		return []*Reservation{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}

	out := make([]*Reservation, 0, end-start)
	for _, r := range all[start:end] {
		out = append(out, clone(r))
	}
	return out, total, nil
}

func (s *MemoryStore) ApplyTransition(_ context.Context, id string, expectedVersion int, entry workflow.Entry) (*Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	if r.Version != expectedVersion || r.Status != entry.From {
		return nil, ErrConcurrentModification
	}

	r.Status = entry.To
	if entry.Motive != "" {
		r.Motive = entry.Motive
	}
	if entry.Observations != "" {
		r.Observations = entry.Observations
	}
	r.Version++
	r.UpdatedAt = entry.At
	r.History = append(r.History, entry)
	return clone(r), nil
}

func (s *MemoryStore) WithResourceLock(ctx context.Context, roomID string, fn func(ctx context.Context, tx LockedStore) error) error {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{store: s, staged: make(map[string]*Reservation)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

// memoryTx stages writes until the locked function succeeds.
type memoryTx struct {
	store    *MemoryStore
	staged   map[string]*Reservation
	versions map[string]int
}

func (t *memoryTx) ListActive(ctx context.Context, roomID string, window timerange.Range, excludeID string) ([]*Reservation, error) {
	t.store.mu.RLock()
	committed := t.store.listActiveLocked(roomID, window, excludeID)
	t.store.mu.RUnlock()

	var out []*Reservation
	for _, r := range committed {
		if _, overridden := t.staged[r.ID]; overridden {
			continue
		}
		out = append(out, r)
	}
	for _, r := range t.staged {
		if r.RoomID == roomID && r.ID != excludeID && r.Status.Occupies() && r.Range.Overlaps(window) {
			out = append(out, clone(r))
		}
	}
	return out, nil
}

func (t *memoryTx) Insert(_ context.Context, r *Reservation) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	r.Version = 1
	r.CreatedAt = now
	r.UpdatedAt = now
	t.staged[r.ID] = clone(r)
	return nil
}

func (t *memoryTx) UpdateRange(_ context.Context, r *Reservation, expectedVersion int) error {
	t.store.mu.RLock()
	current, ok := t.store.reservations[r.ID]
	var version int
	if ok {
		version = current.Version
	}
	t.store.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if version != expectedVersion {
		return ErrConcurrentModification
	}

	r.Version = expectedVersion + 1
	r.UpdatedAt = time.Now().UTC()
	t.staged[r.ID] = clone(r)
	if t.versions == nil {
		t.versions = make(map[string]int)
	}
	t.versions[r.ID] = expectedVersion
	return nil
}

func (t *memoryTx) commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for id, expected := range t.versions {
		if current, ok := t.store.reservations[id]; !ok || current.Version != expected {
			return ErrConcurrentModification
		}
	}
	for id, r := range t.staged {
		if existing, ok := t.store.reservations[id]; ok {
			// Status and history belong to transitions, not to range edits.
			r.Status = existing.Status
			r.Motive = existing.Motive
			r.History = existing.History
			r.CreatedAt = existing.CreatedAt
		}
		t.store.reservations[id] = clone(r)
	}
	return nil
}

func clone(r *Reservation) *Reservation {
	cp := *r
	if r.ActivityID != nil {
		v := *r.ActivityID
		cp.ActivityID = &v
	}
	if r.Attendees != nil {
		v := *r.Attendees
		cp.Attendees = &v
	}
	if r.ReactivatedFrom != nil {
		v := *r.ReactivatedFrom
		cp.ReactivatedFrom = &v
	}
	cp.History = append([]workflow.Entry(nil), r.History...)
	return &cp
}
