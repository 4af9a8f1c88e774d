package reservation

import (
	"context"

	"github.com/nekogravitycat/classroom-booking-backend/internal/conflict"
	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
	"github.com/nekogravitycat/classroom-booking-backend/internal/workflow"
)

// ActiveLister lists reservations of a room that still occupy time and overlap window.
type ActiveLister interface {
	ListActive(ctx context.Context, roomID string, window timerange.Range, excludeID string) ([]*Reservation, error)
}

// Store persists reservations and their status history.
type Store interface {
	ActiveLister
	// GetByID returns the reservation with its full history.
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, filter Filter) ([]*Reservation, int, error)
	// ApplyTransition sets the status, bumps the version and appends entry in one atomic step.
	// It fails with ErrConcurrentModification when the stored version is not expectedVersion.
	ApplyTransition(ctx context.Context, id string, expectedVersion int, entry workflow.Entry) (*Reservation, error)
	// WithResourceLock runs fn while holding the exclusive booking lock of roomID.
	// Writes made through tx commit only if fn returns nil.
	WithResourceLock(ctx context.Context, roomID string, fn func(ctx context.Context, tx LockedStore) error) error
}

// LockedStore is the part of the store usable while a room lock is held.
type LockedStore interface {
	ActiveLister
	Insert(ctx context.Context, r *Reservation) error
	// UpdateRange rewrites the editable fields of r and bumps its version when the stored
	// version equals expectedVersion.
	UpdateRange(ctx context.Context, r *Reservation, expectedVersion int) error
}

// occupantSource adapts an ActiveLister to the conflict detector.
type occupantSource struct {
	lister ActiveLister
}

func (o occupantSource) ListOccupants(ctx context.Context, resourceID string, window timerange.Range) ([]conflict.Occupant, error) {
	found, err := o.lister.ListActive(ctx, resourceID, window, "")
	if err != nil {
		return nil, err
	}
	out := make([]conflict.Occupant, len(found))
	for i, r := range found {
		out[i] = r.Occupant()
	}
	return out, nil
}

// OccupantSource exposes the store's active reservations to a conflict.Detector.
func OccupantSource(lister ActiveLister) conflict.OccupantSource {
	return occupantSource{lister: lister}
}
