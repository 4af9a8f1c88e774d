// Package conflict finds what already occupies a room during a candidate window.
// It reads one-off reservations and weekly recurring slots and never writes anything.
package conflict

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nekogravitycat/classroom-booking-backend/internal/schedule"
	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
	"github.com/nekogravitycat/classroom-booking-backend/internal/workflow"
)

// Kind tells where a conflict comes from.
type Kind string

const (
	KindOneOff    Kind = "one_off"
	KindRecurring Kind = "recurring"
)

// Record is a single occupation overlapping the candidate window.
type Record struct {
	Kind       Kind            `json:"kind"`
	SourceID   string          `json:"source_id"`
	ResourceID string          `json:"resource_id"`
	Occupied   timerange.Range `json:"occupied"`
	Label      string          `json:"label,omitempty"`
	Status     workflow.Status `json:"status,omitempty"`
}

// Occupant is the view of a one-off reservation the scan needs.
type Occupant struct {
	ID         string
	ResourceID string
	Range      timerange.Range
	Status     workflow.Status
	Label      string
}

// OccupantSource lists one-off reservations of a room that may overlap window.
// Implementations may return more than needed; Scan filters again.
type OccupantSource interface {
	ListOccupants(ctx context.Context, resourceID string, window timerange.Range) ([]Occupant, error)
}

// SlotSource lists active recurring slots of a room. schedule.Repository satisfies it.
type SlotSource interface {
	ListActiveByRoom(ctx context.Context, roomID string) ([]*schedule.Slot, error)
}

// Scan reports every occupant and recurring slot overlapping candidate.
// The reservation with id excludeID is skipped so an update never collides with itself.
// Recurring slots are projected onto each local date the candidate touches.
func Scan(candidate timerange.Range, occupants []Occupant, slots []*schedule.Slot, loc *time.Location, excludeID string) []Record {
	if loc == nil {
		loc = time.UTC
	}

	var records []Record
	for _, o := range occupants {
		if excludeID != "" && o.ID == excludeID {
			continue
		}
		if !o.Status.Occupies() {
			continue
		}
		if !o.Range.Overlaps(candidate) {
			continue
		}
		records = append(records, Record{
			Kind:       KindOneOff,
			SourceID:   o.ID,
			ResourceID: o.ResourceID,
			Occupied:   o.Range,
			Label:      o.Label,
			Status:     o.Status,
		})
	}

	if len(slots) == 0 {
		return records
	}

	dates := timerange.LocalDates(candidate, loc)
	for _, s := range slots {
		if !s.Active {
			continue
		}
		for _, day := range dates {
			projected, ok := s.On(day, loc)
			if !ok || !projected.Overlaps(candidate) {
				continue
			}
			records = append(records, Record{
				Kind:       KindRecurring,
				SourceID:   s.ID,
				ResourceID: s.RoomID,
				Occupied:   projected,
				Label:      s.Label,
			})
		}
	}
	return records
}

// Detector runs Scan against live data sources.
type Detector struct {
	occupants OccupantSource
	slots     SlotSource
	loc       *time.Location
}

func NewDetector(occupants OccupantSource, slots SlotSource, loc *time.Location) *Detector {
	if loc == nil {
		loc = time.UTC
	}
	return &Detector{
		occupants: occupants,
		slots:     slots,
		loc:       loc,
	}
}

// Location is the zone recurring slots are interpreted in.
func (d *Detector) Location() *time.Location {
	return d.loc
}

// Detect returns all conflicts for candidate in resourceID. The result is unsorted.
func (d *Detector) Detect(ctx context.Context, resourceID string, candidate timerange.Range, excludeID string) ([]Record, error) {
	return d.DetectIn(ctx, d.occupants, resourceID, candidate, excludeID)
}

// DetectIn is Detect with a different occupant source, typically one bound to an open transaction.
func (d *Detector) DetectIn(ctx context.Context, occupants OccupantSource, resourceID string, candidate timerange.Range, excludeID string) ([]Record, error) {
	found, err := occupants.ListOccupants(ctx, resourceID, candidate)
	if err != nil {
		return nil, fmt.Errorf("list occupants failed: %w", err)
	}
	slots, err := d.slots.ListActiveByRoom(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list recurring slots failed: %w", err)
	}
	return Scan(candidate, found, slots, d.loc, excludeID), nil
}

// SortByStart orders records by occupied start, one-off before recurring on ties.
func SortByStart(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Occupied.Start.Equal(b.Occupied.Start) {
			return a.Occupied.Start.Before(b.Occupied.Start)
		}
		if a.Kind != b.Kind {
			return a.Kind == KindOneOff
		}
		return a.SourceID < b.SourceID
	})
}

// GroupByKind splits records by their source kind.
func GroupByKind(records []Record) map[Kind][]Record {
	groups := make(map[Kind][]Record)
	for _, r := range records {
		groups[r.Kind] = append(groups[r.Kind], r)
	}
	return groups
}

// Ranges returns the occupied ranges of records.
func Ranges(records []Record) []timerange.Range {
	out := make([]timerange.Range, len(records))
	for i, r := range records {
		out[i] = r.Occupied
	}
	return out
}
