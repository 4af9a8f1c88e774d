// Package timerange holds the interval arithmetic every availability decision reduces to.
// Ranges are half-open: a range ending at 11:00 and one starting at 11:00 do not overlap.
package timerange

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

const (
	DefaultMinDurationMinutes = 30
	DefaultMaxDurationMinutes = 12 * 60
	DefaultPastGrace          = 60 * time.Minute
)

var (
	ErrEmptyRange    = errors.New("start and end are required")
	ErrInvertedRange = errors.New("start must be before end")
)

// Range is an absolute, timezone-aware time window [Start, End).
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks that both ends are set and start < end.
func (r Range) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrEmptyRange
	}
	if !r.Start.Before(r.End) {
		return ErrInvertedRange
	}
	return nil
}

// Overlaps reports whether r and other share at least one instant.
func (r Range) Overlaps(other Range) bool {
	return Overlaps(r.Start, r.End, other.Start, other.End)
}

// Duration returns End - Start.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// In returns r expressed in loc.
func (r Range) In(loc *time.Location) Range {
	return Range{Start: r.Start.In(loc), End: r.End.In(loc)}
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}

// Overlaps returns true iff aStart < bEnd AND aEnd > bStart.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// DurationMinutes returns the length of r in whole minutes, truncated.
func DurationMinutes(r Range) int {
	return int(r.Duration() / time.Minute)
}

// IsWithinBounds reports whether minutes lies in [min, max].
func IsWithinBounds(minutes, min, max int) bool {
	return minutes >= min && minutes <= max
}

// IsPast reports whether instant precedes now minus the grace window.
func IsPast(instant, now time.Time, grace time.Duration) bool {
	return instant.Before(now.Add(-grace))
}

// Normalize sorts ranges by start and merges the overlapping or touching ones.
func Normalize(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !r.Start.After(last.End) {
			if r.End.After(last.End) {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// FreeWindows returns the parts of window not covered by any busy range.
func FreeWindows(window Range, busy []Range) []Range {
	var free []Range
	cursor := window.Start
	for _, b := range Normalize(busy) {
		if !b.Overlaps(window) {
			continue
		}
		if b.Start.After(cursor) {
			free = append(free, Range{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(window.End) {
		free = append(free, Range{Start: cursor, End: window.End})
	}
	return free
}
