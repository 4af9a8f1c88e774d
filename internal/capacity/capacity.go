// Package capacity projects occupancy of a bounded resource (room seats, activity cupos)
// before and after a hypothetical change. Every call site classifies occupancy through
// the same threshold table.
package capacity

import (
	"github.com/shopspring/decimal"
)

// Level is the presentation bucket an occupancy percentage falls in.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
	LevelOver   Level = "over_capacity"
)

var (
	hundred = decimal.NewFromInt(100)

	// Lower bound (inclusive) of each level, checked from the top.
	thresholds = []struct {
		min   decimal.Decimal
		level Level
	}{
		{decimal.NewFromInt(100), LevelOver},
		{decimal.NewFromInt(90), LevelHigh},
		{decimal.NewFromInt(70), LevelMedium},
	}
)

// Snapshot describes occupancy before and after applying a delta.
// MaxCount nil means unlimited.
type Snapshot struct {
	CurrentCount  int             `json:"current_count"`
	MaxCount      *int            `json:"max_count"`
	AfterCount    int             `json:"after_count"`
	PercentBefore decimal.Decimal `json:"percent_before"`
	PercentAfter  decimal.Decimal `json:"percent_after"`
	LevelBefore   Level           `json:"level_before"`
	LevelAfter    Level           `json:"level_after"`
	// OverCapacity means AfterCount exceeds MaxCount. A room filled exactly to its
	// maximum is accepted while LevelAfter already reads LevelOver.
	OverCapacity  bool            `json:"over_capacity"`
	Available     *int            `json:"available,omitempty"`
}

// Unlimited reports whether the resource has no maximum.
func (s Snapshot) Unlimited() bool {
	return s.MaxCount == nil
}

// Project computes the snapshot for current occupants plus delta against max.
func Project(current int, max *int, delta int) Snapshot {
	after := current + delta
	s := Snapshot{
		CurrentCount:  current,
		MaxCount:      max,
		AfterCount:    after,
		PercentBefore: decimal.Zero,
		PercentAfter:  decimal.Zero,
		LevelBefore:   LevelLow,
		LevelAfter:    LevelLow,
	}
	if max == nil {
		return s
	}

	s.PercentBefore = Percent(current, *max)
	s.PercentAfter = Percent(after, *max)
	s.LevelBefore = Classify(s.PercentBefore)
	s.LevelAfter = Classify(s.PercentAfter)
	s.OverCapacity = *max > 0 && after > *max

	available := *max - after
	if available < 0 {
		available = 0
	}
	s.Available = &available
	return s
}

// ProjectEnrollment is the shared entry point for enrollment style callers:
// current occupants, an optional maximum and the number of seats being added.
func ProjectEnrollment(current int, max *int, additions int) Snapshot {
	return Project(current, max, additions)
}

// Percent returns count/max*100 rounded to two decimals, or 0 when max <= 0.
func Percent(count, max int) decimal.Decimal {
	if max <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(max))).
		Round(2)
}

// Classify maps an occupancy percentage to its level.
func Classify(percent decimal.Decimal) Level {
	for _, t := range thresholds {
		if percent.GreaterThanOrEqual(t.min) {
			return t.level
		}
	}
	return LevelLow
}
