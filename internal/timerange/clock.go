package timerange

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime is a time of day with minute precision, stored as minutes since midnight.
type ClockTime int

const minutesPerDay = 24 * 60

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	return ClockTime(hour*60 + minute), nil
}

// MustClockTime is NewClockTime for constants and tests.
func MustClockTime(hour, minute int) ClockTime {
	c, err := NewClockTime(hour, minute)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseClockTime accepts "HH:MM" or "HH:MM:SS" (seconds are dropped).
func ParseClockTime(s string) (ClockTime, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewClockTime(t.Hour(), t.Minute())
		}
	}
	return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

// Valid reports whether c is inside a single day.
func (c ClockTime) Valid() bool {
	return c >= 0 && c < minutesPerDay
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On returns the instant at time of day c on the calendar date of day, in loc.
func (c ClockTime) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, loc)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ProjectOntoDate anchors a weekly start/end time of day onto the calendar date of day.
// It returns false without any arithmetic when day does not fall on weekday in loc.
func ProjectOntoDate(weekday time.Weekday, start, end ClockTime, day time.Time, loc *time.Location) (Range, bool) {
	if day.In(loc).Weekday() != weekday {
		return Range{}, false
	}
	return Range{Start: start.On(day, loc), End: end.On(day, loc)}, true
}

// LocalDates returns every calendar date in loc touched by r, as midnight instants.
func LocalDates(r Range, loc *time.Location) []time.Time {
	first := ClockTime(0).On(r.Start, loc)
	var dates []time.Time
	for d := first; d.Before(r.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
