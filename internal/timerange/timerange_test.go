package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 5, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Range
		want bool
	}{
		{"Touching endpoints", Range{at(10, 0), at(11, 0)}, Range{at(11, 0), at(12, 0)}, false},
		{"Partial overlap", Range{at(9, 0), at(10, 0)}, Range{at(9, 30), at(10, 30)}, true},
		{"Containment", Range{at(8, 0), at(18, 0)}, Range{at(12, 0), at(13, 0)}, true},
		{"Identical", Range{at(9, 0), at(10, 0)}, Range{at(9, 0), at(10, 0)}, true},
		{"Disjoint", Range{at(9, 0), at(10, 0)}, Range{at(14, 0), at(15, 0)}, false},
		{"One minute overlap", Range{at(9, 0), at(10, 1)}, Range{at(10, 0), at(11, 0)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.a.Overlaps(tt.b), tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestOverlapsSymmetryGrid(t *testing.T) {
	// Every pair of 30-minute aligned ranges inside 08:00-12:00.
	var ranges []Range
	for s := 0; s < 8; s++ {
		for e := s + 1; e <= 8; e++ {
			ranges = append(ranges, Range{
				Start: at(8, 0).Add(time.Duration(s) * 30 * time.Minute),
				End:   at(8, 0).Add(time.Duration(e) * 30 * time.Minute),
			})
		}
	}
	for _, a := range ranges {
		for _, b := range ranges {
			require.Equal(t, a.Overlaps(b), b.Overlaps(a), "a=%s b=%s", a, b)
		}
	}
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Range{Start: at(10, 0), End: at(10, 0)}.Validate(), ErrInvertedRange)
	assert.ErrorIs(t, Range{Start: at(11, 0), End: at(10, 0)}.Validate(), ErrInvertedRange)
	assert.ErrorIs(t, Range{End: at(10, 0)}.Validate(), ErrEmptyRange)

	r := Range{Start: at(9, 0), End: at(10, 0)}
	require.NoError(t, r.Validate())
	assert.Equal(t, time.Hour, r.Duration())
}

func TestDurationMinutesTruncates(t *testing.T) {
	r := Range{Start: at(9, 0), End: at(9, 45).Add(59 * time.Second)}
	assert.Equal(t, 45, DurationMinutes(r))
}

func TestIsWithinBounds(t *testing.T) {
	min, max := DefaultMinDurationMinutes, DefaultMaxDurationMinutes
	assert.False(t, IsWithinBounds(29, min, max))
	assert.True(t, IsWithinBounds(30, min, max))
	assert.True(t, IsWithinBounds(720, min, max))
	assert.False(t, IsWithinBounds(721, min, max))
}

func TestIsPast(t *testing.T) {
	now := at(12, 0)
	assert.False(t, IsPast(now, now, DefaultPastGrace), "now is never past")
	assert.False(t, IsPast(at(11, 0), now, DefaultPastGrace), "exactly at the grace edge is not past")
	assert.True(t, IsPast(at(10, 59), now, DefaultPastGrace))
	assert.True(t, IsPast(at(11, 59), now, 0))
}

func TestFreeWindows(t *testing.T) {
	window := Range{at(9, 0), at(18, 0)}

	tests := []struct {
		name string
		busy []Range
		want []Range
	}{
		{
			name: "No bookings, full day available",
			want: []Range{window},
		},
		{
			name: "One booking in the middle",
			busy: []Range{{at(12, 0), at(13, 0)}},
			want: []Range{{at(9, 0), at(12, 0)}, {at(13, 0), at(18, 0)}},
		},
		{
			name: "Booking covers entire day",
			busy: []Range{{at(8, 0), at(19, 0)}},
			want: nil,
		},
		{
			name: "Overlapping / unsorted bookings",
			busy: []Range{{at(14, 0), at(16, 0)}, {at(10, 0), at(12, 0)}, {at(11, 0), at(12, 30)}},
			want: []Range{{at(9, 0), at(10, 0)}, {at(12, 30), at(14, 0)}, {at(16, 0), at(18, 0)}},
		},
		{
			name: "Busy range outside window is ignored",
			busy: []Range{{at(6, 0), at(8, 0)}},
			want: []Range{window},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FreeWindows(window, tt.busy))
		})
	}
}

func TestNormalizeMergesTouching(t *testing.T) {
	got := Normalize([]Range{{at(10, 0), at(11, 0)}, {at(9, 0), at(10, 0)}})
	assert.Equal(t, []Range{{at(9, 0), at(11, 0)}}, got)
	assert.Nil(t, Normalize(nil))
}
