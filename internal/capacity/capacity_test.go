package capacity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestProjectZeroDeltaIsIdempotent(t *testing.T) {
	s := Project(8, intPtr(10), 0)

	assert.True(t, s.PercentBefore.Equal(decimal.NewFromInt(80)), "got %s", s.PercentBefore)
	assert.True(t, s.PercentAfter.Equal(s.PercentBefore))
	assert.Equal(t, LevelMedium, s.LevelBefore)
	assert.Equal(t, s.LevelBefore, s.LevelAfter)
	assert.False(t, s.OverCapacity)
	require.NotNil(t, s.Available)
	assert.Equal(t, 2, *s.Available)
}

func TestProjectOverCapacity(t *testing.T) {
	s := Project(9, intPtr(10), 3)

	assert.Equal(t, 12, s.AfterCount)
	assert.True(t, s.PercentAfter.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, LevelHigh, s.LevelBefore)
	assert.Equal(t, LevelOver, s.LevelAfter)
	assert.True(t, s.OverCapacity)
	assert.Equal(t, 0, *s.Available)
}

func TestProjectExactlyFullIsNotOver(t *testing.T) {
	s := Project(0, intPtr(30), 30)

	assert.Equal(t, LevelOver, s.LevelAfter, "100% is classified as over capacity level")
	assert.False(t, s.OverCapacity, "filling every seat is allowed")
}

func TestProjectUnlimited(t *testing.T) {
	s := Project(500, nil, 1000)

	assert.True(t, s.Unlimited())
	assert.True(t, s.PercentBefore.IsZero())
	assert.True(t, s.PercentAfter.IsZero())
	assert.False(t, s.OverCapacity)
	assert.Nil(t, s.Available)
}

func TestProjectZeroMax(t *testing.T) {
	s := Project(3, intPtr(0), 1)
	assert.True(t, s.PercentAfter.IsZero())
	assert.False(t, s.OverCapacity)
}

func TestClassifyThresholds(t *testing.T) {
	tests := []struct {
		count int
		want  Level
	}{
		{0, LevelLow},
		{69, LevelLow},
		{70, LevelMedium},
		{89, LevelMedium},
		{90, LevelHigh},
		{99, LevelHigh},
		{100, LevelOver},
		{150, LevelOver},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(Percent(tt.count, 100)), "count=%d", tt.count)
	}
}

func TestPercentRoundsToTwoDecimals(t *testing.T) {
	assert.Equal(t, "33.33", Percent(1, 3).StringFixed(2))
	assert.Equal(t, "70.00", Percent(7, 10).StringFixed(2))
}

func TestProjectEnrollmentMatchesProject(t *testing.T) {
	assert.Equal(t, Project(18, intPtr(20), 2), ProjectEnrollment(18, intPtr(20), 2))
}
