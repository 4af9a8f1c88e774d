package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/classroom-booking-backend/internal/capacity"
)

func intPtr(v int) *int { return &v }

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{Name: ""})
	assert.True(t, errors.Is(err, ErrNameRequired))

	_, err = svc.Create(ctx, CreateRequest{Name: "Chess", MaxParticipants: intPtr(-1)})
	assert.True(t, errors.Is(err, ErrInvalidMax))
}

func TestEnrollmentProjection(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateRequest{Name: "Robotics", MaxParticipants: intPtr(10), EnrolledCount: 8})
	require.NoError(t, err)

	snap, err := svc.EnrollmentProjection(ctx, a.ID, 0)
	require.NoError(t, err)
	assert.True(t, snap.PercentBefore.Equal(decimal.NewFromInt(80)))
	assert.True(t, snap.PercentAfter.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, capacity.LevelMedium, snap.LevelAfter)

	snap, err = svc.EnrollmentProjection(ctx, a.ID, 3)
	require.NoError(t, err)
	assert.True(t, snap.OverCapacity)
	assert.Equal(t, capacity.Project(8, intPtr(10), 3), snap)

	_, err = svc.EnrollmentProjection(ctx, "missing", 1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEnroll(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateRequest{Name: "Choir", MaxParticipants: intPtr(3), EnrolledCount: 1})
	require.NoError(t, err)

	updated, snap, err := svc.Enroll(ctx, a.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.EnrolledCount)
	assert.Equal(t, capacity.LevelOver, snap.LevelAfter)
	assert.False(t, snap.OverCapacity)

	_, snap, err = svc.Enroll(ctx, a.ID, 1)
	assert.True(t, errors.Is(err, ErrEnrollmentFull))
	assert.True(t, snap.OverCapacity)

	_, _, err = svc.Enroll(ctx, a.ID, 0)
	assert.True(t, errors.Is(err, ErrInvalidAdditions))
}

func TestEnrollUnlimited(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateRequest{Name: "Open lecture"})
	require.NoError(t, err)

	updated, snap, err := svc.Enroll(ctx, a.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, 500, updated.EnrolledCount)
	assert.True(t, snap.Unlimited())
	assert.False(t, snap.OverCapacity)
}
