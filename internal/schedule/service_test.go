package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/classroom-booking-backend/internal/room"
	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
)

func setup(t *testing.T) (Service, string) {
	t.Helper()
	rooms := room.NewService(room.NewMemoryRepository())
	r, err := rooms.Create(context.Background(), room.CreateRequest{Name: "Lab 1"})
	require.NoError(t, err)
	return NewService(NewMemoryRepository(), rooms), r.ID
}

func TestCreateValidation(t *testing.T) {
	svc, roomID := setup(t)
	ctx := context.Background()
	nine, ten := timerange.MustClockTime(9, 0), timerange.MustClockTime(10, 0)

	tests := []struct {
		name    string
		req     CreateRequest
		wantErr error
	}{
		{"missing room", CreateRequest{Weekday: 2, Start: nine, End: ten}, ErrRoomRequired},
		{"weekday too large", CreateRequest{RoomID: roomID, Weekday: 7, Start: nine, End: ten}, ErrInvalidWeekday},
		{"negative weekday", CreateRequest{RoomID: roomID, Weekday: -1, Start: nine, End: ten}, ErrInvalidWeekday},
		{"inverted", CreateRequest{RoomID: roomID, Weekday: 2, Start: ten, End: nine}, ErrInvalidHours},
		{"empty", CreateRequest{RoomID: roomID, Weekday: 2, Start: nine, End: nine}, ErrInvalidHours},
		{"unknown room", CreateRequest{RoomID: "nope", Weekday: 2, Start: nine, End: ten}, room.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestListActiveByRoom(t *testing.T) {
	svc, roomID := setup(t)
	ctx := context.Background()

	wed, err := svc.Create(ctx, CreateRequest{
		RoomID: roomID, Weekday: 3, Start: timerange.MustClockTime(8, 0), End: timerange.MustClockTime(10, 0), Label: "Algebra",
	})
	require.NoError(t, err)
	tue, err := svc.Create(ctx, CreateRequest{
		RoomID: roomID, Weekday: 2, Start: timerange.MustClockTime(14, 0), End: timerange.MustClockTime(16, 0),
	})
	require.NoError(t, err)

	slots, err := svc.ListActiveByRoom(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, tue.ID, slots[0].ID)
	assert.Equal(t, wed.ID, slots[1].ID)

	require.NoError(t, svc.Deactivate(ctx, tue.ID))
	slots, err = svc.ListActiveByRoom(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "Algebra", slots[0].Label)

	assert.True(t, errors.Is(svc.Deactivate(ctx, "missing"), ErrNotFound))
}

func TestSlotOn(t *testing.T) {
	s := Slot{Weekday: time.Wednesday, Start: timerange.MustClockTime(8, 0), End: timerange.MustClockTime(10, 0)}

	_, ok := s.On(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.False(t, ok, "Tuesday must not match a Wednesday slot")

	r, ok := s.On(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 13, 8, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC), r.End)
}
