package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/classroom-booking-backend/internal/activity"
	"github.com/nekogravitycat/classroom-booking-backend/internal/capacity"
	"github.com/nekogravitycat/classroom-booking-backend/internal/conflict"
	"github.com/nekogravitycat/classroom-booking-backend/internal/people"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/classroom-booking-backend/internal/room"
	"github.com/nekogravitycat/classroom-booking-backend/internal/schedule"
	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
	"github.com/nekogravitycat/classroom-booking-backend/internal/workflow"
)

// fixedNow is Friday 2024-03-01 08:00 UTC, a few days before every scenario date.
var fixedNow = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 3, day, hour, minute, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

type fixture struct {
	svc        Service
	store      *MemoryStore
	rooms      room.Service
	people     people.Service
	activities activity.Service
	slots      schedule.Service

	roomID    string
	teacherID string
	studentID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := NewMemoryStore()
	rooms := room.NewService(room.NewMemoryRepository())
	directory := people.NewService(people.NewMemoryRepository(), people.DefaultCatalog())
	activities := activity.NewService(activity.NewMemoryRepository())
	slotRepo := schedule.NewMemoryRepository()
	slots := schedule.NewService(slotRepo, rooms)
	detector := conflict.NewDetector(OccupantSource(store), slotRepo, time.UTC)

	svc := NewService(store, rooms, directory, activities, detector, DefaultRules(),
		WithClock(func() time.Time { return fixedNow }),
	)

	r1, err := rooms.Create(ctx, room.CreateRequest{Name: "R1"})
	require.NoError(t, err)
	teacher, err := directory.Create(ctx, people.CreateRequest{DisplayName: "Ana Ruiz", Role: "teacher"})
	require.NoError(t, err)
	student, err := directory.Create(ctx, people.CreateRequest{DisplayName: "Leo", Role: "student"})
	require.NoError(t, err)

	return &fixture{
		svc:        svc,
		store:      store,
		rooms:      rooms,
		people:     directory,
		activities: activities,
		slots:      slots,
		roomID:     r1.ID,
		teacherID:  teacher.ID,
		studentID:  student.ID,
	}
}

func (f *fixture) request(start, end time.Time) CreateRequest {
	return CreateRequest{RoomID: f.roomID, RequestedBy: f.teacherID, Start: start, End: end}
}

func (f *fixture) mustCreate(t *testing.T, start, end time.Time) *Reservation {
	t.Helper()
	r, err := f.svc.Create(context.Background(), f.request(start, end))
	require.NoError(t, err)
	return r
}

func (f *fixture) addTuesdaySlot(t *testing.T) *schedule.Slot {
	t.Helper()
	s, err := f.slots.Create(context.Background(), schedule.CreateRequest{
		RoomID:  f.roomID,
		Weekday: int(time.Tuesday),
		Start:   timerange.MustClockTime(14, 0),
		End:     timerange.MustClockTime(16, 0),
		Label:   "Physics 101",
	})
	require.NoError(t, err)
	return s
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	r := f.mustCreate(t, at(5, 9, 0), at(5, 10, 0))

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, workflow.StatusPending, r.Status)
	assert.Equal(t, 1, r.Version)
	assert.Empty(t, r.History)

	stored, err := f.svc.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Range, stored.Range)
}

func TestCreatePipeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inactive, err := f.rooms.Create(ctx, room.CreateRequest{Name: "Closed"})
	require.NoError(t, err)
	require.NoError(t, f.rooms.Deactivate(ctx, inactive.ID))

	tests := []struct {
		name      string
		mutate    func(*CreateRequest)
		wantErr   error
		wantKind  apperror.Kind
		wantField string
	}{
		{
			name:      "missing room",
			mutate:    func(r *CreateRequest) { r.RoomID = "" },
			wantKind:  apperror.KindValidation,
			wantField: "room_id",
		},
		{
			name:      "missing requester",
			mutate:    func(r *CreateRequest) { r.RequestedBy = " " },
			wantKind:  apperror.KindValidation,
			wantField: "requested_by",
		},
		{
			name:      "inverted range",
			mutate:    func(r *CreateRequest) { r.Start, r.End = at(5, 10, 0), at(5, 9, 0) },
			wantKind:  apperror.KindValidation,
			wantField: "end",
		},
		{
			name:      "too short",
			mutate:    func(r *CreateRequest) { r.End = r.Start.Add(29 * time.Minute) },
			wantErr:   ErrDurationOutOfBounds,
			wantKind:  apperror.KindValidation,
			wantField: "end",
		},
		{
			name:    "too long",
			mutate:  func(r *CreateRequest) { r.End = r.Start.Add(12*time.Hour + time.Minute) },
			wantErr: ErrDurationOutOfBounds,
		},
		{
			name:     "in the past",
			mutate:   func(r *CreateRequest) { r.Start, r.End = fixedNow.Add(-2*time.Hour), fixedNow.Add(-time.Hour) },
			wantErr:  ErrStartTimePast,
			wantKind: apperror.KindPastDate,
		},
		{
			name:     "unknown room",
			mutate:   func(r *CreateRequest) { r.RoomID = "00000000-0000-0000-0000-000000000000" },
			wantErr:  room.ErrNotFound,
			wantKind: apperror.KindNotFound,
		},
		{
			name:     "inactive room",
			mutate:   func(r *CreateRequest) { r.RoomID = inactive.ID },
			wantErr:  room.ErrInactive,
			wantKind: apperror.KindNotFound,
		},
		{
			name:      "requester without role",
			mutate:    func(r *CreateRequest) { r.RequestedBy = f.studentID },
			wantErr:   ErrRequesterNotEligible,
			wantField: "requested_by",
		},
		{
			name:     "unknown requester",
			mutate:   func(r *CreateRequest) { r.RequestedBy = "ghost" },
			wantErr:  people.ErrNotFound,
			wantKind: apperror.KindNotFound,
		},
		{
			name: "unknown activity",
			mutate: func(r *CreateRequest) {
				id := "ghost"
				r.ActivityID = &id
			},
			wantErr: activity.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request(at(5, 9, 0), at(5, 10, 0))
			tt.mutate(&req)

			_, err := f.svc.Create(ctx, req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, apperror.KindOf(err))
			}
			if tt.wantField != "" {
				var appErr *apperror.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Contains(t, appErr.Fields, tt.wantField)
			}
		})
	}

	list, total, err := f.svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestCreateWithinGraceWindow(t *testing.T) {
	f := newFixture(t)

	r, err := f.svc.Create(context.Background(), f.request(fixedNow.Add(-30*time.Minute), fixedNow.Add(30*time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPending, r.Status)
}

func TestCreateReportsAllConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addTuesdaySlot(t)

	early := f.mustCreate(t, at(5, 9, 0), at(5, 10, 0))
	late := f.mustCreate(t, at(5, 16, 30), at(5, 17, 30))

	_, err := f.svc.Create(ctx, f.request(at(5, 9, 30), at(5, 17, 0)))
	require.ErrorIs(t, err, ErrTimeConflict)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	records, ok := appErr.Details.([]conflict.Record)
	require.True(t, ok)
	require.Len(t, records, 3)
	assert.Equal(t, early.ID, records[0].SourceID)
	assert.Equal(t, conflict.KindRecurring, records[1].Kind)
	assert.Equal(t, "Physics 101", records[1].Label)
	assert.Equal(t, late.ID, records[2].SourceID)
}

func TestTouchingReservationsDoNotConflict(t *testing.T) {
	f := newFixture(t)

	f.mustCreate(t, at(5, 9, 0), at(5, 10, 0))
	f.mustCreate(t, at(5, 10, 0), at(5, 11, 0))
	f.mustCreate(t, at(5, 8, 0), at(5, 9, 0))
}

func TestCheckAvailabilityOneOffScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	existing := f.mustCreate(t, at(5, 9, 0), at(5, 10, 0))
	_, err := f.svc.Act(ctx, existing.ID, workflow.ActionApprove, "coordinator", workflow.Metadata{})
	require.NoError(t, err)

	avail, err := f.svc.CheckAvailability(ctx, AvailabilityRequest{RoomID: f.roomID, Start: at(5, 9, 30), End: at(5, 10, 30)})
	require.NoError(t, err)
	assert.False(t, avail.Available)
	require.Len(t, avail.Conflicts, 1)
	assert.Equal(t, conflict.KindOneOff, avail.Conflicts[0].Kind)
	assert.Equal(t, timerange.Range{Start: at(5, 9, 0), End: at(5, 10, 0)}, avail.Conflicts[0].Occupied)
	assert.Nil(t, avail.Capacity)

	self, err := f.svc.CheckAvailability(ctx, AvailabilityRequest{
		RoomID: f.roomID, Start: at(5, 9, 30), End: at(5, 10, 30), ExcludeID: existing.ID,
	})
	require.NoError(t, err)
	assert.True(t, self.Available)
}

func TestCheckAvailabilityRecurringScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addTuesdaySlot(t)

	tuesday, err := f.svc.CheckAvailability(ctx, AvailabilityRequest{RoomID: f.roomID, Start: at(12, 15, 0), End: at(12, 15, 30)})
	require.NoError(t, err)
	assert.False(t, tuesday.Available)
	require.Len(t, tuesday.Conflicts, 1)
	assert.Equal(t, conflict.KindRecurring, tuesday.Conflicts[0].Kind)

	wednesday, err := f.svc.CheckAvailability(ctx, AvailabilityRequest{RoomID: f.roomID, Start: at(13, 15, 0), End: at(13, 15, 30)})
	require.NoError(t, err)
	assert.True(t, wednesday.Available)
	assert.Empty(t, wednesday.Conflicts)
}

func TestCheckAvailabilityValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CheckAvailability(context.Background(), AvailabilityRequest{RoomID: f.roomID, Start: at(5, 10, 0), End: at(5, 10, 0)})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	small, err := f.rooms.Create(ctx, room.CreateRequest{Name: "Seminar", Capacity: intPtr(20)})
	require.NoError(t, err)

	req := CreateRequest{RoomID: small.ID, RequestedBy: f.teacherID, Start: at(5, 9, 0), End: at(5, 10, 0), Attendees: intPtr(25)}
	_, err = f.svc.Create(ctx, req)
	require.ErrorIs(t, err, ErrOverCapacity)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	snap, ok := appErr.Details.(*capacity.Snapshot)
	require.True(t, ok)
	assert.True(t, snap.OverCapacity)
	assert.True(t, snap.PercentAfter.Equal(decimal.NewFromInt(125)))

	req.Attendees = intPtr(20)
	_, err = f.svc.Create(ctx, req)
	require.NoError(t, err)

	avail, err := f.svc.CheckAvailability(ctx, AvailabilityRequest{
		RoomID: small.ID, Start: at(6, 9, 0), End: at(6, 10, 0), Attendees: intPtr(18),
	})
	require.NoError(t, err)
	assert.True(t, avail.Available)
	require.NotNil(t, avail.Capacity)
	assert.Equal(t, capacity.LevelHigh, avail.Capacity.LevelAfter)
}

func TestCapacityFromActivityEnrollment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	small, err := f.rooms.Create(ctx, room.CreateRequest{Name: "Seminar", Capacity: intPtr(20)})
	require.NoError(t, err)
	course, err := f.activities.Create(ctx, activity.CreateRequest{Name: "Robotics", EnrolledCount: 30})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, CreateRequest{
		RoomID: small.ID, RequestedBy: f.teacherID, ActivityID: &course.ID, Start: at(5, 9, 0), End: at(5, 10, 0),
	})
	assert.ErrorIs(t, err, ErrOverCapacity)

	// Explicit attendees win over the enrollment count.
	_, err = f.svc.Create(ctx, CreateRequest{
		RoomID: small.ID, RequestedBy: f.teacherID, ActivityID: &course.ID, Start: at(5, 9, 0), End: at(5, 10, 0),
		Attendees: intPtr(12),
	})
	assert.NoError(t, err)
}

func TestConcurrentCreatesOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		succeed  int
		failures []error
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Create(ctx, f.request(at(5, 9, 0), at(5, 10, 0)))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeed++
				return
			}
			failures = append(failures, err)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, succeed)
	require.Len(t, failures, workers-1)
	for _, err := range failures {
		kind := apperror.KindOf(err)
		assert.True(t, kind == apperror.KindConflict || kind == apperror.KindConcurrency, "unexpected kind %s", kind)
	}

	_, total, err := f.svc.List(ctx, Filter{RoomID: f.roomID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.mustCreate(t, at(5, 9, 0), at(5, 10, 0))

	_, err := f.svc.Transition(ctx, r.ID, workflow.StatusCompleted, "coordinator", workflow.Metadata{})
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	_, err = f.svc.Transition(ctx, r.ID, workflow.StatusRejected, "coordinator", workflow.Metadata{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	rejected, err := f.svc.Transition(ctx, r.ID, workflow.StatusRejected, "coordinator", workflow.Metadata{Motive: "room is closed!"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusRejected, rejected.Status)
	assert.Equal(t, 2, rejected.Version)
	assert.Equal(t, "room is closed!", rejected.Motive)

	history, err := f.svc.History(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, workflow.StatusPending, history[0].From)
	assert.Equal(t, workflow.StatusRejected, history[0].To)
	assert.Equal(t, "coordinator", history[0].Actor)
	assert.Equal(t, fixedNow, history[0].At)

	_, err = f.svc.Act(ctx, r.ID, workflow.ActionApprove, "coordinator", workflow.Metadata{})
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	_, err = f.svc.Act(ctx, r.ID, workflow.Action("archive"), "coordinator", workflow.Metadata{})
	assert.ErrorIs(t, err, workflow.ErrUnknownAction)
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.mustCreate(t, at(5, 9, 0), at(5, 10, 0))

	_, err := f.svc.Act(ctx, r.ID, workflow.ActionApprove, "coordinator", workflow.Metadata{Observations: "projector ready"})
	require.NoError(t, err)
	done, err := f.svc.Act(ctx, r.ID, workflow.ActionComplete, "coordinator", workflow.Metadata{})
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusCompleted, done.Status)
	assert.Equal(t, "projector ready", done.Observations)
	require.Len(t, done.History, 2)

	// A completed reservation still occupies its window.
	_, err = f.svc.Create(ctx, f.request(at(5, 9, 0), at(5, 10, 0)))
	assert.ErrorIs(t, err, ErrTimeConflict)
}

func TestStaleTransitionIsRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.mustCreate(t, at(5, 9, 0), at(5, 10, 0))

	entry, err := workflow.Transition(r.Status, workflow.StatusConfirmed, "a", workflow.Metadata{}, fixedNow)
	require.NoError(t, err)
	_, err = f.store.ApplyTransition(ctx, r.ID, r.Version, entry)
	require.NoError(t, err)

	cancel, err := workflow.Transition(r.Status, workflow.StatusCancelled, "b", workflow.Metadata{Motive: "no longer needed"}, fixedNow)
	require.NoError(t, err)
	_, err = f.store.ApplyTransition(ctx, r.ID, r.Version, cancel)
	assert.ErrorIs(t, err, ErrConcurrentModification)
	assert.True(t, apperror.IsRetryable(err))
}

func TestConcurrentApproveAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.mustCreate(t, at(5, 9, 0), at(5, 10, 0))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = f.svc.Act(ctx, r.ID, workflow.ActionApprove, "a", workflow.Metadata{})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = f.svc.Act(ctx, r.ID, workflow.ActionReject, "b", workflow.Metadata{Motive: "double booked"})
	}()
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		kind := apperror.KindOf(err)
		assert.True(t, kind == apperror.KindConcurrency || kind == apperror.KindInvalidTransition, "unexpected kind %s", kind)
	}
	assert.Equal(t, 1, succeeded)

	history, err := f.svc.History(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.mustCreate(t, at(5, 9, 0), at(5, 10, 0))
	other := f.mustCreate(t, at(5, 11, 0), at(5, 12, 0))

	// Overlaps its own previous window only.
	newStart, newEnd := at(5, 9, 30), at(5, 10, 30)
	moved, err := f.svc.Update(ctx, r.ID, UpdateRequest{Start: &newStart, End: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, timerange.Range{Start: newStart, End: newEnd}, moved.Range)
	assert.Equal(t, 2, moved.Version)

	clashEnd := at(5, 11, 30)
	_, err = f.svc.Update(ctx, r.ID, UpdateRequest{End: &clashEnd})
	require.ErrorIs(t, err, ErrTimeConflict)

	tooShortEnd := at(5, 9, 45)
	_, err = f.svc.Update(ctx, r.ID, UpdateRequest{End: &tooShortEnd})
	assert.ErrorIs(t, err, ErrDurationOutOfBounds)

	_, err = f.svc.Act(ctx, other.ID, workflow.ActionCancel, "coordinator", workflow.Metadata{Motive: "course moved online"})
	require.NoError(t, err)
	note := "moved to the afternoon"
	_, err = f.svc.Update(ctx, other.ID, UpdateRequest{Observations: &note})
	assert.ErrorIs(t, err, workflow.ErrTerminalStatus)
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))

	// The cancelled reservation no longer blocks its window.
	_, err = f.svc.Update(ctx, r.ID, UpdateRequest{End: &clashEnd})
	assert.NoError(t, err)
}

func TestUpdateOfStartedReservationKeepsRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.mustCreate(t, fixedNow.Add(-30*time.Minute), fixedNow.Add(time.Hour))

	// Editing observations must not trip the past check once the grace window is gone.
	svc := NewService(f.store, f.rooms, f.people, f.activities,
		conflict.NewDetector(OccupantSource(f.store), schedule.NewMemoryRepository(), time.UTC),
		DefaultRules(),
		WithClock(func() time.Time { return fixedNow.Add(3 * time.Hour) }),
	)
	note := "bring adapters"
	updated, err := svc.Update(ctx, r.ID, UpdateRequest{Observations: &note})
	require.NoError(t, err)
	assert.Equal(t, note, updated.Observations)
}

func TestReactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.mustCreate(t, at(5, 9, 0), at(5, 10, 0))

	_, err := f.svc.Reactivate(ctx, r.ID, "coordinator")
	assert.ErrorIs(t, err, ErrNotReactivatable)

	_, err = f.svc.Act(ctx, r.ID, workflow.ActionCancel, "coordinator", workflow.Metadata{Motive: "teacher is sick"})
	require.NoError(t, err)

	again, err := f.svc.Reactivate(ctx, r.ID, "coordinator")
	require.NoError(t, err)
	assert.NotEqual(t, r.ID, again.ID)
	assert.Equal(t, workflow.StatusPending, again.Status)
	require.NotNil(t, again.ReactivatedFrom)
	assert.Equal(t, r.ID, *again.ReactivatedFrom)
	assert.Equal(t, r.Range, again.Range)

	old, err := f.svc.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCancelled, old.Status)
}

func TestReactivateRechecksConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.mustCreate(t, at(5, 9, 0), at(5, 10, 0))

	_, err := f.svc.Act(ctx, r.ID, workflow.ActionReject, "coordinator", workflow.Metadata{Motive: "missing paperwork"})
	require.NoError(t, err)

	taken := f.mustCreate(t, at(5, 9, 30), at(5, 10, 30))

	_, err = f.svc.Reactivate(ctx, r.ID, "coordinator")
	require.ErrorIs(t, err, ErrTimeConflict)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	records := appErr.Details.([]conflict.Record)
	require.Len(t, records, 1)
	assert.Equal(t, taken.ID, records[0].SourceID)
}

func TestFreeWindows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	opens, closes := timerange.MustClockTime(8, 0), timerange.MustClockTime(20, 0)
	rm, err := f.rooms.Create(ctx, room.CreateRequest{Name: "Lab", OpeningStart: &opens, OpeningEnd: &closes})
	require.NoError(t, err)
	_, err = f.slots.Create(ctx, schedule.CreateRequest{
		RoomID: rm.ID, Weekday: int(time.Tuesday), Start: timerange.MustClockTime(14, 0), End: timerange.MustClockTime(16, 0),
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateRequest{RoomID: rm.ID, RequestedBy: f.teacherID, Start: at(5, 9, 0), End: at(5, 10, 0)})
	require.NoError(t, err)

	day, err := f.svc.FreeWindows(ctx, rm.ID, at(5, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, at(5, 0, 0), day.Date)
	assert.Len(t, day.Busy, 2)
	assert.Equal(t, []timerange.Range{
		{Start: at(5, 8, 0), End: at(5, 9, 0)},
		{Start: at(5, 10, 0), End: at(5, 14, 0)},
		{Start: at(5, 16, 0), End: at(5, 20, 0)},
	}, day.Free)
}

func TestMemoryStoreRollsBackFailedCommit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithResourceLock(ctx, "R1", func(ctx context.Context, tx LockedStore) error {
		if err := tx.Insert(ctx, &Reservation{RoomID: "R1", Status: workflow.StatusPending,
			Range: timerange.Range{Start: at(5, 9, 0), End: at(5, 10, 0)}}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, total, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
