package workflow

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/apperror"
)

var now = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func TestTransitionTable(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusRejected, StatusCancelled, StatusCompleted}
	legal := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
		StatusConfirmed: {StatusCompleted, StatusCancelled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, st := range legal[from] {
				if st == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestPendingToCompletedIsInvalid(t *testing.T) {
	_, err := Transition(StatusPending, StatusCompleted, "admin", Metadata{}, now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
}

func TestRejectRequiresMotive(t *testing.T) {
	_, err := Transition(StatusPending, StatusRejected, "admin", Metadata{}, now)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Fields, "motive")

	_, err = Transition(StatusPending, StatusRejected, "admin", Metadata{Motive: "too short"}, now)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = Transition(StatusPending, StatusCancelled, "admin", Metadata{Motive: strings.Repeat("x", 501)}, now)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestRejectWithMotiveProducesEntry(t *testing.T) {
	motive := "room is closed!" // 15 characters
	require.Len(t, motive, 15)

	entry, err := Transition(StatusPending, StatusRejected, "admin-1", Metadata{Motive: motive}, now)
	require.NoError(t, err)
	assert.Equal(t, Entry{
		Actor:  "admin-1",
		From:   StatusPending,
		To:     StatusRejected,
		Motive: motive,
		At:     now,
	}, entry)
}

func TestMotiveCountsCharactersNotBytes(t *testing.T) {
	// 10 runes, 20 bytes.
	motive := strings.Repeat("ñ", 10)
	_, err := Transition(StatusConfirmed, StatusCancelled, "u", Metadata{Motive: motive}, now)
	assert.NoError(t, err)
}

func TestObservationsLimit(t *testing.T) {
	_, err := Transition(StatusPending, StatusConfirmed, "admin", Metadata{Observations: "bring the projector"}, now)
	assert.NoError(t, err)

	_, err = Transition(StatusConfirmed, StatusCompleted, "admin", Metadata{Observations: strings.Repeat("o", 501)}, now)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestActorRequired(t *testing.T) {
	_, err := Transition(StatusPending, StatusConfirmed, " ", Metadata{}, now)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestTerminalStatuses(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, Status("bogus").IsTerminal())
}

func TestOccupies(t *testing.T) {
	assert.True(t, StatusPending.Occupies())
	assert.True(t, StatusConfirmed.Occupies())
	assert.True(t, StatusCompleted.Occupies())
	assert.False(t, StatusRejected.Occupies())
	assert.False(t, StatusCancelled.Occupies())
	assert.Equal(t, []Status{StatusPending, StatusConfirmed, StatusCompleted}, OccupyingStatuses())
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" CONFIRMED ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, st)

	_, err = ParseStatus("archived")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestActions(t *testing.T) {
	assert.Equal(t, []Action{ActionApprove, ActionReject, ActionCancel}, AvailableActions(StatusPending))
	assert.Equal(t, []Action{ActionCancel, ActionComplete}, AvailableActions(StatusConfirmed))
	assert.Empty(t, AvailableActions(StatusCancelled))

	st, err := ActionReject.Target()
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, st)
	assert.True(t, ActionReject.RequiresMotive())
	assert.False(t, ActionApprove.RequiresMotive())

	_, err = Action("archive").Target()
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
