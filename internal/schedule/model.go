package schedule

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
)

var (
	ErrNotFound       = apperror.New(http.StatusNotFound, apperror.KindNotFound, "recurring slot not found")
	ErrInvalidWeekday = apperror.New(http.StatusBadRequest, apperror.KindValidation, "weekday must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidHours   = apperror.New(http.StatusBadRequest, apperror.KindValidation, "start must be before end")
	ErrRoomRequired   = apperror.New(http.StatusBadRequest, apperror.KindValidation, "room_id is required")
)

// Slot is a weekly repeating occupation of a room, such as a class section.
// It has no absolute date and matches every date that falls on Weekday.
type Slot struct {
	ID        string
	RoomID    string
	Weekday   time.Weekday
	Start     timerange.ClockTime
	End       timerange.ClockTime
	OwnerRef  string
	Label     string
	Active    bool
	CreatedAt time.Time
}

// On projects the slot onto the calendar date of day, if day falls on the slot's weekday.
func (s Slot) On(day time.Time, loc *time.Location) (timerange.Range, bool) {
	return timerange.ProjectOntoDate(s.Weekday, s.Start, s.End, day, loc)
}
