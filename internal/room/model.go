package room

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, apperror.KindNotFound, "room not found")
	ErrInactive        = apperror.New(http.StatusNotFound, apperror.KindNotFound, "room is inactive")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, apperror.KindValidation, "name cannot be empty")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, apperror.KindValidation, "capacity cannot be negative")
	ErrInvalidHours    = apperror.New(http.StatusBadRequest, apperror.KindValidation, "opening hours must be a valid HH:MM range")
)

// Room represents a bookable classroom.
// A nil Capacity means the room is not capacity-bound.
type Room struct {
	ID           string
	Name         string
	Capacity     *int
	OpeningStart *timerange.ClockTime
	OpeningEnd   *timerange.ClockTime
	Active       bool
	CreatedAt    time.Time
}

// OpeningWindow returns the room's opening hours on the date of day, or the whole
// local day when no hours are set.
func (r *Room) OpeningWindow(day time.Time, loc *time.Location) timerange.Range {
	start := timerange.ClockTime(0).On(day, loc)
	end := start.AddDate(0, 0, 1)
	if r.OpeningStart != nil {
		start = r.OpeningStart.On(day, loc)
	}
	if r.OpeningEnd != nil {
		end = r.OpeningEnd.On(day, loc)
	}
	return timerange.Range{Start: start, End: end}
}

// Filter defines parameters for listing rooms.
type Filter struct {
	ActiveOnly bool
	Page       int
	PageSize   int
}
