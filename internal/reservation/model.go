package reservation

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/classroom-booking-backend/internal/conflict"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
	"github.com/nekogravitycat/classroom-booking-backend/internal/workflow"
)

var (
	ErrNotFound               = apperror.New(http.StatusNotFound, apperror.KindNotFound, "reservation not found")
	ErrInvalidInput           = apperror.Validation("invalid reservation request", nil)
	ErrDurationOutOfBounds    = apperror.New(http.StatusBadRequest, apperror.KindValidation, "reservation duration is out of bounds")
	ErrRequesterNotEligible   = apperror.New(http.StatusBadRequest, apperror.KindValidation, "requester may not be responsible for a reservation")
	ErrStartTimePast          = apperror.New(http.StatusUnprocessableEntity, apperror.KindPastDate, "cannot book a time in the past")
	ErrTimeConflict           = apperror.New(http.StatusConflict, apperror.KindConflict, "time slot conflicts with existing occupation")
	ErrOverCapacity           = apperror.New(http.StatusUnprocessableEntity, apperror.KindCapacity, "attendees exceed room capacity")
	ErrConcurrentModification = apperror.New(http.StatusConflict, apperror.KindConcurrency, "reservation changed concurrently, retry the request")
	ErrNotReactivatable       = apperror.New(http.StatusConflict, apperror.KindInvalidTransition, "only rejected or cancelled reservations can be reactivated")
)

// Reservation is a one-off booking of a room. It starts pending and only moves
// through the workflow; rows are never deleted.
type Reservation struct {
	ID              string
	RoomID          string
	RequestedBy     string
	ActivityID      *string
	Range           timerange.Range
	Attendees       *int
	Status          workflow.Status
	Observations    string
	Motive          string
	Version         int
	ReactivatedFrom *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	History         []workflow.Entry
}

// Occupant is the view of r used for conflict scans.
func (r *Reservation) Occupant() conflict.Occupant {
	return conflict.Occupant{
		ID:         r.ID,
		ResourceID: r.RoomID,
		Range:      r.Range,
		Status:     r.Status,
		Label:      "reserved by " + r.RequestedBy,
	}
}

// Filter defines parameters for listing reservations.
type Filter struct {
	RoomID      string
	RequestedBy string
	ActivityID  string
	Status      workflow.Status
	From        *time.Time // reservations ending after From
	To          *time.Time // reservations starting before To
	Page        int
	PageSize    int
	SortOrder   string
}

// Rules are the booking policy knobs.
type Rules struct {
	MinDurationMinutes int
	MaxDurationMinutes int
	PastGrace          time.Duration
	Location           *time.Location
}

func DefaultRules() Rules {
	return Rules{
		MinDurationMinutes: timerange.DefaultMinDurationMinutes,
		MaxDurationMinutes: timerange.DefaultMaxDurationMinutes,
		PastGrace:          timerange.DefaultPastGrace,
		Location:           time.UTC,
	}
}

func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.MinDurationMinutes <= 0 {
		r.MinDurationMinutes = d.MinDurationMinutes
	}
	if r.MaxDurationMinutes <= 0 {
		r.MaxDurationMinutes = d.MaxDurationMinutes
	}
	if r.PastGrace < 0 {
		r.PastGrace = d.PastGrace
	}
	if r.Location == nil {
		r.Location = d.Location
	}
	return r
}
