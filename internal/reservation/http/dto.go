package http

import (
	"time"

	"github.com/nekogravitycat/classroom-booking-backend/internal/capacity"
	"github.com/nekogravitycat/classroom-booking-backend/internal/conflict"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/classroom-booking-backend/internal/reservation"
	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
	"github.com/nekogravitycat/classroom-booking-backend/internal/workflow"
)

const dateLayout = "2006-01-02"

// ListReservationsRequest defines query parameters for listing reservations.
type ListReservationsRequest struct {
	request.ListParams
	RoomID      string     `form:"room_id" binding:"omitempty,uuid"`
	RequestedBy string     `form:"requested_by" binding:"omitempty,uuid"`
	ActivityID  string     `form:"activity_id" binding:"omitempty,uuid"`
	Status      string     `form:"status" binding:"omitempty,oneof=pending confirmed rejected cancelled completed"`
	From        *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To          *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Validate performs custom validation for ListReservationsRequest.
func (r *ListReservationsRequest) Validate() error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return timerange.ErrInvertedRange
	}
	return nil
}

type ReservationResponse struct {
	ID               string            `json:"id"`
	RoomID           string            `json:"room_id"`
	RequestedBy      string            `json:"requested_by"`
	ActivityID       *string           `json:"activity_id"`
	Start            time.Time         `json:"start"`
	End              time.Time         `json:"end"`
	Attendees        *int              `json:"attendees"`
	Status           workflow.Status   `json:"status"`
	Observations     string            `json:"observations,omitempty"`
	Motive           string            `json:"motive,omitempty"`
	Version          int               `json:"version"`
	ReactivatedFrom  *string           `json:"reactivated_from,omitempty"`
	AvailableActions []workflow.Action `json:"available_actions"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func NewResponse(r *reservation.Reservation) ReservationResponse {
	actions := workflow.AvailableActions(r.Status)
	if actions == nil {
		actions = []workflow.Action{}
	}
	return ReservationResponse{
		ID:               r.ID,
		RoomID:           r.RoomID,
		RequestedBy:      r.RequestedBy,
		ActivityID:       r.ActivityID,
		Start:            r.Range.Start,
		End:              r.Range.End,
		Attendees:        r.Attendees,
		Status:           r.Status,
		Observations:     r.Observations,
		Motive:           r.Motive,
		Version:          r.Version,
		ReactivatedFrom:  r.ReactivatedFrom,
		AvailableActions: actions,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// CreateRequest is the body of POST /reservations.
// RequestedBy defaults to the authenticated user.
type CreateRequest struct {
	RoomID       string    `json:"room_id" binding:"required,uuid"`
	RequestedBy  string    `json:"requested_by" binding:"omitempty,uuid"`
	ActivityID   *string   `json:"activity_id" binding:"omitempty,uuid"`
	Start        time.Time `json:"start" binding:"required"`
	End          time.Time `json:"end" binding:"required"`
	Attendees    *int      `json:"attendees" binding:"omitempty,min=0"`
	Observations string    `json:"observations" binding:"max=500"`
}

type UpdateRequest struct {
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
	Attendees    *int       `json:"attendees" binding:"omitempty,min=0"`
	ActivityID   *string    `json:"activity_id"`
	Observations *string    `json:"observations"`
}

// Validate performs custom validation for UpdateRequest.
func (r *UpdateRequest) Validate() error {
	if r.Start != nil && r.End != nil && !r.Start.Before(*r.End) {
		return timerange.ErrInvertedRange
	}
	return nil
}

type TransitionRequest struct {
	Status       string `json:"status" binding:"required"`
	Motive       string `json:"motive"`
	Observations string `json:"observations"`
}

// ActionURI binds POST /reservations/:id/actions/:action.
type ActionURI struct {
	ID     string `uri:"id" binding:"required,uuid"`
	Action string `uri:"action" binding:"required"`
}

type ActionRequest struct {
	Motive       string `json:"motive"`
	Observations string `json:"observations"`
}

type AvailabilityRequest struct {
	RoomID     string    `json:"room_id" binding:"required,uuid"`
	Start      time.Time `json:"start" binding:"required"`
	End        time.Time `json:"end" binding:"required"`
	ExcludeID  string    `json:"exclude_id" binding:"omitempty,uuid"`
	Attendees  *int      `json:"attendees" binding:"omitempty,min=0"`
	ActivityID *string   `json:"activity_id" binding:"omitempty,uuid"`
}

type AvailabilityResponse struct {
	Available bool                  `json:"available"`
	Conflicts []conflict.Record     `json:"conflicts"`
	ByKind    map[conflict.Kind]int `json:"conflicts_by_kind"`
	Capacity  *capacity.Snapshot    `json:"capacity,omitempty"`
}

func NewAvailabilityResponse(a *reservation.Availability) AvailabilityResponse {
	conflicts := a.Conflicts
	if conflicts == nil {
		conflicts = []conflict.Record{}
	}
	byKind := make(map[conflict.Kind]int)
	for kind, records := range conflict.GroupByKind(conflicts) {
		byKind[kind] = len(records)
	}
	return AvailabilityResponse{
		Available: a.Available,
		Conflicts: conflicts,
		ByKind:    byKind,
		Capacity:  a.Capacity,
	}
}

// FreeWindowsRequest binds GET /rooms/:id/free-windows.
type FreeWindowsRequest struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

type DayAvailabilityResponse struct {
	RoomID string            `json:"room_id"`
	Date   string            `json:"date"`
	Window timerange.Range   `json:"window"`
	Busy   []conflict.Record `json:"busy"`
	Free   []timerange.Range `json:"free"`
}

func NewDayAvailabilityResponse(d *reservation.DayAvailability) DayAvailabilityResponse {
	busy, free := d.Busy, d.Free
	if busy == nil {
		busy = []conflict.Record{}
	}
	if free == nil {
		free = []timerange.Range{}
	}
	return DayAvailabilityResponse{
		RoomID: d.RoomID,
		Date:   d.Date.Format(dateLayout),
		Window: d.Window,
		Busy:   busy,
		Free:   free,
	}
}
