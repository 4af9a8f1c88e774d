package http

import (
	"time"

	"github.com/nekogravitycat/classroom-booking-backend/internal/schedule"
	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
)

type SlotResponse struct {
	ID        string              `json:"id"`
	RoomID    string              `json:"room_id"`
	Weekday   int                 `json:"weekday"`
	DayName   string              `json:"day_name"`
	Start     timerange.ClockTime `json:"start"`
	End       timerange.ClockTime `json:"end"`
	OwnerRef  string              `json:"owner_ref,omitempty"`
	Label     string              `json:"label,omitempty"`
	Active    bool                `json:"active"`
	CreatedAt time.Time           `json:"created_at"`
}

func NewResponse(s *schedule.Slot) SlotResponse {
	return SlotResponse{
		ID:        s.ID,
		RoomID:    s.RoomID,
		Weekday:   int(s.Weekday),
		DayName:   s.Weekday.String(),
		Start:     s.Start,
		End:       s.End,
		OwnerRef:  s.OwnerRef,
		Label:     s.Label,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
	}
}

type CreateRequest struct {
	Weekday  *int                `json:"weekday" binding:"required,min=0,max=6"`
	Start    timerange.ClockTime `json:"start"`
	End      timerange.ClockTime `json:"end" binding:"required"`
	OwnerRef string              `json:"owner_ref" binding:"max=100"`
	Label    string              `json:"label" binding:"max=200"`
}
