package http

import (
	"time"

	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/classroom-booking-backend/internal/room"
	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
)

// ListRoomsRequest defines query parameters for listing rooms.
type ListRoomsRequest struct {
	request.ListParams
	ActiveOnly bool `form:"active_only"`
}

type RoomResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Capacity     *int                 `json:"capacity"`
	OpeningStart *timerange.ClockTime `json:"opening_start"`
	OpeningEnd   *timerange.ClockTime `json:"opening_end"`
	Active       bool                 `json:"active"`
	CreatedAt    time.Time            `json:"created_at"`
}

// RoomTag is the compact form embedded in other responses.
type RoomTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewResponse(r *room.Room) RoomResponse {
	return RoomResponse{
		ID:           r.ID,
		Name:         r.Name,
		Capacity:     r.Capacity,
		OpeningStart: r.OpeningStart,
		OpeningEnd:   r.OpeningEnd,
		Active:       r.Active,
		CreatedAt:    r.CreatedAt,
	}
}

type CreateRequest struct {
	Name         string               `json:"name" binding:"required,min=1,max=100"`
	Capacity     *int                 `json:"capacity" binding:"omitempty,min=0"`
	OpeningStart *timerange.ClockTime `json:"opening_start"`
	OpeningEnd   *timerange.ClockTime `json:"opening_end"`
}
