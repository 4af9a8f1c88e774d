package http

import (
	"time"

	"github.com/nekogravitycat/classroom-booking-backend/internal/activity"
	"github.com/nekogravitycat/classroom-booking-backend/internal/capacity"
)

type ActivityResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	MaxParticipants *int      `json:"max_participants"`
	EnrolledCount   int       `json:"enrolled_count"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewResponse(a *activity.Activity) ActivityResponse {
	return ActivityResponse{
		ID:              a.ID,
		Name:            a.Name,
		MaxParticipants: a.MaxParticipants,
		EnrolledCount:   a.EnrolledCount,
		Active:          a.Active,
		CreatedAt:       a.CreatedAt,
	}
}

type CreateRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=200"`
	MaxParticipants *int   `json:"max_participants" binding:"omitempty,min=0"`
	EnrolledCount   int    `json:"enrolled_count" binding:"min=0"`
}

type ProjectionQuery struct {
	Additions int `form:"additions" binding:"min=0"`
}

type EnrollRequest struct {
	Additions int `json:"additions" binding:"required,min=1"`
}

type EnrollResponse struct {
	Activity ActivityResponse  `json:"activity"`
	Capacity capacity.Snapshot `json:"capacity"`
}
