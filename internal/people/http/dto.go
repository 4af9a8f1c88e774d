package http

import (
	"time"

	"github.com/nekogravitycat/classroom-booking-backend/internal/people"
)

type PersonResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       *string   `json:"email,omitempty"`
	Role        string    `json:"role"`
	CanRequest  bool      `json:"can_request"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewResponse(p *people.Person, catalog people.Catalog) PersonResponse {
	return PersonResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Role:        p.Role,
		CanRequest:  p.Active && catalog.CanRequest(p.Role),
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
}

type CreateRequest struct {
	DisplayName string  `json:"display_name" binding:"required,min=1,max=200"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Role        string  `json:"role" binding:"required"`
}
