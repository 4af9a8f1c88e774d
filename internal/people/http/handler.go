package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/classroom-booking-backend/internal/people"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/response"
)

type Handler struct {
	service people.Service
}

func NewHandler(service people.Service) *Handler {
	return &Handler{service: service}
}

// Catalog returns the roles and relationship types in effect.
func (h *Handler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Catalog())
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), people.CreateRequest{
		DisplayName: body.DisplayName,
		Email:       body.Email,
		Role:        body.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResponse(p, h.service.Catalog()))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(p, h.service.Catalog()))
}
