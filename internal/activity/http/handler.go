package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/classroom-booking-backend/internal/activity"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/response"
)

type Handler struct {
	service activity.Service
}

func NewHandler(service activity.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	a, err := h.service.Create(c.Request.Context(), activity.CreateRequest{
		Name:            body.Name,
		MaxParticipants: body.MaxParticipants,
		EnrolledCount:   body.EnrolledCount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResponse(a))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(a))
}

// EnrollmentProjection previews the fill level after the given number of additions.
func (h *Handler) EnrollmentProjection(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var q ProjectionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	snap, err := h.service.EnrollmentProjection(c.Request.Context(), uri.ID, q.Additions)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *Handler) Enroll(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var body EnrollRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	a, snap, err := h.service.Enroll(c.Request.Context(), uri.ID, body.Additions)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, EnrollResponse{Activity: NewResponse(a), Capacity: snap})
}
