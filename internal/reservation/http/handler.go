package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/classroom-booking-backend/internal/auth"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/classroom-booking-backend/internal/reservation"
	"github.com/nekogravitycat/classroom-booking-backend/internal/workflow"
)

type Handler struct {
	service reservation.Service
	loc     *time.Location
}

// NewHandler builds the handler. Calendar dates in query strings are read in loc.
func NewHandler(service reservation.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{service: service, loc: loc}
}

func (h *Handler) List(c *gin.Context) {
	var req ListReservationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	items, total, err := h.service.List(c.Request.Context(), reservation.Filter{
		RoomID:      req.RoomID,
		RequestedBy: req.RequestedBy,
		ActivityID:  req.ActivityID,
		Status:      workflow.Status(req.Status),
		From:        req.From,
		To:          req.To,
		Page:        req.Page,
		PageSize:    req.PageSize,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]ReservationResponse, len(items))
	for i, r := range items {
		out[i] = NewResponse(r)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(out, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(r))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	requestedBy := body.RequestedBy
	if requestedBy == "" {
		requestedBy = auth.GetActorID(c)
	}

	r, err := h.service.Create(c.Request.Context(), reservation.CreateRequest{
		RoomID:       body.RoomID,
		RequestedBy:  requestedBy,
		ActivityID:   body.ActivityID,
		Start:        body.Start,
		End:          body.End,
		Attendees:    body.Attendees,
		Observations: body.Observations,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResponse(r))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var body UpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	if err := body.Validate(); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	r, err := h.service.Update(c.Request.Context(), uri.ID, reservation.UpdateRequest{
		Start:        body.Start,
		End:          body.End,
		Attendees:    body.Attendees,
		ActivityID:   body.ActivityID,
		Observations: body.Observations,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(r))
}

func (h *Handler) Transition(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var body TransitionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	target, err := workflow.ParseStatus(body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	r, err := h.service.Transition(c.Request.Context(), uri.ID, target, auth.GetActorID(c), workflow.Metadata{
		Motive:       body.Motive,
		Observations: body.Observations,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(r))
}

// Act applies a named action such as approve or cancel. The body is optional.
func (h *Handler) Act(c *gin.Context) {
	var uri ActionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var body ActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "invalid request body", err)
			return
		}
	}

	r, err := h.service.Act(c.Request.Context(), uri.ID, workflow.Action(uri.Action), auth.GetActorID(c), workflow.Metadata{
		Motive:       body.Motive,
		Observations: body.Observations,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(r))
}

func (h *Handler) Reactivate(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	r, err := h.service.Reactivate(c.Request.Context(), uri.ID, auth.GetActorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResponse(r))
}

func (h *Handler) History(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	entries, err := h.service.History(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if entries == nil {
		entries = []workflow.Entry{}
	}

	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// CheckAvailability is a read-only preview; a later create may still be refused.
func (h *Handler) CheckAvailability(c *gin.Context) {
	var body AvailabilityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	a, err := h.service.CheckAvailability(c.Request.Context(), reservation.AvailabilityRequest{
		RoomID:     body.RoomID,
		Start:      body.Start,
		End:        body.End,
		ExcludeID:  body.ExcludeID,
		Attendees:  body.Attendees,
		ActivityID: body.ActivityID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAvailabilityResponse(a))
}

func (h *Handler) FreeWindows(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var query FreeWindowsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	day, err := time.ParseInLocation(dateLayout, query.Date, h.loc)
	if err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	d, err := h.service.FreeWindows(c.Request.Context(), uri.ID, day)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewDayAvailabilityResponse(d))
}
