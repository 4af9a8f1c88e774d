package room

import (
	"context"
	"strings"

	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
)

type CreateRequest struct {
	Name         string
	Capacity     *int
	OpeningStart *timerange.ClockTime
	OpeningEnd   *timerange.ClockTime
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	// GetActive returns the room only when it exists and accepts bookings.
	GetActive(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	Deactivate(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if req.Capacity != nil && *req.Capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if (req.OpeningStart == nil) != (req.OpeningEnd == nil) {
		return nil, ErrInvalidHours
	}
	if req.OpeningStart != nil && *req.OpeningStart >= *req.OpeningEnd {
		return nil, ErrInvalidHours
	}

	r := &Room{
		Name:         strings.TrimSpace(req.Name),
		Capacity:     req.Capacity,
		OpeningStart: req.OpeningStart,
		OpeningEnd:   req.OpeningEnd,
		Active:       true,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetActive(ctx context.Context, id string) (*Room, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Active {
		return nil, ErrInactive
	}
	return r, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	return s.repo.SetActive(ctx, id, false)
}
