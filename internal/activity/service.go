package activity

import (
	"context"
	"strings"

	"github.com/nekogravitycat/classroom-booking-backend/internal/capacity"
)

type CreateRequest struct {
	Name            string
	MaxParticipants *int
	EnrolledCount   int
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Activity, error)
	GetByID(ctx context.Context, id string) (*Activity, error)
	// EnrollmentProjection previews the activity's fill level after additions enrollments.
	EnrollmentProjection(ctx context.Context, id string, additions int) (capacity.Snapshot, error)
	Enroll(ctx context.Context, id string, additions int) (*Activity, capacity.Snapshot, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Activity, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if req.MaxParticipants != nil && *req.MaxParticipants < 0 {
		return nil, ErrInvalidMax
	}
	if req.EnrolledCount < 0 {
		return nil, ErrInvalidAdditions
	}

	a := &Activity{
		Name:            strings.TrimSpace(req.Name),
		MaxParticipants: req.MaxParticipants,
		EnrolledCount:   req.EnrolledCount,
		Active:          true,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Activity, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) EnrollmentProjection(ctx context.Context, id string, additions int) (capacity.Snapshot, error) {
	if additions < 0 {
		return capacity.Snapshot{}, ErrInvalidAdditions
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return capacity.Snapshot{}, err
	}
	return capacity.ProjectEnrollment(a.EnrolledCount, a.MaxParticipants, additions), nil
}

func (s *service) Enroll(ctx context.Context, id string, additions int) (*Activity, capacity.Snapshot, error) {
	if additions <= 0 {
		return nil, capacity.Snapshot{}, ErrInvalidAdditions
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, capacity.Snapshot{}, err
	}
	if !a.Active {
		return nil, capacity.Snapshot{}, ErrNotEnrolling
	}

	snap := capacity.ProjectEnrollment(a.EnrolledCount, a.MaxParticipants, additions)
	if snap.OverCapacity {
		return nil, snap, ErrEnrollmentFull.WithDetails(snap)
	}

	updated, err := s.repo.AddEnrollments(ctx, id, additions)
	if err != nil {
		return nil, snap, err
	}
	return updated, snap, nil
}
