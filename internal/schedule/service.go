package schedule

import (
	"context"
	"strings"
	"time"

	"github.com/nekogravitycat/classroom-booking-backend/internal/room"
	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
)

type CreateRequest struct {
	RoomID   string
	Weekday  int
	Start    timerange.ClockTime
	End      timerange.ClockTime
	OwnerRef string
	Label    string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Slot, error)
	ListActiveByRoom(ctx context.Context, roomID string) ([]*Slot, error)
	Deactivate(ctx context.Context, id string) error
}

type service struct {
	repo        Repository
	roomService room.Service
}

func NewService(repo Repository, roomService room.Service) Service {
	return &service{
		repo:        repo,
		roomService: roomService,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Slot, error) {
	if strings.TrimSpace(req.RoomID) == "" {
		return nil, ErrRoomRequired
	}
	if req.Weekday < int(time.Sunday) || req.Weekday > int(time.Saturday) {
		return nil, ErrInvalidWeekday
	}
	if !req.Start.Valid() || !req.End.Valid() || req.Start >= req.End {
		return nil, ErrInvalidHours
	}

	if _, err := s.roomService.GetActive(ctx, req.RoomID); err != nil {
		return nil, err
	}

	slot := &Slot{
		RoomID:   req.RoomID,
		Weekday:  time.Weekday(req.Weekday),
		Start:    req.Start,
		End:      req.End,
		OwnerRef: strings.TrimSpace(req.OwnerRef),
		Label:    strings.TrimSpace(req.Label),
		Active:   true,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *service) ListActiveByRoom(ctx context.Context, roomID string) ([]*Slot, error) {
	return s.repo.ListActiveByRoom(ctx, roomID)
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	return s.repo.Deactivate(ctx, id)
}
