package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/nekogravitycat/classroom-booking-backend/internal/activity"
	"github.com/nekogravitycat/classroom-booking-backend/internal/capacity"
	"github.com/nekogravitycat/classroom-booking-backend/internal/conflict"
	"github.com/nekogravitycat/classroom-booking-backend/internal/people"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/metrics"
	"github.com/nekogravitycat/classroom-booking-backend/internal/room"
	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
	"github.com/nekogravitycat/classroom-booking-backend/internal/workflow"
)

type CreateRequest struct {
	RoomID       string
	RequestedBy  string
	ActivityID   *string
	Start        time.Time
	End          time.Time
	Attendees    *int
	Observations string
}

// UpdateRequest carries the editable fields; nil leaves a field unchanged.
type UpdateRequest struct {
	Start        *time.Time
	End          *time.Time
	Attendees    *int
	ActivityID   *string
	Observations *string
}

type AvailabilityRequest struct {
	RoomID     string
	Start      time.Time
	End        time.Time
	ExcludeID  string
	Attendees  *int
	ActivityID *string
}

// Availability is an advisory preview; nothing is locked or reserved.
type Availability struct {
	Available bool
	Conflicts []conflict.Record
	Capacity  *capacity.Snapshot
}

// DayAvailability describes a room on one local date.
type DayAvailability struct {
	RoomID string
	Date   time.Time
	Window timerange.Range
	Busy   []conflict.Record
	Free   []timerange.Range
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Reservation, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Reservation, error)
	Transition(ctx context.Context, id string, target workflow.Status, actor string, meta workflow.Metadata) (*Reservation, error)
	Act(ctx context.Context, id string, action workflow.Action, actor string, meta workflow.Metadata) (*Reservation, error)
	// Reactivate books again the window of a rejected or cancelled reservation as a new
	// reservation, running every check a fresh request would.
	Reactivate(ctx context.Context, id string, actor string) (*Reservation, error)
	CheckAvailability(ctx context.Context, req AvailabilityRequest) (*Availability, error)
	FreeWindows(ctx context.Context, roomID string, day time.Time) (*DayAvailability, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, filter Filter) ([]*Reservation, int, error)
	History(ctx context.Context, id string) ([]workflow.Entry, error)
}

type Option func(*service)

func WithLogger(l zerolog.Logger) Option {
	return func(s *service) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *service) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *service) { s.tracer = t }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

type service struct {
	store      Store
	rooms      room.Service
	directory  people.Directory
	activities activity.Service
	detector   *conflict.Detector
	rules      Rules

	log     zerolog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

func NewService(
	store Store,
	rooms room.Service,
	directory people.Directory,
	activities activity.Service,
	detector *conflict.Detector,
	rules Rules,
	opts ...Option,
) Service {
	s := &service{
		store:      store,
		rooms:      rooms,
		directory:  directory,
		activities: activities,
		detector:   detector,
		rules:      rules.withDefaults(),
		log:        zerolog.Nop(),
		tracer:     noop.NewTracerProvider().Tracer(""),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// draft is a proposed reservation moving through the validation pipeline.
type draft struct {
	roomID       string
	requestedBy  string
	activityID   *string
	rng          timerange.Range
	attendees    *int
	observations string
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.Create", trace.WithAttributes(
		attribute.String("room_id", req.RoomID),
	))
	defer span.End()

	r, err := s.create(ctx, draft{
		roomID:       strings.TrimSpace(req.RoomID),
		requestedBy:  strings.TrimSpace(req.RequestedBy),
		activityID:   req.ActivityID,
		rng:          timerange.Range{Start: req.Start, End: req.End},
		attendees:    req.Attendees,
		observations: strings.TrimSpace(req.Observations),
	}, nil)
	s.finishSpan(span, err)
	return r, err
}

func (s *service) create(ctx context.Context, d draft, reactivatedFrom *string) (*Reservation, error) {
	if err := s.validateStructure(d); err != nil {
		return nil, s.refuse("create", err)
	}
	if err := s.validateTiming(d.rng, true); err != nil {
		return nil, s.refuse("create", err)
	}

	rm, err := s.rooms.GetActive(ctx, d.roomID)
	if err != nil {
		return nil, s.refuse("create", err)
	}
	if err := s.checkRequester(ctx, d.requestedBy); err != nil {
		return nil, s.refuse("create", err)
	}
	if err := s.checkActivity(ctx, d.activityID); err != nil {
		return nil, s.refuse("create", err)
	}

	if _, err := s.checkOccupancy(ctx, rm, d, ""); err != nil {
		return nil, s.refuse("create", err)
	}

	res := &Reservation{
		RoomID:          d.roomID,
		RequestedBy:     d.requestedBy,
		ActivityID:      d.activityID,
		Range:           d.rng,
		Attendees:       d.attendees,
		Status:          workflow.StatusPending,
		Observations:    d.observations,
		ReactivatedFrom: reactivatedFrom,
	}

	started := time.Now()
	err = s.store.WithResourceLock(ctx, d.roomID, func(ctx context.Context, tx LockedStore) error {
		if err := s.recheck(ctx, tx, d.roomID, d.rng, ""); err != nil {
			return err
		}
		return tx.Insert(ctx, res)
	})
	s.metrics.ObserveCommit(time.Since(started))
	if err != nil {
		return nil, s.refuse("create", err)
	}

	s.metrics.RecordCreated(reactivatedFrom != nil)
	s.log.Info().
		Str("reservation_id", res.ID).
		Str("room_id", res.RoomID).
		Str("requested_by", res.RequestedBy).
		Time("start", res.Range.Start).
		Time("end", res.Range.End).
		Msg("reservation created")
	return res, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.Update", trace.WithAttributes(
		attribute.String("reservation_id", id),
	))
	defer span.End()

	r, err := s.update(ctx, id, req)
	s.finishSpan(span, err)
	return r, err
}

func (s *service) update(ctx context.Context, id string, req UpdateRequest) (*Reservation, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, s.refuse("update", workflow.ErrTerminalStatus.WithField("status", string(current.Status)))
	}

	d := draft{
		roomID:       current.RoomID,
		requestedBy:  current.RequestedBy,
		activityID:   current.ActivityID,
		rng:          current.Range,
		attendees:    current.Attendees,
		observations: current.Observations,
	}
	if req.Start != nil {
		d.rng.Start = *req.Start
	}
	if req.End != nil {
		d.rng.End = *req.End
	}
	if req.Attendees != nil {
		d.attendees = req.Attendees
	}
	if req.ActivityID != nil {
		d.activityID = req.ActivityID
		if *req.ActivityID == "" {
			d.activityID = nil
		}
	}
	if req.Observations != nil {
		d.observations = strings.TrimSpace(*req.Observations)
	}

	rangeChanged := !d.rng.Start.Equal(current.Range.Start) || !d.rng.End.Equal(current.Range.End)

	if err := s.validateStructure(d); err != nil {
		return nil, s.refuse("update", err)
	}
	if err := s.validateTiming(d.rng, rangeChanged); err != nil {
		return nil, s.refuse("update", err)
	}
	rm, err := s.rooms.GetActive(ctx, d.roomID)
	if err != nil {
		return nil, s.refuse("update", err)
	}
	if err := s.checkRequester(ctx, d.requestedBy); err != nil {
		return nil, s.refuse("update", err)
	}
	if err := s.checkActivity(ctx, d.activityID); err != nil {
		return nil, s.refuse("update", err)
	}
	if _, err := s.checkOccupancy(ctx, rm, d, id); err != nil {
		return nil, s.refuse("update", err)
	}

	updated := *current
	updated.Range = d.rng
	updated.Attendees = d.attendees
	updated.ActivityID = d.activityID
	updated.Observations = d.observations

	started := time.Now()
	err = s.store.WithResourceLock(ctx, d.roomID, func(ctx context.Context, tx LockedStore) error {
		if err := s.recheck(ctx, tx, d.roomID, d.rng, id); err != nil {
			return err
		}
		return tx.UpdateRange(ctx, &updated, current.Version)
	})
	s.metrics.ObserveCommit(time.Since(started))
	if err != nil {
		return nil, s.refuse("update", err)
	}

	s.log.Info().
		Str("reservation_id", id).
		Int("version", updated.Version).
		Msg("reservation updated")
	return &updated, nil
}

func (s *service) Transition(ctx context.Context, id string, target workflow.Status, actor string, meta workflow.Metadata) (*Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.Transition", trace.WithAttributes(
		attribute.String("reservation_id", id),
		attribute.String("target", string(target)),
	))
	defer span.End()

	r, err := s.transition(ctx, id, target, actor, meta)
	s.finishSpan(span, err)
	return r, err
}

func (s *service) transition(ctx context.Context, id string, target workflow.Status, actor string, meta workflow.Metadata) (*Reservation, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entry, err := workflow.Transition(current.Status, target, actor, meta, s.now().UTC())
	if err != nil {
		return nil, err
	}

	updated, err := s.store.ApplyTransition(ctx, id, current.Version, entry)
	if err != nil {
		if apperror.IsKind(err, apperror.KindConcurrency) {
			s.metrics.RecordRefused("transition", string(apperror.KindConcurrency))
			s.log.Warn().Str("reservation_id", id).Str("target", string(target)).Msg("transition lost to a concurrent writer")
		}
		return nil, err
	}

	s.metrics.RecordTransition(string(entry.From), string(entry.To))
	s.log.Info().
		Str("reservation_id", id).
		Str("actor", actor).
		Str("from", string(entry.From)).
		Str("to", string(entry.To)).
		Msg("reservation status changed")
	return updated, nil
}

func (s *service) Act(ctx context.Context, id string, action workflow.Action, actor string, meta workflow.Metadata) (*Reservation, error) {
	target, err := action.Target()
	if err != nil {
		return nil, err
	}
	return s.Transition(ctx, id, target, actor, meta)
}

func (s *service) Reactivate(ctx context.Context, id string, actor string) (*Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.Reactivate", trace.WithAttributes(
		attribute.String("reservation_id", id),
	))
	defer span.End()

	previous, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.finishSpan(span, err)
		return nil, err
	}
	if previous.Status != workflow.StatusRejected && previous.Status != workflow.StatusCancelled {
		err := ErrNotReactivatable.WithField("status", string(previous.Status))
		s.finishSpan(span, err)
		return nil, err
	}

	from := previous.ID
	r, err := s.create(ctx, draft{
		roomID:       previous.RoomID,
		requestedBy:  previous.RequestedBy,
		activityID:   previous.ActivityID,
		rng:          previous.Range,
		attendees:    previous.Attendees,
		observations: previous.Observations,
	}, &from)
	if err == nil {
		s.log.Info().
			Str("reservation_id", r.ID).
			Str("reactivated_from", from).
			Str("actor", actor).
			Msg("reservation reactivated")
	}
	s.finishSpan(span, err)
	return r, err
}

func (s *service) CheckAvailability(ctx context.Context, req AvailabilityRequest) (*Availability, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.CheckAvailability", trace.WithAttributes(
		attribute.String("room_id", req.RoomID),
	))
	defer span.End()

	d := draft{
		roomID:     strings.TrimSpace(req.RoomID),
		activityID: req.ActivityID,
		rng:        timerange.Range{Start: req.Start, End: req.End},
		attendees:  req.Attendees,
	}
	fields := map[string]string{}
	if d.roomID == "" {
		fields["room_id"] = "room_id is required"
	}
	structuralRange(d.rng, fields)
	if len(fields) > 0 {
		err := apperror.Validation(ErrInvalidInput.Message, fields)
		s.finishSpan(span, err)
		return nil, err
	}

	rm, err := s.rooms.GetActive(ctx, d.roomID)
	if err != nil {
		s.finishSpan(span, err)
		return nil, err
	}

	records, err := s.detector.Detect(ctx, d.roomID, d.rng, req.ExcludeID)
	if err != nil {
		s.finishSpan(span, err)
		return nil, err
	}
	conflict.SortByStart(records)

	snap, err := s.projectCapacity(ctx, rm, d)
	if err != nil {
		s.finishSpan(span, err)
		return nil, err
	}

	s.metrics.RecordAvailabilityCheck()
	return &Availability{
		Available: len(records) == 0 && (snap == nil || !snap.OverCapacity),
		Conflicts: records,
		Capacity:  snap,
	}, nil
}

func (s *service) FreeWindows(ctx context.Context, roomID string, day time.Time) (*DayAvailability, error) {
	rm, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	loc := s.rules.Location
	window := rm.OpeningWindow(day, loc)
	records, err := s.detector.Detect(ctx, roomID, window, "")
	if err != nil {
		return nil, err
	}
	conflict.SortByStart(records)

	return &DayAvailability{
		RoomID: roomID,
		Date:   timerange.ClockTime(0).On(day, loc),
		Window: window,
		Busy:   records,
		Free:   timerange.FreeWindows(window, conflict.Ranges(records)),
	}, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Reservation, error) {
	return s.store.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Reservation, int, error) {
	return s.store.List(ctx, filter)
}

func (s *service) History(ctx context.Context, id string) ([]workflow.Entry, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.History, nil
}

// validateStructure checks presence and shape of the request fields.
func (s *service) validateStructure(d draft) error {
	fields := map[string]string{}
	if d.roomID == "" {
		fields["room_id"] = "room_id is required"
	}
	if d.requestedBy == "" {
		fields["requested_by"] = "requested_by is required"
	}
	structuralRange(d.rng, fields)
	if d.attendees != nil && *d.attendees < 0 {
		fields["attendees"] = "attendees cannot be negative"
	}
	if utf8.RuneCountInString(d.observations) > workflow.MaxObservationLength {
		fields["observations"] = fmt.Sprintf("observations must be at most %d characters", workflow.MaxObservationLength)
	}
	if len(fields) > 0 {
		return apperror.Validation(ErrInvalidInput.Message, fields)
	}
	return nil
}

func structuralRange(r timerange.Range, fields map[string]string) {
	switch {
	case r.Start.IsZero():
		fields["start"] = "start is required"
	case r.End.IsZero():
		fields["end"] = "end is required"
	case !r.Start.Before(r.End):
		fields["end"] = "end must be after start"
	}
}

// validateTiming checks duration bounds and, when checkPast is set, the past grace window.
func (s *service) validateTiming(r timerange.Range, checkPast bool) error {
	minutes := timerange.DurationMinutes(r)
	if !timerange.IsWithinBounds(minutes, s.rules.MinDurationMinutes, s.rules.MaxDurationMinutes) {
		return ErrDurationOutOfBounds.WithField("end", fmt.Sprintf(
			"duration must be between %d and %d minutes, got %d",
			s.rules.MinDurationMinutes, s.rules.MaxDurationMinutes, minutes,
		))
	}
	if checkPast && timerange.IsPast(r.Start, s.now(), s.rules.PastGrace) {
		return ErrStartTimePast.WithField("start", "start is in the past")
	}
	return nil
}

func (s *service) checkRequester(ctx context.Context, personID string) error {
	ok, err := s.directory.IsEligibleRequester(ctx, personID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRequesterNotEligible.WithField("requested_by", "person does not hold a role allowed to request rooms")
	}
	return nil
}

func (s *service) checkActivity(ctx context.Context, activityID *string) error {
	if activityID == nil || s.activities == nil {
		return nil
	}
	_, err := s.activities.GetByID(ctx, *activityID)
	return err
}

// checkOccupancy runs conflict detection then the capacity check.
func (s *service) checkOccupancy(ctx context.Context, rm *room.Room, d draft, excludeID string) (*capacity.Snapshot, error) {
	records, err := s.detector.Detect(ctx, d.roomID, d.rng, excludeID)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		return nil, s.conflictError(records)
	}

	snap, err := s.projectCapacity(ctx, rm, d)
	if err != nil {
		return nil, err
	}
	if snap != nil && snap.OverCapacity {
		return snap, ErrOverCapacity.WithDetails(snap)
	}
	return snap, nil
}

// projectCapacity returns nil when the room is not capacity bound or no headcount is known.
// Without explicit attendees the linked activity's enrollment is used.
func (s *service) projectCapacity(ctx context.Context, rm *room.Room, d draft) (*capacity.Snapshot, error) {
	if rm.Capacity == nil {
		return nil, nil
	}

	headcount := d.attendees
	if headcount == nil && d.activityID != nil && s.activities != nil {
		a, err := s.activities.GetByID(ctx, *d.activityID)
		if err != nil {
			return nil, err
		}
		n := a.EnrolledCount
		headcount = &n
	}
	if headcount == nil {
		return nil, nil
	}

	snap := capacity.Project(0, rm.Capacity, *headcount)
	return &snap, nil
}

// recheck repeats conflict detection inside the room lock against the locked view.
func (s *service) recheck(ctx context.Context, tx LockedStore, roomID string, r timerange.Range, excludeID string) error {
	records, err := s.detector.DetectIn(ctx, OccupantSource(tx), roomID, r, excludeID)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		s.log.Warn().Str("room_id", roomID).Int("conflicts", len(records)).Msg("conflict appeared before commit")
		return s.conflictError(records)
	}
	return nil
}

func (s *service) conflictError(records []conflict.Record) error {
	conflict.SortByStart(records)
	for _, r := range records {
		s.metrics.RecordConflict(string(r.Kind))
	}
	return ErrTimeConflict.WithDetails(records)
}

// refuse records a refused create or update and passes err through.
func (s *service) refuse(operation string, err error) error {
	kind := apperror.KindOf(err)
	s.metrics.RecordRefused(operation, string(kind))

	event := s.log.Debug()
	if kind == apperror.KindInternal {
		event = s.log.Error()
	}
	event.Err(err).Str("operation", operation).Str("kind", string(kind)).Msg("reservation refused")
	return err
}

func (s *service) finishSpan(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		span.SetAttributes(attribute.String("error.kind", string(appErr.Kind)))
		if appErr.Kind != apperror.KindInternal {
			return
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
