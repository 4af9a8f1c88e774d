// Package workflow is the reservation state machine: the transition table, the metadata each
// move requires and the audit entry produced by a legal move.
package workflow

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/apperror"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

const (
	MinMotiveLength      = 10
	MaxMotiveLength      = 500
	MaxObservationLength = 500
)

var (
	ErrInvalidTransition = apperror.New(http.StatusConflict, apperror.KindInvalidTransition, "status transition not allowed")
	ErrTerminalStatus    = apperror.New(http.StatusConflict, apperror.KindInvalidTransition, "reservation is in a terminal status")
	ErrUnknownStatus     = apperror.New(http.StatusBadRequest, apperror.KindValidation, "unknown reservation status")
	ErrUnknownAction     = apperror.New(http.StatusBadRequest, apperror.KindValidation, "unknown workflow action")
	ErrInvalidMetadata   = apperror.New(http.StatusBadRequest, apperror.KindValidation, "invalid transition metadata")
)

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusRejected: true, StatusCancelled: true},
	StatusConfirmed: {StatusCompleted: true, StatusCancelled: true},
	StatusRejected:  {},
	StatusCancelled: {},
	StatusCompleted: {},
}

// ParseStatus accepts any casing of a known status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := allowedTransitions[st]; !ok {
		return "", ErrUnknownStatus.WithField("status", fmt.Sprintf("unknown status %q", s))
	}
	return st, nil
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to Status) bool {
	return allowedTransitions[from][to]
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	targets, ok := allowedTransitions[s]
	return ok && len(targets) == 0
}

// Occupies reports whether a reservation in status s holds its time window.
// Rejected and cancelled rows stay for history but never block a room.
func (s Status) Occupies() bool {
	return s != StatusRejected && s != StatusCancelled
}

// RequiresMotive reports whether moving into s needs a motive text.
func (s Status) RequiresMotive() bool {
	return s == StatusRejected || s == StatusCancelled
}

// Statuses lists every known status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusRejected, StatusCancelled}
}

// OccupyingStatuses lists the statuses for which Occupies is true. The
// reservations_no_overlap constraint in the init migration filters on the same set.
func OccupyingStatuses() []Status {
	var out []Status
	for _, s := range Statuses() {
		if s.Occupies() {
			out = append(out, s)
		}
	}
	return out
}

// Metadata is the free text attached to a transition.
type Metadata struct {
	Motive       string
	Observations string
}

// Entry is one line of the status history audit trail.
type Entry struct {
	Actor        string    `json:"actor"`
	From         Status    `json:"from"`
	To           Status    `json:"to"`
	Motive       string    `json:"motive,omitempty"`
	Observations string    `json:"observations,omitempty"`
	At           time.Time `json:"at"`
}

// Transition validates a move from current to target and returns the history entry to append.
// It never mutates anything; the caller persists status and entry together.
func Transition(current, target Status, actor string, meta Metadata, at time.Time) (Entry, error) {
	if _, ok := allowedTransitions[target]; !ok {
		return Entry{}, ErrUnknownStatus.WithField("status", fmt.Sprintf("unknown status %q", target))
	}
	if !CanTransition(current, target) {
		return Entry{}, ErrInvalidTransition.WithDetails(map[string]any{
			"from":    current,
			"to":      target,
			"allowed": AllowedTargets(current),
		})
	}

	fields := validateMetadata(target, meta)
	if strings.TrimSpace(actor) == "" {
		fields["actor"] = "actor is required"
	}
	if len(fields) > 0 {
		return Entry{}, apperror.Validation(ErrInvalidMetadata.Message, fields)
	}

	return Entry{
		Actor:        actor,
		From:         current,
		To:           target,
		Motive:       strings.TrimSpace(meta.Motive),
		Observations: strings.TrimSpace(meta.Observations),
		At:           at,
	}, nil
}

func validateMetadata(target Status, meta Metadata) map[string]string {
	fields := make(map[string]string)
	motive := strings.TrimSpace(meta.Motive)
	n := utf8.RuneCountInString(motive)

	if target.RequiresMotive() {
		switch {
		case n == 0:
			fields["motive"] = "motive is required"
		case n < MinMotiveLength || n > MaxMotiveLength:
			fields["motive"] = fmt.Sprintf("motive must be between %d and %d characters", MinMotiveLength, MaxMotiveLength)
		}
	} else if n > MaxMotiveLength {
		fields["motive"] = fmt.Sprintf("motive must be at most %d characters", MaxMotiveLength)
	}

	if utf8.RuneCountInString(strings.TrimSpace(meta.Observations)) > MaxObservationLength {
		fields["observations"] = fmt.Sprintf("observations must be at most %d characters", MaxObservationLength)
	}
	return fields
}

// AllowedTargets lists the statuses reachable from s in a stable order.
func AllowedTargets(s Status) []Status {
	var out []Status
	for _, st := range []Status{StatusConfirmed, StatusRejected, StatusCancelled, StatusCompleted} {
		if CanTransition(s, st) {
			out = append(out, st)
		}
	}
	return out
}
