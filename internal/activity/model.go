package activity

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, apperror.KindNotFound, "activity not found")
	ErrNameRequired     = apperror.New(http.StatusBadRequest, apperror.KindValidation, "activity name is required")
	ErrInvalidMax       = apperror.New(http.StatusBadRequest, apperror.KindValidation, "max participants cannot be negative")
	ErrInvalidAdditions = apperror.New(http.StatusBadRequest, apperror.KindValidation, "additions must be positive")
	ErrEnrollmentFull   = apperror.New(http.StatusUnprocessableEntity, apperror.KindCapacity, "activity has no room for the requested enrollments")
	ErrNotEnrolling     = apperror.New(http.StatusConflict, apperror.KindValidation, "activity is not accepting enrollments")
)

// Activity is a course or event that may be linked to reservations.
// A nil MaxParticipants means enrollment is unlimited.
type Activity struct {
	ID              string
	Name            string
	MaxParticipants *int
	EnrolledCount   int
	Active          bool
	CreatedAt       time.Time
}
