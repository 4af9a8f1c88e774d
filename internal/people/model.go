package people

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound    = apperror.New(http.StatusNotFound, apperror.KindNotFound, "person not found")
	ErrEmptyName   = apperror.New(http.StatusBadRequest, apperror.KindValidation, "display name cannot be empty")
	ErrUnknownRole = apperror.New(http.StatusBadRequest, apperror.KindValidation, "role is not in the catalog")
	ErrEmailTaken  = apperror.New(http.StatusConflict, apperror.KindConflict, "email already registered")
)

type Person struct {
	ID          string
	DisplayName string
	Email       *string
	Role        string
	Active      bool
	CreatedAt   time.Time
}
