package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/response"
)

var (
	ErrMissingToken = apperror.New(http.StatusUnauthorized, apperror.KindUnauthorized, "missing Authorization header")
	ErrBadHeader    = apperror.New(http.StatusUnauthorized, apperror.KindUnauthorized, "invalid Authorization header format")
	ErrInvalidToken = apperror.New(http.StatusUnauthorized, apperror.KindUnauthorized, "invalid or expired token")
)

// AuthRequired is a Gin middleware that validates JWT from Authorization: Bearer <token>
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, ErrMissingToken)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abort(c, ErrBadHeader)
			return
		}

		claims, err := jwtManager.ParseAndValidate(parts[1])
		if err != nil {
			log.Ctx(c.Request.Context()).Debug().Err(err).Msg("rejected bearer token")
			abort(c, ErrInvalidToken)
			return
		}

		// Store the actor into Gin context for later handlers.
		c.Set(actorIDKey, claims.PersonID)
		c.Set(actorRoleKey, claims.Role)

		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}
