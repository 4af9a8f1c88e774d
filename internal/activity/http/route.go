package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers activity-related routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/activities")

	// === Public Routes ===
	group.GET("/:id", h.Get)
	group.GET("/:id/enrollment-projection", h.EnrollmentProjection)

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.POST("", h.Create)
		group.POST("/:id/enrollments", h.Enroll)
	}
}
