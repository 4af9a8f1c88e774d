package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers recurring slot routes.
// Slots are created and listed under their room and deactivated by their own id.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	rooms := g.Group("/rooms")
	rooms.GET("/:id/recurring-slots", h.ListByRoom)
	rooms.POST("/:id/recurring-slots", authMiddleware, h.Create)

	slots := g.Group("/recurring-slots")
	slots.Use(authMiddleware)
	{
		slots.DELETE("/:id", h.Deactivate)
	}
}
