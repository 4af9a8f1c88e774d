package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers room-related routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/rooms")

	// === Public Routes ===
	group.GET("", h.List)    // List rooms
	group.GET("/:id", h.Get) // Get room details

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.POST("", h.Create)           // Create room
		group.DELETE("/:id", h.Deactivate) // Deactivate room
	}
}
