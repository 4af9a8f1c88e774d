package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers reservation routes and the per-room free window view.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	g.GET("/rooms/:id/free-windows", h.FreeWindows)

	group := g.Group("/reservations")

	// === Public Routes ===
	group.POST("/availability", h.CheckAvailability) // Preview conflicts and capacity

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.PATCH("/:id", h.Update)
		group.GET("/:id/history", h.History)
		group.POST("/:id/transitions", h.Transition)
		group.POST("/:id/actions/:action", h.Act)
		group.POST("/:id/reactivate", h.Reactivate)
	}
}
