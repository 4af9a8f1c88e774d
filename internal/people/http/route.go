package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers people and catalog routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	g.GET("/catalog", h.Catalog)

	group := g.Group("/people")
	group.Use(authMiddleware)
	{
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
	}
}
