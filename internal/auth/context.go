package auth

import "github.com/gin-gonic/gin"

const (
	actorIDKey   = "actorID"
	actorRoleKey = "actorRole"
)

// GetActorID returns the authenticated person's ID or empty string.
func GetActorID(c *gin.Context) string {
	return c.GetString(actorIDKey)
}

// GetActorRole returns the role claimed by the token, if any.
func GetActorRole(c *gin.Context) string {
	return c.GetString(actorRoleKey)
}
