package middleware

import (
	"smartcomply/internal/models"
	"smartcomply/internal/services"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the bearer token to a session and places the
// acting staff's identity in the context as a models.Actor. Handlers and
// services never reach back into the session; the Actor is the only
// identity they see.
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		session, err := authService.GetSession(parts[1])
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if !session.Staff.IsActive {
			c.JSON(401, gin.H{"error": "Account is disabled"})
			c.Abort()
			return
		}

		actor := models.Actor{
			StaffID:  session.StaffID,
			Name:     session.Staff.Name,
			Role:     session.Staff.Role,
			BranchID: session.Staff.BranchID,
		}

		c.Set("actor", actor)
		c.Set("session", session)

		c.Next()
	}
}

// Actor pulls the authenticated actor from the context. The zero Actor is
// returned when the middleware has not run; its empty role fails every
// permission check.
func Actor(c *gin.Context) models.Actor {
	v, exists := c.Get("actor")
	if !exists {
		return models.Actor{}
	}
	return v.(models.Actor)
}

func RequireRole(roles ...models.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor(c)

		hasRole := false
		for _, role := range roles {
			if actor.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			c.JSON(403, gin.H{"error": "Forbidden: insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}
