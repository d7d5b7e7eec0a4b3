package middleware

import (
	"net/http"
	"strings"

	"github.com/cmsgraham/secret-santa/internal/services"

	"github.com/gin-gonic/gin"
)

// JWTAuth guards organizer-only routes. On success the user id lands in the
// gin context under "user_id".
func JWTAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := bearerUserID(c, authService)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

// OptionalJWT sets "user_id" when a valid bearer token is present but never
// rejects the request. Participant-facing routes use it so a logged-in
// organizer's email can serve as an identity fallback key.
func OptionalJWT(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := bearerUserID(c, authService); ok {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

func bearerUserID(c *gin.Context, authService *services.AuthService) (uint, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return 0, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}
	userID, err := authService.ValidateToken(parts[1])
	if err != nil {
		return 0, false
	}
	return userID, true
}
