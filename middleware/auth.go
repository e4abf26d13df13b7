package middleware

import (
	"net/http"
	"strings"

	"laundrybook/services/session"

	"github.com/gin-gonic/gin"
)

// Context keys set by SessionAuthMiddleware.
const (
	CtxPhone = "phone"
	CtxRoom  = "room"
)

// SessionAuthMiddleware validates the bearer session token and stamps the
// resident's phone and room into the request context. Revoked tokens are
// rejected even when the JWT itself is still within its expiry.
func SessionAuthMiddleware(tokens session.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		phone, room, err := tokens.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or revoked session token"})
			return
		}

		c.Set(CtxPhone, phone)
		c.Set(CtxRoom, room)
		c.Next()
	}
}
