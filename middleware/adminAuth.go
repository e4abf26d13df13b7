package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"laundrybook/config"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware guards provisioning endpoints with the configured
// static admin key.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := config.AppConfig.AdminAPIKey
		if key == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access is not configured"})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		if subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized admin access"})
			return
		}

		c.Set("isAdmin", true)
		c.Next()
	}
}
