package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/twbeatles/hwpmaster-api/internal/service"
)

// JWTAuthMiddleware returns middleware that enforces Bearer JWT Auth.
func JWTAuthMiddleware(ts service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header missing or not Bearer"})
			return
		}
		tokenString := strings.TrimPrefix(auth, "Bearer ")
		claims, err := ts.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		// store subject and token ID (jti) in context
		c.Set("subject", claims.Subject)
		c.Set("jti", claims.ID)
		c.Next()
	}
}
