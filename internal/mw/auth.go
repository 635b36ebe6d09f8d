package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gamecafe-backend/internal/auth"
	"gamecafe-backend/internal/model"
)

// Context keys set by Authenticate.
const (
	CtxUserID = "user_id"
	CtxName   = "user_name"
	CtxRole   = "user_role"
)

// Authenticate validates the Bearer token and stores the caller's identity
// on the request context.
func Authenticate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := auth.ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxName, claims.Name)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes. Must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRole) != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}
