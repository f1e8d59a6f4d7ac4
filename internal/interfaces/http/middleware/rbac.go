package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invoicing/backend/internal/domain/identity"
)

// RequireWriteAccess rejects requests from roles that may not create or
// modify records (currently VIEWER).
func RequireWriteAccess() gin.HandlerFunc {
	return requireRole(func(role identity.Role) bool {
		return role.CanWrite()
	}, "Write access required")
}

// RequireDeleteAccess rejects requests from roles that may not delete
// records (only ADMIN may).
func RequireDeleteAccess() gin.HandlerFunc {
	return requireRole(func(role identity.Role) bool {
		return role.CanDelete()
	}, "Admin access required")
}

// RequireAdmin rejects requests from non-admin roles
func RequireAdmin() gin.HandlerFunc {
	return requireRole(func(role identity.Role) bool {
		return role == identity.RoleAdmin
	}, "Admin access required")
}

func requireRole(allowed func(identity.Role) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := identity.Role(GetJWTRole(c))
		if !role.IsValid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Authentication required",
				},
			})
			return
		}
		if !allowed(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": message,
				},
			})
			return
		}
		c.Next()
	}
}
