package middleware

import (
	"github.com/gin-gonic/gin"

	jwtpkg "channelpass/gatekeeper/pkg/jwt"
	"channelpass/gatekeeper/pkg/response"
)

// AdminAuth admits only admin-role tokens issued to the configured admin.
// Must be used after JWTAuth middleware.
func AdminAuth(adminID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := c.MustGet(ContextKeyUserClaims).(*jwtpkg.Claims)
		if !ok || claims.Role != jwtpkg.RoleAdmin {
			response.Forbidden(c, "admin role required")
			c.Abort()
			return
		}
		if c.GetInt64(ContextKeyOperatorID) != adminID {
			response.Forbidden(c, "token was not issued to the channel admin")
			c.Abort()
			return
		}
		c.Next()
	}
}
