package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	jwtpkg "channelpass/gatekeeper/pkg/jwt"
	"channelpass/gatekeeper/pkg/response"
)

const (
	ContextKeyUserClaims = "user_claims"
	// ContextKeyOperatorID holds the Telegram user id the token was issued to.
	ContextKeyOperatorID = "operator_id"
)

// JWTAuth accepts "Authorization: Bearer <token>" and exposes the token's claims and
// numeric subject to later handlers.
func JWTAuth(jwtManager *jwtpkg.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Unauthorized(c, "missing or malformed bearer token")
			c.Abort()
			return
		}

		claims, err := jwtManager.Validate(strings.TrimSpace(token))
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		operatorID, err := claims.UserID()
		if err != nil {
			response.Unauthorized(c, "token subject is not a user id")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserClaims, claims)
		c.Set(ContextKeyOperatorID, operatorID)
		c.Next()
	}
}
