package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dittoaji/user-profile-service/pkg/helpers"
	"github.com/dittoaji/user-profile-service/pkg/response"
)

const (
	bearerPrefix = "Bearer "

	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
	CtxUserRoleKey  = "userRole"
)

// Auth verifies the Authorization: Bearer <token> header and attaches the
// caller identity to the Gin context. The user-management handlers only care
// about "authenticated or not"; claim contents are exposed for convenience.
func Auth(manager *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			response.AbortError(c, http.StatusUnauthorized, "Missing or invalid Authorization header (expected Bearer <token>)")
			return
		}
		token := strings.TrimSpace(raw[len(bearerPrefix):])
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "Missing token")
			return
		}

		claims, err := manager.Parse(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.AbortError(c, http.StatusUnauthorized, "Token expired")
				return
			}
			response.AbortError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(CtxUserIDKey, claims.Subject)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Set(CtxUserRoleKey, claims.Role)
		c.Next()
	}
}
