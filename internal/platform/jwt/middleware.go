package jwtmw

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"issue_backend/internal/api"
	"issue_backend/internal/feature/auth/domain/entity"
	"issue_backend/internal/shared/apperror"
)

// ContextPrincipal は認証済みユーザー(entity.UserView)を格納するgin.Contextのキーです。
const ContextPrincipal = "principal"

// Authenticator はBearerトークンから認証済みユーザーを解決します。
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (entity.UserView, error)
}

// AuthRequired returns a Gin middleware that resolves the bearer token to a
// principal and restricts access to authenticated users only.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Header("WWW-Authenticate", "Bearer")
			api.WriteError(c, apperror.Authentication("Not authenticated", nil))
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		// 2. Resolve principal (token decode + cached user lookup)
		user, err := auth.Authenticate(c.Request.Context(), tokenStr)
		if err != nil {
			if apperror.IsKind(err, apperror.KindAuthentication) {
				c.Header("WWW-Authenticate", "Bearer")
			}
			api.WriteError(c, err)
			return
		}

		c.Set(ContextPrincipal, user)
		c.Next()
	}
}

// Principal returns the authenticated user set by AuthRequired.
func Principal(c *gin.Context) (entity.UserView, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return entity.UserView{}, false
	}
	user, ok := v.(entity.UserView)
	return user, ok
}
