// Package router はHTTPルーティングを定義します。
package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"issue_backend/internal/api"
	"issue_backend/internal/app/di"
	jwtmw "issue_backend/internal/platform/jwt"
	"issue_backend/internal/shared/apperror"
)

// NewRouter は /api/v1 以下のルートを登録したGinエンジンを返します。
func NewRouter(c *di.Container, corsOrigins []string) *gin.Engine {
	api.RegisterValidators()

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(cors.New(corsConfig(corsOrigins)))

	r.NoRoute(func(ctx *gin.Context) {
		api.WriteError(ctx, apperror.NotFound(apperror.CodeRouteNotFound, "Not found"))
	})
	r.NoMethod(func(ctx *gin.Context) {
		ctx.AbortWithStatusJSON(http.StatusMethodNotAllowed, api.ErrorResponse{
			Error: api.ErrorBody{Code: apperror.CodeMethodNotAllowed, Message: "Method not allowed"},
		})
	})

	// 導通確認用（ロードバランサーからも叩けるようルート直下にも置く）
	r.GET("/healthz", c.Health.Health)
	r.HEAD("/healthz", c.Health.Health)

	v1 := r.Group("/api/v1")
	v1.GET("/healthz", c.Health.Health)
	v1.HEAD("/healthz", c.Health.Health)

	// 認証不要
	v1.POST("/auth/signup", c.Auth.Signup)
	v1.POST("/auth/login", c.Auth.Login)

	// 認証必須のルート
	auth := v1.Group("")
	auth.Use(jwtmw.AuthRequired(c.Authenticator))
	{
		auth.GET("/users/me", c.Users.Me)
		auth.PATCH("/users/me", c.Users.UpdateMe)

		auth.GET("/projects", c.Projects.List)
		auth.POST("/projects", c.Projects.Create)
		auth.GET("/projects/:project_id", c.Projects.Get)
		auth.PATCH("/projects/:project_id", c.Projects.Update)
		auth.DELETE("/projects/:project_id", c.Projects.Delete)

		auth.GET("/issues", c.Issues.ListOwned)
		auth.GET("/issues/projects/:project_id", c.Issues.ListByProject)
		auth.POST("/issues/projects/:project_id", c.Issues.Create)
		auth.GET("/issues/:issue_id", c.Issues.Get)
		auth.PATCH("/issues/:issue_id", c.Issues.Update)
		auth.DELETE("/issues/:issue_id", c.Issues.Delete)
	}

	return r
}

// corsConfig は許可オリジンを設定します。空または "*" の場合は全オリジンを許可し、Cookieは送らせません。
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
