// Package di wires the stores, caches, usecases and handlers together.
package di

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "issue_backend/internal/feature/auth/adapters"
	authentity "issue_backend/internal/feature/auth/domain/entity"
	authhandler "issue_backend/internal/feature/auth/transport/handler"
	authusecase "issue_backend/internal/feature/auth/usecase"
	issueadapters "issue_backend/internal/feature/issue/adapters"
	issueentity "issue_backend/internal/feature/issue/domain/entity"
	issuehandler "issue_backend/internal/feature/issue/transport/handler"
	issueusecase "issue_backend/internal/feature/issue/usecase"
	"issue_backend/internal/feature/ownership"
	projectadapters "issue_backend/internal/feature/project/adapters"
	projectentity "issue_backend/internal/feature/project/domain/entity"
	projecthandler "issue_backend/internal/feature/project/transport/handler"
	projectusecase "issue_backend/internal/feature/project/usecase"
	"issue_backend/internal/platform/cache"
	"issue_backend/internal/platform/config"
	platformhandler "issue_backend/internal/platform/http/handler"
	jwtmw "issue_backend/internal/platform/jwt"
)

// Models returns every persisted model in foreign-key order.
func Models() []any {
	return []any{
		&authentity.User{},
		&projectadapters.ProjectModel{},
		&issueadapters.IssueModel{},
	}
}

// Container holds the HTTP-facing components built from one store and one cache.
type Container struct {
	Authenticator jwtmw.Authenticator
	Auth          *authhandler.AuthHandler
	Users         *authhandler.UserHandler
	Projects      *projecthandler.ProjectHandler
	Issues        *issuehandler.IssueHandler
	Health        *platformhandler.HealthHandler
}

// NewContainer builds the application graph. rdb may be nil, in which case
// every cache read misses and the store serves all requests.
func NewContainer(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*Container, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Cache
	side := cache.NewRedisCache(rdb)
	ttl := cfg.Cache.TTL
	userCache := cache.NewAside[authentity.UserView](side, "user", ttl)
	projectCache := cache.NewAside[projectentity.ProjectView](side, "project", ttl)
	issueCache := cache.NewAside[issueentity.IssueView](side, "issue", ttl)

	// Token
	tokens := jwtmw.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)

	// Usecase
	authUC := authusecase.NewAuthUsecase(authadapters.NewUserGorm(db), tokens, userCache)
	projectUC := projectusecase.NewProjectUsecase(projectadapters.NewProjectGorm(db), projectCache)
	issueUC := issueusecase.NewIssueUsecase(issueadapters.NewIssueGorm(db), issueCache)

	resolver := ownership.NewResolver(tokens, authUC, projectUC, issueUC)

	// Handler
	return &Container{
		Authenticator: resolver,
		Auth:          authhandler.NewAuthHandler(authUC),
		Users:         authhandler.NewUserHandler(authUC),
		Projects:      projecthandler.NewProjectHandler(projectUC, resolver),
		Issues:        issuehandler.NewIssueHandler(issueUC, resolver),
		Health:        platformhandler.NewHealthHandler(platformhandler.PingFunc(sqlDB.PingContext), side),
	}, nil
}
