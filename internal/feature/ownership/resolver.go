// Package ownership は認証済みユーザーを解決し、プロジェクト/Issueの所有権を検査します。
// 検査は常に「存在確認 → 所有権確認」の順で行います。
package ownership

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	authentity "issue_backend/internal/feature/auth/domain/entity"
	authusecase "issue_backend/internal/feature/auth/usecase"
	issueentity "issue_backend/internal/feature/issue/domain/entity"
	projectentity "issue_backend/internal/feature/project/domain/entity"
	projectusecase "issue_backend/internal/feature/project/usecase"
	"issue_backend/internal/shared/apperror"
)

// TokenDecoder はBearerトークンを検証してユーザーIDを取り出します。
type TokenDecoder interface {
	Decode(token string) (uuid.UUID, error)
}

// UserReader はユーザーのスナップショットをキャッシュアサイドで読み取ります。
type UserReader interface {
	Get(ctx context.Context, id uuid.UUID) (authentity.UserView, error)
}

// ProjectReader はプロジェクトのスナップショットをキャッシュアサイドで読み取ります。
type ProjectReader interface {
	Get(ctx context.Context, id uuid.UUID) (projectentity.ProjectView, error)
}

// IssueReader はIssueのスナップショットを読み取り、孤立したスナップショットを破棄します。
type IssueReader interface {
	Get(ctx context.Context, id uuid.UUID) (issueentity.IssueView, error)
	Evict(ctx context.Context, id uuid.UUID)
}

// Resolver は認証と所有権の解決を行います。
type Resolver struct {
	tokens   TokenDecoder
	users    UserReader
	projects ProjectReader
	issues   IssueReader
}

// NewResolver はResolverの新しいインスタンスを生成します。
func NewResolver(tokens TokenDecoder, users UserReader, projects ProjectReader, issues IssueReader) *Resolver {
	return &Resolver{tokens: tokens, users: users, projects: projects, issues: issues}
}

// Authenticate はトークンを検証し、対応するユーザーを返します。
// 署名・期限・subjectの不正、およびユーザーの不在は認証エラーになります。
func (r *Resolver) Authenticate(ctx context.Context, token string) (authentity.UserView, error) {
	userID, err := r.tokens.Decode(token)
	if err != nil {
		return authentity.UserView{}, apperror.Authentication("Invalid token", err)
	}

	user, err := r.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, authusecase.ErrUserNotFound) {
			return authentity.UserView{}, apperror.Authentication("User not found", err)
		}
		return authentity.UserView{}, err
	}
	return user, nil
}

// ResolveOwnedProject はプロジェクトが存在し、principalが所有していることを確認します。
func (r *Resolver) ResolveOwnedProject(ctx context.Context, principal authentity.UserView, projectID uuid.UUID) (projectentity.ProjectView, error) {
	project, err := r.projects.Get(ctx, projectID)
	if err != nil {
		return projectentity.ProjectView{}, err
	}
	if !project.OwnedBy(principal.ID) {
		return projectentity.ProjectView{}, apperror.Forbidden("Not enough permissions")
	}
	return project, nil
}

// ResolveOwnedIssue はIssueと親プロジェクトが存在し、principalが親プロジェクトを所有していることを確認します。
func (r *Resolver) ResolveOwnedIssue(ctx context.Context, principal authentity.UserView, issueID uuid.UUID) (issueentity.IssueView, error) {
	issue, err := r.issues.Get(ctx, issueID)
	if err != nil {
		return issueentity.IssueView{}, err
	}

	project, err := r.projects.Get(ctx, issue.ProjectID)
	if err != nil {
		if errors.Is(err, projectusecase.ErrProjectNotFound) {
			// 親プロジェクト削除後に残ったスナップショット
			slog.Warn("issue snapshot references a missing project",
				"issue_id", issue.ID, "project_id", issue.ProjectID)
			r.issues.Evict(ctx, issue.ID)
		}
		return issueentity.IssueView{}, err
	}
	if !project.OwnedBy(principal.ID) {
		return issueentity.IssueView{}, apperror.Forbidden("Not enough permissions")
	}
	return issue, nil
}
