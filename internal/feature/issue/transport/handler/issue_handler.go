// Package handler はissueフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"issue_backend/internal/api"
	authentity "issue_backend/internal/feature/auth/domain/entity"
	"issue_backend/internal/feature/issue/domain/entity"
	"issue_backend/internal/feature/issue/transport/http/dto"
	"issue_backend/internal/feature/issue/usecase"
	projectentity "issue_backend/internal/feature/project/domain/entity"
	jwtmw "issue_backend/internal/platform/jwt"
	"issue_backend/internal/shared/apperror"
	"issue_backend/internal/shared/query"
)

// IssueUsecase はIssue操作のユースケースを定義します。
type IssueUsecase interface {
	List(ctx context.Context, scope usecase.Scope, filter entity.Filter, sort query.Sort, page query.Pagination) (query.Page[entity.Issue], error)
	Create(ctx context.Context, projectID uuid.UUID, in entity.NewIssue) (*entity.Issue, error)
	Update(ctx context.Context, id uuid.UUID, patch entity.IssuePatch) (*entity.Issue, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OwnershipResolver はプロジェクト/Issueの存在と所有権を確認します。
type OwnershipResolver interface {
	ResolveOwnedProject(ctx context.Context, principal authentity.UserView, projectID uuid.UUID) (projectentity.ProjectView, error)
	ResolveOwnedIssue(ctx context.Context, principal authentity.UserView, issueID uuid.UUID) (entity.IssueView, error)
}

// IssueHandler は /issues 以下のHTTPリクエストを処理します。
type IssueHandler struct {
	issues   IssueUsecase
	resolver OwnershipResolver
}

// NewIssueHandler はIssueHandlerの新しいインスタンスを生成します。
func NewIssueHandler(issues IssueUsecase, resolver OwnershipResolver) *IssueHandler {
	return &IssueHandler{issues: issues, resolver: resolver}
}

// ListOwned は認証ユーザーが所有する全プロジェクト配下のIssueを返します。
func (h *IssueHandler) ListOwned(c *gin.Context) {
	me, ok := principal(c)
	if !ok {
		return
	}
	h.list(c, usecase.OwnedBy(me.ID))
}

// ListByProject は所有権を確認したプロジェクト配下のIssueを返します。
func (h *IssueHandler) ListByProject(c *gin.Context) {
	project, ok := h.resolveProject(c)
	if !ok {
		return
	}
	h.list(c, usecase.InProject(project.ID))
}

func (h *IssueHandler) list(c *gin.Context, scope usecase.Scope) {
	params, err := api.BindListParams(c)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	filter := dto.NewFilter(params.Status, params.Priority)
	page, err := h.issues.List(c.Request.Context(), scope, filter, params.Sort(), params.Pagination())
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.NewPageResponse(page, dto.FromEntity))
}

// Create はプロジェクト配下にIssueを作成します。
func (h *IssueHandler) Create(c *gin.Context) {
	project, ok := h.resolveProject(c)
	if !ok {
		return
	}
	var req dto.CreateIssueReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.WriteError(c, api.BindingError(err))
		return
	}

	i, err := h.issues.Create(c.Request.Context(), project.ID, req.ToNewIssue())
	if err != nil {
		api.WriteError(c, err)
		return
	}
	slog.Info("issue created", "issue_id", i.ID, "project_id", project.ID)
	c.JSON(http.StatusCreated, dto.FromEntity(*i))
}

// Get は所有権を確認したIssueのスナップショットを返します。
func (h *IssueHandler) Get(c *gin.Context) {
	view, ok := h.resolveIssue(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewIssueRes(view))
}

// Update は指定されたフィールドのみを更新します。
func (h *IssueHandler) Update(c *gin.Context) {
	view, ok := h.resolveIssue(c)
	if !ok {
		return
	}
	var req dto.UpdateIssueReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.WriteError(c, api.BindingError(err))
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		api.WriteError(c, err)
		return
	}

	i, err := h.issues.Update(c.Request.Context(), view.ID, patch)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(*i))
}

// Delete はIssueを削除し、204を返します。
func (h *IssueHandler) Delete(c *gin.Context) {
	view, ok := h.resolveIssue(c)
	if !ok {
		return
	}
	if err := h.issues.Delete(c.Request.Context(), view.ID); err != nil {
		api.WriteError(c, err)
		return
	}
	slog.Info("issue deleted", "issue_id", view.ID, "project_id", view.ProjectID)
	c.Status(http.StatusNoContent)
}

func (h *IssueHandler) resolveProject(c *gin.Context) (projectentity.ProjectView, bool) {
	me, ok := principal(c)
	if !ok {
		return projectentity.ProjectView{}, false
	}
	id, err := api.UUIDParam(c, "project_id")
	if err != nil {
		api.WriteError(c, err)
		return projectentity.ProjectView{}, false
	}
	view, err := h.resolver.ResolveOwnedProject(c.Request.Context(), me, id)
	if err != nil {
		api.WriteError(c, err)
		return projectentity.ProjectView{}, false
	}
	return view, true
}

func (h *IssueHandler) resolveIssue(c *gin.Context) (entity.IssueView, bool) {
	me, ok := principal(c)
	if !ok {
		return entity.IssueView{}, false
	}
	id, err := api.UUIDParam(c, "issue_id")
	if err != nil {
		api.WriteError(c, err)
		return entity.IssueView{}, false
	}
	view, err := h.resolver.ResolveOwnedIssue(c.Request.Context(), me, id)
	if err != nil {
		api.WriteError(c, err)
		return entity.IssueView{}, false
	}
	return view, true
}

func principal(c *gin.Context) (authentity.UserView, bool) {
	me, ok := jwtmw.Principal(c)
	if !ok {
		api.WriteError(c, apperror.Authentication("Not authenticated", nil))
	}
	return me, ok
}
