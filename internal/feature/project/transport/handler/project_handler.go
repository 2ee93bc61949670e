// Package handler はprojectフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"issue_backend/internal/api"
	authentity "issue_backend/internal/feature/auth/domain/entity"
	"issue_backend/internal/feature/project/domain/entity"
	"issue_backend/internal/feature/project/transport/http/dto"
	jwtmw "issue_backend/internal/platform/jwt"
	"issue_backend/internal/shared/apperror"
	"issue_backend/internal/shared/query"
)

// ProjectUsecase はプロジェクト操作のユースケースを定義します。
type ProjectUsecase interface {
	List(ctx context.Context, ownerID uuid.UUID, sort query.Sort, page query.Pagination) (query.Page[entity.Project], error)
	Create(ctx context.Context, ownerID uuid.UUID, in entity.NewProject) (*entity.Project, error)
	Update(ctx context.Context, id uuid.UUID, patch entity.ProjectPatch) (*entity.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OwnershipResolver はプロジェクトの存在と所有権を確認します。
type OwnershipResolver interface {
	ResolveOwnedProject(ctx context.Context, principal authentity.UserView, projectID uuid.UUID) (entity.ProjectView, error)
}

// ProjectHandler は /projects 以下のHTTPリクエストを処理します。
type ProjectHandler struct {
	projects ProjectUsecase
	resolver OwnershipResolver
}

// NewProjectHandler はProjectHandlerの新しいインスタンスを生成します。
func NewProjectHandler(projects ProjectUsecase, resolver OwnershipResolver) *ProjectHandler {
	return &ProjectHandler{projects: projects, resolver: resolver}
}

// List は認証ユーザーが所有するプロジェクトをページングして返します。
func (h *ProjectHandler) List(c *gin.Context) {
	me, ok := principal(c)
	if !ok {
		return
	}
	params, err := api.BindListParams(c)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	page, err := h.projects.List(c.Request.Context(), me.ID, params.Sort(), params.Pagination())
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.NewPageResponse(page, dto.FromEntity))
}

// Create は認証ユーザーを所有者としてプロジェクトを作成します。
func (h *ProjectHandler) Create(c *gin.Context) {
	me, ok := principal(c)
	if !ok {
		return
	}
	var req dto.CreateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.WriteError(c, api.BindingError(err))
		return
	}

	p, err := h.projects.Create(c.Request.Context(), me.ID, req.ToNewProject())
	if err != nil {
		api.WriteError(c, err)
		return
	}
	slog.Info("project created", "project_id", p.ID, "owner_id", me.ID)
	c.JSON(http.StatusCreated, dto.FromEntity(*p))
}

// Get は所有権を確認したプロジェクトのスナップショットを返します。
func (h *ProjectHandler) Get(c *gin.Context) {
	view, ok := h.resolve(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewProjectRes(view))
}

// Update は指定されたフィールドのみを更新します。
func (h *ProjectHandler) Update(c *gin.Context) {
	view, ok := h.resolve(c)
	if !ok {
		return
	}
	var req dto.UpdateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.WriteError(c, api.BindingError(err))
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		api.WriteError(c, err)
		return
	}

	p, err := h.projects.Update(c.Request.Context(), view.ID, patch)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(*p))
}

// Delete はプロジェクトと配下のIssueを削除し、204を返します。
func (h *ProjectHandler) Delete(c *gin.Context) {
	view, ok := h.resolve(c)
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), view.ID); err != nil {
		api.WriteError(c, err)
		return
	}
	slog.Info("project deleted", "project_id", view.ID)
	c.Status(http.StatusNoContent)
}

// resolve はパスの project_id を認証ユーザーの所有プロジェクトとして解決します。
// 失敗時はエラーレスポンスを書き込み、falseを返します。
func (h *ProjectHandler) resolve(c *gin.Context) (entity.ProjectView, bool) {
	me, ok := principal(c)
	if !ok {
		return entity.ProjectView{}, false
	}
	id, err := api.UUIDParam(c, "project_id")
	if err != nil {
		api.WriteError(c, err)
		return entity.ProjectView{}, false
	}
	view, err := h.resolver.ResolveOwnedProject(c.Request.Context(), me, id)
	if err != nil {
		api.WriteError(c, err)
		return entity.ProjectView{}, false
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
