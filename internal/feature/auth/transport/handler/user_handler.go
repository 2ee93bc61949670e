package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"issue_backend/internal/api"
	"issue_backend/internal/feature/auth/domain/entity"
	"issue_backend/internal/feature/auth/transport/http/dto"
	jwtmw "issue_backend/internal/platform/jwt"
	"issue_backend/internal/shared/apperror"
)

// ProfileUsecase はログインユーザー自身のプロフィール更新を定義します。
type ProfileUsecase interface {
	UpdateMe(ctx context.Context, id uuid.UUID, patch entity.UserPatch) (entity.UserView, error)
}

// UserHandler は /users/me を処理します。AuthRequired の後段で使用します。
type UserHandler struct {
	profiles ProfileUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(profiles ProfileUsecase) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// Me は認証済みユーザーのスナップショットをそのまま返します。
func (h *UserHandler) Me(c *gin.Context) {
	me, ok := jwtmw.Principal(c)
	if !ok {
		api.WriteError(c, apperror.Authentication("Not authenticated", nil))
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(me))
}

// UpdateMe はメールアドレス・パスワードを部分更新します。
func (h *UserHandler) UpdateMe(c *gin.Context) {
	me, ok := jwtmw.Principal(c)
	if !ok {
		api.WriteError(c, apperror.Authentication("Not authenticated", nil))
		return
	}

	var req dto.UpdateMeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.WriteError(c, api.BindingError(err))
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		api.WriteError(c, err)
		return
	}

	updated, err := h.profiles.UpdateMe(c.Request.Context(), me.ID, patch)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(updated))
}
