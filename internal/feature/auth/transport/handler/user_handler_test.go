package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue_backend/internal/api"
	"issue_backend/internal/feature/auth/domain/entity"
	"issue_backend/internal/feature/auth/transport/http/dto"
	jwtmw "issue_backend/internal/platform/jwt"
	"issue_backend/internal/shared/apperror"
)

type mockProfileUsecase struct {
	UpdateMeFunc func(ctx context.Context, id uuid.UUID, patch entity.UserPatch) (entity.UserView, error)
}

func (m *mockProfileUsecase) UpdateMe(ctx context.Context, id uuid.UUID, patch entity.UserPatch) (entity.UserView, error) {
	if m.UpdateMeFunc != nil {
		return m.UpdateMeFunc(ctx, id, patch)
	}
	return entity.UserView{}, nil
}

// withPrincipal はAuthRequiredの代わりに認証済みユーザーを設定するテスト用ミドルウェアです。
func withPrincipal(user entity.UserView) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(jwtmw.ContextPrincipal, user)
		c.Next()
	}
}

var me = entity.UserView{ID: uuid.New(), Email: "me@example.com", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

func TestUserHandler_Me(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.GET("/me", withPrincipal(me), NewUserHandler(&mockProfileUsecase{}).Me)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var res dto.UserRes
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, dto.NewUserRes(me), res)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestUserHandler_Me_NoPrincipal(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.GET("/me", NewUserHandler(&mockProfileUsecase{}).Me)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestUserHandler_UpdateMe は指定されたフィールドのみがパッチに含まれることを検証します。
func TestUserHandler_UpdateMe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		check          func(t *testing.T, patch entity.UserPatch)
	}{
		{
			name:           "email only",
			body:           gin.H{"email": "new@example.com"},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, patch entity.UserPatch) {
				require.NotNil(t, patch.Email)
				assert.Equal(t, "new@example.com", *patch.Email)
				assert.Nil(t, patch.Password)
			},
		},
		{
			name:           "password only",
			body:           gin.H{"password": "new-password"},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, patch entity.UserPatch) {
				assert.Nil(t, patch.Email)
				require.NotNil(t, patch.Password)
			},
		},
		{name: "invalid email", body: gin.H{"email": "nope"}, expectedStatus: http.StatusUnprocessableEntity},
		{name: "short password", body: gin.H{"password": "short"}, expectedStatus: http.StatusUnprocessableEntity},
		{name: "null email", body: `{"email":null}`, expectedStatus: http.StatusUnprocessableEntity},
		{name: "empty email", body: `{"email":""}`, expectedStatus: http.StatusUnprocessableEntity},
		{name: "empty password", body: `{"password":""}`, expectedStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := &mockProfileUsecase{UpdateMeFunc: func(ctx context.Context, id uuid.UUID, patch entity.UserPatch) (entity.UserView, error) {
				assert.Equal(t, me.ID, id)
				if tt.check == nil {
					t.Error("usecase must not be called")
				} else {
					tt.check(t, patch)
				}
				out := me
				if patch.Email != nil {
					out.Email = *patch.Email
				}
				return out, nil
			}}
			router := gin.New()
			router.PATCH("/me", withPrincipal(me), NewUserHandler(uc).UpdateMe)

			w := doJSON(t, router, http.MethodPatch, "/me", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}

func TestUserHandler_UpdateMe_Conflict(t *testing.T) {
	t.Parallel()

	uc := &mockProfileUsecase{UpdateMeFunc: func(ctx context.Context, id uuid.UUID, patch entity.UserPatch) (entity.UserView, error) {
		return entity.UserView{}, apperror.Conflict("Email already registered", nil)
	}}
	router := gin.New()
	router.PATCH("/me", withPrincipal(me), NewUserHandler(uc).UpdateMe)

	w := doJSON(t, router, http.MethodPatch, "/me", gin.H{"email": "taken@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var res api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, apperror.CodeConflict, res.Error.Code)
}
