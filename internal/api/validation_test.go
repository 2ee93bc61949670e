package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue_backend/internal/shared/apperror"
	"issue_backend/internal/shared/optional"
)

type patchBody struct {
	Name        optional.Value[string] `json:"name" binding:"omitempty,min=2,max=5"`
	Description optional.Value[string] `json:"description" binding:"omitempty,max=3"`
}

func bindPatch(t *testing.T, body string) (patchBody, error) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPatch, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req patchBody
	err := c.ShouldBindJSON(&req)
	return req, err
}

// TestRegisterValidators_Optional はoptional.Valueの中身がバリデーション対象になることを検証します。
func TestRegisterValidators_Optional(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantErr   bool
		wantField string
	}{
		{"absent fields", `{}`, false, ""},
		{"explicit null", `{"description":null}`, false, ""},
		{"valid values", `{"name":"abc","description":"xy"}`, false, ""},
		{"too short", `{"name":"a"}`, true, "name"},
		{"too long", `{"description":"long"}`, true, "description"},
		{"explicit empty string", `{"name":""}`, true, "name"},
		{"empty string within max", `{"description":""}`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := bindPatch(t, tt.body)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr := BindingError(err)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			fields, ok := appErr.Details["fields"].([]FieldError)
			require.True(t, ok)
			require.Len(t, fields, 1)
			assert.Equal(t, tt.wantField, fields[0].Field)
		})
	}
}

// TestBindPatch_Presence は未指定とnullが区別されることを検証します。
func TestBindPatch_Presence(t *testing.T) {
	t.Parallel()

	req, err := bindPatch(t, `{"description":null}`)
	require.NoError(t, err)
	assert.False(t, req.Name.Set)
	assert.True(t, req.Description.Set)
	assert.Nil(t, req.Description.Ptr)
}

func TestBindingError_Syntax(t *testing.T) {
	t.Parallel()

	_, err := bindPatch(t, `{"name":`)
	require.Error(t, err)
	appErr := BindingError(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
}

func TestBindingError_Type(t *testing.T) {
	t.Parallel()

	_, err := bindPatch(t, `{"name": 12}`)
	require.Error(t, err)
	appErr := BindingError(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
}
