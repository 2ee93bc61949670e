// Package api はHTTP境界で共有されるレスポンス型、エラーエンベロープ、
// クエリパラメータのバインディングを提供します。
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"issue_backend/internal/shared/apperror"
)

// ErrorBody はエラーエンベロープの中身です。
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse は全エラーレスポンス共通の {"error": {...}} 形式です。
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindValidation:
		return http.StatusUnprocessableEntity
	case apperror.KindAuthentication:
		return http.StatusUnauthorized
	case apperror.KindAuthorization:
		return http.StatusForbidden
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError はerrをエラーエンベロープとして書き込み、後続のハンドラーを中断します。
// タクソノミー外のエラーは INTERNAL_ERROR として返し、原因はログにのみ残します。
func WriteError(c *gin.Context, err error) {
	appErr := apperror.As(err)
	if appErr.Kind == apperror.KindInternal {
		slog.Error("request failed",
			"error", err,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"remote_addr", c.ClientIP(),
		)
	}
	c.AbortWithStatusJSON(StatusOf(appErr.Kind), ErrorResponse{Error: ErrorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}})
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// BindingError converts a gin binding failure into a VALIDATION_ERROR.
func BindingError(err error) *apperror.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
		return apperror.Validation("request validation failed").
			WithDetails(map[string]any{"fields": fields})
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return apperror.Validation("request body has an invalid field type").
			WithDetails(map[string]any{"field": typeErr.Field})
	case errors.As(err, &syntaxErr):
		return apperror.Validation("request body is not valid JSON")
	default:
		return apperror.Validation("invalid request body")
	}
}
