// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"issue_backend/internal/shared/apperror"
)

const pingTimeout = 2 * time.Second

// Pinger は依存先の疎通確認を行います。
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthRes is the /healthz body. Code is set only when the service is unavailable.
type HealthRes struct {
	Status   string `json:"status"`
	Code     string `json:"code,omitempty"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// HealthHandler はストアとキャッシュの状態を報告します。
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

// NewHealthHandler はHealthHandlerの新しいインスタンスを生成します。
func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// ストアが応答しない場合のみ503を返します。キャッシュ停止は劣化運転として200のままです。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	res := HealthRes{Status: "ok", Database: "ok", Cache: "ok"}
	status := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		slog.Error("health check: database unreachable", "error", err)
		res.Status, res.Database = "unavailable", "unavailable"
		res.Code = apperror.CodeServiceUnavailable
		status = http.StatusServiceUnavailable
	}
	if err := h.cache.Ping(ctx); err != nil {
		slog.Warn("health check: cache unreachable", "error", err)
		res.Cache = "unavailable"
		if status == http.StatusOK {
			res.Status = "degraded"
		}
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}
	c.JSON(status, res)
}
