package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker はセッションストアの疎通確認に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler はヘルスチェックエンドポイントのハンドラー。
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// ServeHTTP はセッションストアに接続できる場合に200を返す。
// GET /health
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.checker.Ping(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
