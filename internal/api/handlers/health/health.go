// Package health 提供存活、就緒與狀態檢查。
package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"ecocook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// Pinger 可被探測的依賴，例如資料庫連線
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Database  string                 `json:"database"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// Handler 健康檢查處理程序
type Handler struct {
	db      Pinger
	version string
}

// NewHandler 創建健康檢查處理程序
func NewHandler(db Pinger, version string) *Handler {
	return &Handler{db: db, version: version}
}

func (h *Handler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return h.db.Ping(ctx)
}

// HealthCheck 回傳版本、資料庫狀態與執行期資訊
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Database:  "up",
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if err := h.ping(c.Request.Context()); err != nil {
		common.LogWarn("Health check database ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Database = "down"
	}

	c.JSON(http.StatusOK, resp)
}

// ReadinessCheck 資料庫可用時才回報就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		common.LogWarn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "database unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
