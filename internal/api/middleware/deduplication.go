package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"ecocook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deduplicator 在時間窗內拒絕相同使用者送出的相同請求
type Deduplicator struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewDeduplicator 創建新的去重器，window 為 0 時預設 1 秒
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	return &Deduplicator{
		window: window,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
}

// Cleanup 清除過期指紋
func (d *Deduplicator) Cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	for k, t := range d.seen {
		if now.Sub(t) > d.window {
			delete(d.seen, k)
		}
	}
}

// seenRecently 記錄指紋，若在時間窗內已出現則回傳 true
func (d *Deduplicator) seenRecently(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if last, ok := d.seen[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.seen[fingerprint] = now
	return false
}

// forget 移除指紋，讓失敗的請求可以立即重送
func (d *Deduplicator) forget(fingerprint string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, fingerprint)
}

// Handler 去重中間件，需掛在 Auth 之後。回應為錯誤狀態時不保留指紋。
func (d *Deduplicator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			common.LogError("Failed to read request body", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "failed to read request body",
			})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		hash := sha256.Sum256(body)
		fingerprint := c.Request.Method + ":" + c.Request.URL.Path + ":" + hex.EncodeToString(hash[:])
		if userID, ok := UserID(c); ok {
			fingerprint = strconv.FormatUint(uint64(userID), 10) + ":" + fingerprint
		}

		if d.seenRecently(fingerprint) {
			common.LogWarn("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "duplicate request",
			})
			return
		}
		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			d.forget(fingerprint)
		}
	}
}
