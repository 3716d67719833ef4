package middleware

import (
	"context"
	"errors"
	"time"

	"ecocook/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Timeout 為每個請求設定逾時，逾時後資料庫操作會以 context 錯誤結束
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", d),
			)
		}
	}
}
