package middleware

import (
	"time"

	"ecocook/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 記錄請求數量、延遲與進行中的請求
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		c.Next()

		// 以路由樣板作為標籤，避免 id 造成標籤爆量
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordAPIRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}
