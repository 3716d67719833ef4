package middleware

import (
	"net/http"
	"time"

	"ecocook/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger 日誌中間件，依狀態碼決定日誌等級
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestid.Get(c)),
		}
		if userID, ok := UserID(c); ok {
			fields = append(fields, zap.Uint("user_id", userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= 500:
			common.LogError("伺服器錯誤", append(fields, zap.String("error_type", "server_error"))...)
		case status >= 400:
			common.LogWarn("用戶端錯誤", append(fields, zap.String("error_type", "client_error"))...)
		default:
			common.LogInfo("請求完成", fields...)
		}
	}
}

// Recovery 攔截 panic 並回傳 500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				common.LogError("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("request_id", requestid.Get(c)),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, common.ErrorResponse{
					Code:    common.ErrCodeInternalError,
					Message: "internal server error",
				})
			}
		}()

		c.Next()
	}
}
