package middleware

import (
	"net/http"

	"ecocook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BodySizeLimit 限制請求體大小，超過 Content-Length 上限時直接回傳 413
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			common.LogWarn("Request body too large",
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("max_size", maxSize),
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "request body too large",
			})
			return
		}

		// 未宣告長度的請求在讀取時截斷
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
