package middleware

import (
	"context"
	"net/http"
	"strings"

	"ecocook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

// Authenticator 驗證存取權杖並回傳使用者 id
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uint, error)
}

// Auth 驗證 Bearer 權杖，成功時將使用者 id 寫入 context
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.ErrorResponse{
				Code:    common.ErrCodeUnauthorized,
				Message: "missing bearer token",
			})
			return
		}

		userID, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := http.StatusInternalServerError
			resp := common.ErrorResponse{Code: common.ErrCodeInternalError, Message: "internal server error"}
			if ce, ok := common.AsCustomError(err); ok && ce.Status == http.StatusUnauthorized {
				status = http.StatusUnauthorized
				resp = common.ErrorResponse{Code: ce.Code, Message: ce.Message}
			}
			common.LogWarn("Authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(status, resp)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID 取出 Auth 寫入的使用者 id
func UserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
