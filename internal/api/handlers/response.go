// Package handlers 實作 /api/v1 下的 HTTP 處理程序。
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"ecocook/internal/api/middleware"
	"ecocook/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 將服務層錯誤轉成 {code, message, details?}，details 僅在除錯模式輸出
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	resp := common.ErrorResponse{
		Code:    common.ErrCodeInternalError,
		Message: "internal server error",
	}

	if errors.Is(err, context.DeadlineExceeded) {
		err = common.NewError(common.ErrCodeGatewayTimeout, common.ErrGatewayTimeout.Message, http.StatusGatewayTimeout, err)
	}

	switch ce, ok := common.AsCustomError(err); {
	case common.IsValidationError(err):
		status = http.StatusUnprocessableEntity
		resp.Code = common.ErrCodeValidation
		resp.Message = err.Error()
	case ok:
		status = ce.Status
		resp.Code = ce.Code
		resp.Message = ce.Message
	}

	if status >= http.StatusInternalServerError {
		common.LogError("Request failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestid.Get(c)),
		)
		if gin.IsDebugging() {
			resp.Details = err.Error()
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON 解析請求體，格式錯誤時回傳 400；allowEmpty 允許空請求體
func bindJSON(c *gin.Context, v interface{}, allowEmpty bool) bool {
	err := c.ShouldBindJSON(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	respondError(c, common.NewError(common.ErrCodeInvalidRequest, "invalid request body", http.StatusBadRequest, err))
	return false
}

// idParam 解析路徑中的正整數 id
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, common.NewError(common.ErrCodeInvalidRequest, "invalid "+name, http.StatusBadRequest, err))
		return 0, false
	}
	return uint(id), true
}

// currentUser 取出已驗證的使用者 id
func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, common.ErrUnauthorized)
	}
	return userID, ok
}
