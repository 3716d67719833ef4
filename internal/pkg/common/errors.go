package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓 errors.Is(err, ErrNotFound) 對包裝過的錯誤也成立
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// NotFound 建立帶有資源描述的 404 錯誤
func NotFound(message string) error {
	return NewError(ErrCodeNotFound, message, http.StatusNotFound, nil)
}

// Conflict 建立帶有描述的 409 錯誤
func Conflict(message string) error {
	return NewError(ErrCodeConflict, message, http.StatusConflict, nil)
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤（支援包裝過的錯誤）
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsCustomError 取出錯誤鏈中的 CustomError
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeUnauthorized    = "UNAUTHORIZED"      // 401
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeConflict        = "CONFLICT"          // 409
	ErrCodeValidation      = "VALIDATION_FAILED" // 422
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504
)

// 預定義錯誤
var (
	ErrUnauthorized   = NewError(ErrCodeUnauthorized, "unauthorized", http.StatusUnauthorized, nil)
	ErrNotFound       = NewError(ErrCodeNotFound, "resource not found", http.StatusNotFound, nil)
	ErrConflict       = NewError(ErrCodeConflict, "resource conflict", http.StatusConflict, nil)
	ErrGatewayTimeout = NewError(ErrCodeGatewayTimeout, "request timed out", http.StatusGatewayTimeout, nil)

	// 快取
	ErrCacheMiss = NewError("CACHE_MISS", "cache miss", http.StatusNotFound, nil)
	ErrCacheFull = NewError("CACHE_FULL", "cache is full", http.StatusServiceUnavailable, nil)
)
