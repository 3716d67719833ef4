package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"ecocook/internal/pkg/common"
	"ecocook/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// limiterIdleTTL 超過此時間未使用的 IP 限流器會被清除
const limiterIdleTTL = time.Hour

// RateLimiter 依用戶端 IP 分別限流的令牌桶
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter 創建新的限流器，每個 IP 在 window 內最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
		now:      time.Now,
	}
}

// Allow 檢查此 IP 是否還有可用令牌
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastAccess = now
	return entry.limiter.AllowN(now, 1)
}

// Cleanup 清除閒置的限流器，回傳清除數量
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := rl.now().Add(-limiterIdleTTL)
	removed := 0
	for ip, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, ip)
			removed++
		}
	}
	return removed
}

// RateLimit 限流中間件
func RateLimit(limiter *RateLimiter, window time.Duration) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(window.Seconds()))
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			metrics.RateLimitedTotal.Inc()
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "too many requests",
			})
			return
		}
		c.Next()
	}
}
