package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ecocook/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Fetcher 下載遠端食譜文件，連續失敗時以斷路器暫停請求
type Fetcher struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewFetcher 創建新的遠端下載器
func NewFetcher(timeout time.Duration) *Fetcher {
	return NewFetcherWithClient(resty.New(), timeout)
}

// NewFetcherWithClient 使用既有的 resty client 建立下載器
func NewFetcherWithClient(client *resty.Client, timeout time.Duration) *Fetcher {
	client.
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "ecocook-catalog-importer")

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog-import",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			common.LogWarn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Fetcher{client: client, breaker: breaker}
}

// Fetch 下載 url 的內容
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, common.NewValidationError("import url is required")
	}

	body, err := f.breaker.Execute(func() ([]byte, error) {
		resp, err := f.client.R().SetContext(ctx).Get(url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch recipes: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("recipe source returned status %d", resp.StatusCode())
		}
		return resp.Body(), nil
	})
	if err != nil {
		common.LogError("Remote recipe import failed", zap.String("url", url), zap.Error(err))
		return nil, common.NewError(common.ErrCodeServiceUnavailable, "recipe source unavailable", http.StatusServiceUnavailable, err)
	}
	return body, nil
}
