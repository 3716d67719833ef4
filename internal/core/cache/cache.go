// Package cache 提供食譜目錄使用的鍵值快取，支援記憶體與 Redis 兩種後端。
package cache

import (
	"context"
	"fmt"

	"ecocook/internal/infrastructure/config"
	"ecocook/internal/pkg/common"
	"ecocook/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Cache 快取介面，找不到鍵時回傳 common.ErrCacheMiss
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New 依設定建立快取，停用時回傳 nil
func New(ctx context.Context, cfg *config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}

	switch cfg.Backend {
	case "redis":
		r, err := NewRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "", "memory":
		return NewManager(cfg), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// recordLookup 記錄查詢結果的指標與除錯日誌
func recordLookup(backend, key string, hit bool) {
	metrics.RecordCacheLookup(backend, hit)
	msg := "快取未命中"
	if hit {
		msg = "快取命中"
	}
	common.LogDebug(msg, zap.String("backend", backend), zap.String("key", key))
}
