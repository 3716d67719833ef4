package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecocook/internal/infrastructure/config"
	"ecocook/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisKeyPrefix = "ecocook:"

// Redis 以 Redis 為後端的快取
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis 連線 Redis 並確認可用
func NewRedis(ctx context.Context, cfg *config.CacheConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("快取管理員已初始化",
		zap.String("backend", "redis"),
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("ttl", cfg.TTL),
	)
	return NewRedisWithClient(client, cfg.TTL), nil
}

// NewRedisWithClient 使用既有的 client 建立快取
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Get 取得快取值
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			recordLookup("redis", key, false)
			return nil, common.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}
	recordLookup("redis", key, true)
	return data, nil
}

// Set 寫入快取值
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, redisKeyPrefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete 刪除快取值
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Close 關閉連線
func (r *Redis) Close() error {
	return r.client.Close()
}
