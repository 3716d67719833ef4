package cache

import (
	"context"
	"sync"
	"time"

	"ecocook/internal/infrastructure/config"
	"ecocook/internal/pkg/common"

	"go.uber.org/zap"
)

// Manager 記憶體快取，具 TTL 與容量上限，滿載時先清除過期項目再淘汰最少使用者
type Manager struct {
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	store map[string]cacheEntry
	stats cacheStats

	stop chan struct{}
	once sync.Once
}

type cacheEntry struct {
	value       []byte
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
	errors    int64
}

// NewManager 創建新的記憶體快取並啟動過期清理
func NewManager(cfg *config.CacheConfig) *Manager {
	m := newManager(cfg.MaxSize, cfg.TTL, time.Now)

	if cfg.CleanupInterval > 0 {
		go m.startCleanup(cfg.CleanupInterval)
	}

	common.LogInfo("快取管理員已初始化",
		zap.String("backend", "memory"),
		zap.Int("max_size", cfg.MaxSize),
		zap.Duration("ttl", cfg.TTL),
		zap.Duration("cleanup_interval", cfg.CleanupInterval),
	)
	return m
}

func newManager(maxSize int, ttl time.Duration, now func() time.Time) *Manager {
	return &Manager{
		maxSize: maxSize,
		ttl:     ttl,
		now:     now,
		store:   make(map[string]cacheEntry),
		stop:    make(chan struct{}),
	}
}

// Get 取得快取值
func (m *Manager) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.store[key]
	if !ok {
		m.stats.misses++
		recordLookup("memory", key, false)
		return nil, common.ErrCacheMiss
	}
	if m.now().After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		recordLookup("memory", key, false)
		return nil, common.ErrCacheMiss
	}

	entry.lastAccess = m.now()
	entry.accessCount++
	m.store[key] = entry
	m.stats.hits++
	recordLookup("memory", key, true)
	return entry.value, nil
}

// Set 寫入快取值，已滿且無法淘汰時回傳 common.ErrCacheFull
func (m *Manager) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[key]; !exists && len(m.store) >= m.maxSize {
		if evicted := m.cleanup(); evicted > 0 {
			common.LogDebug("快取清理執行", zap.Int("evicted", evicted))
		}
		if len(m.store) >= m.maxSize {
			m.evictLRU()
		}
		if len(m.store) >= m.maxSize {
			m.stats.errors++
			common.LogWarn("快取已滿", zap.Int("size", len(m.store)))
			return common.ErrCacheFull
		}
	}

	now := m.now()
	m.store[key] = cacheEntry{
		value:      value,
		expiresAt:  now.Add(m.ttl),
		lastAccess: now,
	}
	return nil
}

// Delete 刪除快取值
func (m *Manager) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}

func (m *Manager) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// cleanup 清除過期項目，呼叫端需持有鎖
func (m *Manager) cleanup() int {
	now := m.now()
	count := 0
	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}
	if count > 0 {
		common.LogDebug("Cleaned up expired cache entries",
			zap.Int("count", count),
			zap.Int("remaining_size", len(m.store)),
		)
	}
	return count
}

// evictLRU 淘汰存取次數最少、其次最久未存取的項目，呼叫端需持有鎖
func (m *Manager) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestCount ||
			(entry.accessCount == lowestCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogDebug("快取已淘汰(LRU)", zap.String("key", oldestKey))
	}
}

// GetStats 取得快取統計
func (m *Manager) GetStats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ratio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.maxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"errors":    m.stats.errors,
		"hit_ratio": ratio,
	}
}

// Close 停止清理並清空快取
func (m *Manager) Close() error {
	m.once.Do(func() { close(m.stop) })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]cacheEntry)
	common.LogInfo("快取管理員已關閉",
		zap.Int64("hits", m.stats.hits),
		zap.Int64("misses", m.stats.misses),
		zap.Int64("evictions", m.stats.evictions),
	)
	return nil
}
