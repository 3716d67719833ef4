// Package store 封裝 gorm 存取。每個操作透過 Queries 進行，
// 變更類操作在 Store.Transaction 內執行並於邊界一次提交。
package store

import (
	"context"
	"errors"
	"fmt"

	"ecocook/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store 資料存取入口
type Store struct {
	db *gorm.DB
}

// New 創建新的 Store
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Queries 綁定單一連線或交易的查詢集合
type Queries struct {
	db *gorm.DB
}

// Queries 回傳非交易的查詢集合，適用於唯讀操作
func (s *Store) Queries(ctx context.Context) *Queries {
	return &Queries{db: s.db.WithContext(ctx)}
}

// Transaction 在單一交易內執行 fn，fn 回傳錯誤時整體回滾
func (s *Store) Transaction(ctx context.Context, fn func(q *Queries) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Queries{db: tx})
	})
	if err != nil {
		common.LogDebug("Transaction rolled back", zap.Error(err))
	}
	return err
}

// Ping 檢查資料庫連線
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// notFound 將 gorm 的 ErrRecordNotFound 轉為 404 錯誤
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.NotFound(what + " not found")
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
