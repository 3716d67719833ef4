// Package storetest 提供以記憶體 SQLite 為後端的測試 Store。
package storetest

import (
	"context"
	"testing"

	"ecocook/internal/core/models"
	"ecocook/internal/core/store"
	"ecocook/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New 開啟已遷移的記憶體資料庫
func New(t testing.TB) *store.Store {
	t.Helper()
	return store.New(Open(t))
}

// Open 開啟已遷移的記憶體資料庫並回傳 gorm 連線
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// 每條連線各自擁有一個 :memory: 資料庫
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// MustUser 建立測試使用者
func MustUser(t testing.TB, st *store.Store, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x"}
	if err := st.Queries(context.Background()).CreateUser(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
