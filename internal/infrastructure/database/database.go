package database

import (
	"fmt"
	"time"

	"ecocook/internal/core/models"
	"ecocook/internal/infrastructure/config"
	"ecocook/internal/pkg/common"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 依設定開啟資料庫連線並執行自動遷移
func Open(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	common.LogInfo("Database connection established",
		zap.String("driver", cfg.Driver),
	)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate 自動遷移所有模型
func Migrate(db *gorm.DB) error {
	common.LogInfo("Running migrations...")
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	common.LogInfo("Migrations completed")
	return nil
}

// Close 關閉底層連線
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		common.LogWarn("Failed to close database", zap.Error(err))
	}
}
