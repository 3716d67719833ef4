package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecocook/internal/api"
	"ecocook/internal/core/auth"
	"ecocook/internal/core/cache"
	"ecocook/internal/core/catalog"
	"ecocook/internal/core/inventory"
	"ecocook/internal/core/recipe"
	"ecocook/internal/core/shopping"
	"ecocook/internal/core/store"
	"ecocook/internal/infrastructure/config"
	"ecocook/internal/infrastructure/database"
	"ecocook/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// logger 需在載入 config 後初始化
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(&cfg.Database, cfg.App.Debug)
	if err != nil {
		common.LogFatal("Failed to open database", zap.Error(err))
	}
	defer database.Close(db)
	st := store.New(db)

	recipeCache, err := cache.New(ctx, &cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if recipeCache != nil {
		defer recipeCache.Close()
	}

	cat := catalog.New(st, recipeCache, catalog.NewFetcher(cfg.Catalog.ImportTimeout))
	if cfg.Catalog.SeedOnStart {
		if _, err := cat.Seed(ctx); err != nil {
			common.LogFatal("Failed to seed recipes", zap.Error(err))
		}
	}
	if cfg.Catalog.ImportURL != "" {
		// 遠端目錄無法取得時仍以現有目錄啟動
		if _, err := cat.ImportURL(ctx, cfg.Catalog.ImportURL); err != nil {
			common.LogWarn("Catalog import failed", zap.String("url", cfg.Catalog.ImportURL), zap.Error(err))
		}
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		common.LogFatal("Failed to initialize token manager", zap.Error(err))
	}
	inv := inventory.NewService(st, nil)

	router := api.SetupRouter(ctx, cfg, api.Services{
		DB:        st,
		Auth:      auth.NewService(st, tokens, cfg.Auth.BcryptCost),
		Inventory: inv,
		Recipes:   recipe.NewService(st, inv, cat, nil),
		Shopping:  shopping.NewService(st),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
			zap.String("database", cfg.Database.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogError("Failed to start server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}
	common.LogInfo("Server exited")
}
