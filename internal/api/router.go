// Package api 組裝 HTTP 路由與中間件。
package api

import (
	"context"
	"time"

	"ecocook/internal/api/handlers"
	"ecocook/internal/api/handlers/health"
	"ecocook/internal/api/middleware"
	"ecocook/internal/core/auth"
	"ecocook/internal/core/inventory"
	"ecocook/internal/core/recipe"
	"ecocook/internal/core/shopping"
	"ecocook/internal/infrastructure/config"
	"ecocook/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	// 請求體大小上限未設定時的預設值 (1MB)
	defaultMaxBodySize = 1 << 20
	// 限流器與去重指紋的清理週期
	janitorInterval = 10 * time.Minute
)

// Services 路由所需的服務
type Services struct {
	DB        health.Pinger
	Auth      *auth.Service
	Inventory *inventory.Service
	Recipes   *recipe.Service
	Shopping  *shopping.Service
}

// SetupRouter 設置路由，ctx 結束時停止背景清理
func SetupRouter(ctx context.Context, cfg *config.Config, svc Services) *gin.Engine {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	maxBody := cfg.Server.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}
	router.Use(middleware.BodySizeLimit(maxBody))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	go runJanitor(ctx, limiter, dedup)

	healthHandler := health.NewHandler(svc.DB, cfg.App.Version)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	if limiter != nil {
		v1.Use(middleware.RateLimit(limiter, cfg.RateLimit.Window))
	}

	authHandler := handlers.NewAuthHandler(svc.Auth)
	inventoryHandler := handlers.NewInventoryHandler(svc.Inventory)
	recipeHandler := handlers.NewRecipeHandler(svc.Recipes)
	shoppingHandler := handlers.NewShoppingHandler(svc.Shopping)

	requireAuth := middleware.Auth(svc.Auth)

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.DELETE("/me", requireAuth, authHandler.DeleteMe)
	}

	protected := v1.Group("", requireAuth)
	{
		protected.GET("/inventory", inventoryHandler.List)
		protected.GET("/inventory/expiring", inventoryHandler.Expiring)
		protected.POST("/inventory", inventoryHandler.Add)
		protected.DELETE("/inventory/:id", inventoryHandler.Delete)
		protected.GET("/ingredients", inventoryHandler.Ingredients)

		protected.GET("/recipes", recipeHandler.List)
		protected.GET("/recipes/:id", recipeHandler.Get)
		protected.GET("/recipes/:id/status", recipeHandler.Status)
		protected.POST("/recipes/:id/rate", recipeHandler.Rate)
		protected.GET("/recipes/:id/cook-check", recipeHandler.CookCheck)
		protected.POST("/recipes/:id/cook", dedup.Handler(), recipeHandler.Cook)
		protected.GET("/history", recipeHandler.History)

		protected.GET("/shopping", shoppingHandler.Lists)
		protected.POST("/shopping", shoppingHandler.Create)
		protected.GET("/shopping/:id", shoppingHandler.Get)
		protected.POST("/shopping/:id/complete", shoppingHandler.ToggleComplete)
		protected.DELETE("/shopping/:id", shoppingHandler.Delete)
		protected.POST("/shopping/:id/items", shoppingHandler.AddItem)
		protected.POST("/shopping/:id/items/:ingredientId/toggle", shoppingHandler.ToggleItem)
		protected.DELETE("/shopping/:id/items/:ingredientId", shoppingHandler.DeleteItem)
	}

	common.LogInfo("Router setup completed",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", maxBody),
	)
	return router
}

func runJanitor(ctx context.Context, limiter *middleware.RateLimiter, dedup *middleware.Deduplicator) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if limiter != nil {
				if n := limiter.Cleanup(); n > 0 {
					common.LogDebug("Removed idle rate limiters", zap.Int("count", n))
				}
			}
			dedup.Cleanup()
		case <-ctx.Done():
			return
		}
	}
}
