// Package metrics 定義服務的 Prometheus 指標。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecocook_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecocook_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ecocook_api_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	// Domain
	RecipesCookedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecocook_recipes_cooked_total",
			Help: "Total number of cook operations by mode and outcome",
		},
		[]string{"mode", "had_all"},
	)

	ShoppingItemsQueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecocook_shopping_items_queued_total",
			Help: "Total number of shopping list items queued by cook operations",
		},
	)

	RecipeRankingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecocook_recipe_rankings_total",
			Help: "Total number of recipe ranking requests by sort policy",
		},
		[]string{"policy"},
	)

	RecipesImportedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecocook_recipes_imported_total",
			Help: "Total number of recipes imported into the catalog",
		},
	)

	// Cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecocook_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"backend"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecocook_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"backend"},
	)

	// Rate limiting
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecocook_rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// RecordAPIRequest 記錄一次 API 請求
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest 增減進行中的請求數
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCook 記錄一次烹飪
func RecordCook(mode string, hadAll bool, queued int) {
	RecipesCookedTotal.WithLabelValues(mode, strconv.FormatBool(hadAll)).Inc()
	ShoppingItemsQueuedTotal.Add(float64(queued))
}

// RecordRanking 記錄一次食譜排序
func RecordRanking(policy string) {
	RecipeRankingsTotal.WithLabelValues(policy).Inc()
}

// RecordImport 記錄匯入的食譜數
func RecordImport(count int) {
	RecipesImportedTotal.Add(float64(count))
}

// RecordCacheLookup 記錄快取命中或未命中
func RecordCacheLookup(backend string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(backend).Inc()
	} else {
		CacheMisses.WithLabelValues(backend).Inc()
	}
}
