package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Cache       CacheConfig     `mapstructure:"cache"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Auth        AuthConfig      `mapstructure:"auth"`
	Catalog     CatalogConfig   `mapstructure:"catalog"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// DatabaseConfig 資料庫設定
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// CacheConfig 食譜目錄快取設定
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// AuthConfig 身分驗證設定
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

// CatalogConfig 食譜目錄設定
type CatalogConfig struct {
	SeedOnStart   bool          `mapstructure:"seed_on_start"`
	ImportURL     string        `mapstructure:"import_url"`
	ImportTimeout time.Duration `mapstructure:"import_timeout"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時僅使用環境變數與預設值
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_URL")
	v.BindEnv("cache.enabled", "CACHE_ENABLED")
	v.BindEnv("cache.backend", "CACHE_BACKEND")
	v.BindEnv("cache.redis_addr", "REDIS_ADDR")
	v.BindEnv("cache.redis_password", "REDIS_PASSWORD")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("catalog.import_url", "CATALOG_IMPORT_URL")
	v.BindEnv("dedup_window", "DEDUP_WINDOW")
	v.BindEnv("log_level", "LOG_LEVEL")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "ecocook")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// 資料庫設定
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "ecocook.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "30m")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 100)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.cleanup_interval", "5m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 身分驗證設定
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.bcrypt_cost", 10)

	// 目錄設定
	v.SetDefault("catalog.seed_on_start", true)
	v.SetDefault("catalog.import_timeout", "30s")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}
	if config.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}

	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case "memory":
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case "redis":
			if config.Cache.RedisAddr == "" {
				return fmt.Errorf("redis address is required")
			}
		default:
			return fmt.Errorf("unsupported cache backend %q", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	if len(config.Auth.JWTSecret) < 16 {
		return fmt.Errorf("jwt secret must be at least 16 characters")
	}
	if config.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid token ttl")
	}

	return nil
}
