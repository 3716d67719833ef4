package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logDir  = "logs"
	logFile = "ecocook.log"
)

var (
	// Logger 全局日誌實例，未初始化前為 no-op
	Logger = zap.NewNop()
	// LogMode 為 concise 時只輸出請求摘要與生命週期訊息
	LogMode string

	conciseMessages = map[string]bool{
		"請求完成":                    true,
		"啟動應用":                    true,
		"Recipe cooked":           true,
		"Recipes imported":        true,
		"Server exited":           true,
		"Shutting down server...": true,
	}

	// 名稱包含這些字的欄位不寫入日誌
	sensitiveKeys = []string{"password", "token", "secret", "authorization"}
)

func encoderConfig(levelEncoder zapcore.LevelEncoder) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.CallerKey = zapcore.OmitKey
	cfg.StacktraceKey = zapcore.OmitKey
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	cfg.EncodeLevel = levelEncoder
	return cfg
}

// ParseLevel 將字串轉為日誌級別，未知值視為 info
func ParseLevel(logLevel string) zapcore.Level {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(logLevel)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// InitLogger 初始化日誌系統：JSON 寫入 logs/ecocook.log，彩色文字輸出至終端
func InitLogger(logLevel string) error {
	level := ParseLevel(logLevel)

	// LOG_MODE 需在 .env 載入後讀取
	LogMode = os.Getenv("LOG_MODE")

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(filepath.Join(logDir, logFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig(zapcore.CapitalLevelEncoder)), zapcore.AddSync(file), level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig(zapcore.CapitalColorLevelEncoder)), zapcore.Lock(os.Stdout), level),
	)
	Logger = zap.New(core, zap.AddCallerSkip(1), zap.Fields(zap.String("service", "ecocook")))
	zap.ReplaceGlobals(Logger)
	return nil
}

func filterFields(fields []zap.Field) []zap.Field {
	filtered := fields[:0:0]
	for _, field := range fields {
		if !isSensitive(field.Key) {
			filtered = append(filtered, field)
		}
	}
	return filtered
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

// LogInfo 記錄信息日誌
func LogInfo(msg string, fields ...zap.Field) {
	if LogMode == "concise" && !conciseMessages[msg] {
		return
	}
	Logger.Info(msg, filterFields(fields)...)
}

func LogError(msg string, fields ...zap.Field) {
	Logger.Error(msg, filterFields(fields)...)
}

func LogWarn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, filterFields(fields)...)
}

func LogDebug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, filterFields(fields)...)
}

// LogFatal 記錄後結束程序
func LogFatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, filterFields(fields)...)
}

// Sync 同步日誌緩衝
func Sync() {
	_ = Logger.Sync()
}
