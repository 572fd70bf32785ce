package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 日志配置
type Config struct {
	Level       string // debug, info, warn, error
	Development bool   // true: console 输出, false: json 输出
	CallerSkip  int
}

// DefaultConfig 默认日志配置
func DefaultConfig() Config {
	cfg := Config{
		Level:       "info",
		Development: true,
		CallerSkip:  1,
	}
	if os.Getenv("GIN_MODE") == "release" {
		cfg.Development = false
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.Level = lvl
	}
	return cfg
}

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()
)

// Init 初始化全局日志
func Init(cfg Config) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zcfg.Level = level

	l, err := zcfg.Build(zap.AddCallerSkip(cfg.CallerSkip))
	if err != nil {
		l = zap.NewExample()
	}

	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()
}

// Sync 刷新缓冲
func Sync() {
	_ = get().Sync()
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debug(msg string, keysAndValues ...interface{}) {
	get().Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...interface{}) {
	get().Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	get().Warnw(msg, keysAndValues...)
}

// Error 记录错误日志, err 以 "error" 字段输出
func Error(msg string, err error, keysAndValues ...interface{}) {
	kv := make([]interface{}, 0, len(keysAndValues)+2)
	kv = append(kv, "error", err)
	kv = append(kv, keysAndValues...)
	get().Errorw(msg, kv...)
}

// Fatal 记录错误并退出
func Fatal(msg string, err error, keysAndValues ...interface{}) {
	kv := make([]interface{}, 0, len(keysAndValues)+2)
	kv = append(kv, "error", err)
	kv = append(kv, keysAndValues...)
	get().Fatalw(msg, kv...)
}
