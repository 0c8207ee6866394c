// Package log 保存 SDK 使用的全局 zap logger。
package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     *zap.Logger
	loggerLock sync.RWMutex
	initOnce   sync.Once
)

// SetLogger 替换 SDK 的全局 logger，传入 nil 表示关闭日志
func SetLogger(l *zap.Logger) {
	initOnce.Do(func() {})
	if l == nil {
		l = zap.NewNop()
	}
	loggerLock.Lock()
	logger = l
	loggerLock.Unlock()
}

// Logger 返回当前的全局 logger
//
// 默认不输出任何日志；设置环境变量 ROOTNROLL_DEBUG=true 时使用开发模式的 logger
func Logger() *zap.Logger {
	initOnce.Do(func() {
		loggerLock.Lock()
		defer loggerLock.Unlock()
		if logger == nil {
			logger = defaultLogger()
		}
	})
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger
}

// New 构建开发或生产模式的 logger
func New(development bool) (*zap.Logger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	return cfg.Build()
}
