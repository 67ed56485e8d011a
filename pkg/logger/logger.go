// Package logger constructs the zap.Logger shared by every openrank-go
// service and command.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls the constructed logger's verbosity and encoding.
type Config struct {
	// Debug enables debug-level logging and a human-readable console
	// encoder. When false, the logger emits JSON at info level.
	Debug bool
}

// New builds a zap.Logger per cfg. Callers should defer Sync() on the
// result.
func New(cfg *Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg != nil && cfg.Debug {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: build: %w", err)
	}
	return l, nil
}
