// Package logging builds the application logger. The terminal belongs to the
// TUI, so logs go to a file or nowhere.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jask/triage/internal/config"
)

// New returns a JSON file logger at the configured level. An empty path
// yields a no-op logger.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Path == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir log dir: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level(cfg.Level))
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{cfg.Path}
	zc.ErrorOutputPaths = []string{cfg.Path}
	zc.Sampling = nil

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func level(s string) zapcore.Level {
	switch s {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
