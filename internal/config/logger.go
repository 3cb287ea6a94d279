package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the production JSON logger at LOG_LEVEL. Verbose
// switches to the human readable development encoder.
func NewLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	level, err := zapcore.ParseLevel(LogLevel())
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", LogLevel(), err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
