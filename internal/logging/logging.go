// Package logging constructs the CLI debug logger.
package logging

import (
	"go.uber.org/zap"
)

// New returns a development console logger on stderr when debug is
// enabled, and a no-op logger otherwise. Callers always get a usable
// logger and never check for nil.
func New(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
