// Package logging builds the zap logger the rest of the bridge shares,
// following the same development-logger-with-nop-fallback pattern the
// teacher uses around its own jsonrpc2 connection.
package logging

import "go.uber.org/zap"

// New builds a development zap logger, falling back to a no-op logger if
// construction fails (stderr unavailable, etc.) so a logging failure
// never prevents the session from starting.
func New() *zap.Logger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// NewProduction builds a production (JSON-encoded) zap logger for
// non-interactive deployments, with the same nop fallback.
func NewProduction() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
