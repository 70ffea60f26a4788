// Package ctxlog carries a *slog.Logger through a context.Context so that
// deep call sites (discovery probes, transport retries) can log without
// threading a logger parameter through every signature.
package ctxlog

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithLogger returns a new context with the given logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext retrieves the logger from the context. Falls back to
// slog.Default() when none was attached, so library code can always log.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
