// Package logger carries the request-scoped slog.Logger through a context so
// layers below the HTTP handlers can log with the request's fields.
package logger

import (
	"context"
	"log/slog"
)

type contextKey string

// ContextKey stores the request-scoped *slog.Logger in a context.
const ContextKey = contextKey("logger")

func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ContextKey, l)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ContextKey).(*slog.Logger); ok && l != nil {
		return l
	}

	return slog.Default()
}
