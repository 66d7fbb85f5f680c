// Package logger wraps log/slog with a request-scoped logger carried in the
// context, so handler and workflow log lines share the request id:
//
//	log := logger.FromCtx(ctx)
//	log.Info("order confirmed", "order_number", o.Number)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

var base = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

// Init replaces the base logger. Production gets JSON lines for aggregators,
// everything else a human-readable text handler.
func Init(env string) *slog.Logger {
	var h slog.Handler
	switch env {
	case "production", "prod":
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	base = slog.New(h)
	slog.SetDefault(base)
	return base
}

// Discard silences all logging. Used by tests.
func Discard() {
	base = slog.New(slog.NewTextHandler(io.Discard, nil))
	slog.SetDefault(base)
}

// L returns the base logger.
func L() *slog.Logger { return base }

type ctxKey struct{}

// FromCtx returns the logger stored by Inject, or the base logger.
func FromCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return base
}

// Inject stores a pre-tagged logger into ctx.
func Inject(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
