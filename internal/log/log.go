// Package log provides a minimal factory for structured slog loggers.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"

	slogcontext "github.com/veqryn/slog-context"
)

// New creates a [slog.Logger] that writes to stdout at the given level
// (one of "debug", "info", "warn", "error"; defaults to info).
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter is like [New] but writes to w. Attributes added to a
// context with slog-context's Append are included in every record logged
// with that context.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(slogcontext.NewHandler(h, nil))
}

// ParseLevel maps a level name to a [slog.Level], defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithLogger stores logger in ctx for retrieval by request-scoped code.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return slogcontext.NewCtx(ctx, logger)
}
