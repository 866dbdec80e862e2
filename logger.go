package lexibase

import (
	"context"
	"log/slog"
	"os"

	"github.com/lexibase/lexibase/entry"
)

// Logger wraps slog.Logger with lexibase-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogAcquire logs an entry acquisition.
func (l *Logger) LogAcquire(ctx context.Context, ref entry.Ref, err error) {
	if err != nil {
		l.ErrorContext(ctx, "acquire failed",
			"kind", int(ref.Kind),
			"id", ref.ID,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "acquire completed",
			"kind", int(ref.Kind),
			"id", ref.ID,
		)
	}
}

// LogEvict logs the destruction of a retained record.
func (l *Logger) LogEvict(ref entry.Ref) {
	l.Debug("entry evicted",
		"kind", int(ref.Kind),
		"id", ref.ID,
	)
}

// LogCompile logs a search compilation.
func (l *Logger) LogCompile(ctx context.Context, tokens, predicates, unhandled int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search compilation failed",
			"tokens", tokens,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search compiled",
			"tokens", tokens,
			"predicates", predicates,
			"unhandled", unhandled,
		)
	}
}

// LogCacheResize logs a runtime cache-capacity change.
func (l *Logger) LogCacheResize(size int) {
	l.Info("cache capacity changed",
		"capacity", size,
	)
}
