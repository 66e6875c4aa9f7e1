package wordvec

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with wordvec-specific context.
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

// LogDetect logs a format detection outcome.
func (l *Logger) LogDetect(ctx context.Context, name string, format string) {
	l.DebugContext(ctx, "format detected",
		"name", name,
		"format", format,
	)
}

// LogLoad logs a load operation.
func (l *Logger) LogLoad(ctx context.Context, name string, words, dimension int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "load completed",
			"name", name,
			"words", words,
			"dimension", dimension,
			"duration", duration,
		)
	}
}

// LogClusters logs a cluster-file load operation.
func (l *Logger) LogClusters(ctx context.Context, name string, words, clusters int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "clusters load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "clusters loaded",
			"name", name,
			"words", words,
			"clusters", clusters,
		)
	}
}

// LogSearch logs a similarity search operation.
func (l *Logger) LogSearch(ctx context.Context, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogSnapshot logs a snapshot save or load operation.
func (l *Logger) LogSnapshot(ctx context.Context, op string, words int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"op", op,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot completed",
			"op", op,
			"words", words,
		)
	}
}
