package boolgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with boolgo-specific context.
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

// LogUpdate logs a batch indexing operation.
func (l *Logger) LogUpdate(ctx context.Context, total, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "update completed with failures",
			"total", total,
			"failed", failed,
			"indexed", total-failed,
		)
	} else {
		l.DebugContext(ctx, "update completed",
			"count", total,
		)
	}
}

// LogRemove logs a single-record removal.
func (l *Logger) LogRemove(ctx context.Context, identifier string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"identifier", identifier,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"identifier", identifier,
		)
	}
}

// LogClear logs a bulk clear operation.
func (l *Logger) LogClear(ctx context.Context, types []string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "clear failed",
			"types", types,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "clear completed",
			"types", types,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, query string, hits int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"query", query,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"query", query,
			"hits", hits,
		)
	}
}

// LogMoreLikeThis logs a similarity search.
func (l *Logger) LogMoreLikeThis(ctx context.Context, identifier string, hits int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "more like this failed",
			"identifier", identifier,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "more like this completed",
			"identifier", identifier,
			"hits", hits,
		)
	}
}

// LogBackup logs a backup operation.
func (l *Logger) LogBackup(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "backup failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "backup completed",
			"name", name,
		)
	}
}

// LogRestore logs a restore operation.
func (l *Logger) LogRestore(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "restore completed",
			"name", name,
		)
	}
}
