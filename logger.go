package tsdb

import (
	"context"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
)

// Logger wraps slog.Logger with tsdb-specific context.
// This provides structured logging with consistent field names across the
// writer pipeline, column growth, and queries.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses the default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable
	})
	return &Logger{Logger: slog.New(handler)}
}

// WithPath adds a database directory field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{Logger: l.Logger.With("path", path)}
}

// WithCount adds a row count field to the logger.
func (l *Logger) WithCount(count uint64) *Logger {
	return &Logger{Logger: l.Logger.With("count", count)}
}

// LogOpen logs a database open.
func (l *Logger) LogOpen(ctx context.Context, path string, rows uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed", "path", path, "error", err)
		return
	}
	l.InfoContext(ctx, "database opened", "path", path, "rows", rows)
}

// LogAppend logs an enqueued tick append.
func (l *Logger) LogAppend(ctx context.Context, timestamp uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "append failed", "timestamp", timestamp, "error", err)
		return
	}
	l.DebugContext(ctx, "tick enqueued", "timestamp", timestamp)
}

// LogWriterBatch logs a batch drained and committed by the background
// writer.
func (l *Logger) LogWriterBatch(ctx context.Context, n int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "writer batch failed", "batch_size", n, "error", err)
		return
	}
	l.DebugContext(ctx, "writer batch committed", "batch_size", n)
}

// LogGrowth logs a column growth event, sized with human-readable units
// for operators scanning logs by eye.
func (l *Logger) LogGrowth(ctx context.Context, column string, newCapacityBytes uint64) {
	l.InfoContext(ctx, "column grown",
		"column", column,
		"new_capacity", humanize.Bytes(newCapacityBytes),
	)
}

// LogSync logs a Sync call.
func (l *Logger) LogSync(ctx context.Context, pending int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sync failed", "pending", pending, "error", err)
		return
	}
	l.DebugContext(ctx, "sync completed", "pending", pending)
}

// LogQuery logs a range query.
func (l *Logger) LogQuery(ctx context.Context, lo, hi uint64, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed", "lo", lo, "hi", hi, "error", err)
		return
	}
	l.DebugContext(ctx, "query completed", "lo", lo, "hi", hi, "results", results)
}

// LogClose logs a database close.
func (l *Logger) LogClose(ctx context.Context, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed", "error", err)
		return
	}
	l.InfoContext(ctx, "database closed")
}
