// Package logging wraps log/slog with the field names used across persist.
package logging

import (
	"context"
	"log/slog"
	"os"
	"reflect"
)

// Logger wraps slog.Logger with persist-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler writing to stderr at info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

var noop = &Logger{Logger: slog.New(slog.DiscardHandler)}

// NoopLogger returns a Logger that discards all output.
func NoopLogger() *Logger {
	return noop
}

// OrNoop returns l, or the discarding logger when l is nil.
func OrNoop(l *Logger) *Logger {
	if l == nil {
		return noop
	}

	return l
}

// WithComponent tags every record with the emitting package.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With("component", name)}
}

// LogSchemaBuilt records a schema entering the process-wide cache.
func (l *Logger) LogSchemaBuilt(ctx context.Context, typ reflect.Type, kind string, members int, fingerprint uint64) {
	l.DebugContext(ctx, "schema built",
		"type", typ.String(),
		"kind", kind,
		"members", members,
		"fingerprint", fingerprint,
	)
}

// LogNativeFallback records a numeric column stored at native width.
func (l *Logger) LogNativeFallback(ctx context.Context, elem string, count int, reason error) {
	l.DebugContext(ctx, "numeric column stored natively",
		"elem", elem,
		"count", count,
		"reason", reason,
	)
}

// LogBlock records a column block write or read.
func (l *Logger) LogBlock(ctx context.Context, op string, columns int, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "column block "+op+" failed",
			"columns", columns,
			"error", err,
		)

		return
	}
	l.DebugContext(ctx, "column block "+op,
		"columns", columns,
		"bytes", size,
	)
}

// LogStore records a store lifecycle event.
func (l *Logger) LogStore(ctx context.Context, op, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store "+op+" failed",
			"path", path,
			"error", err,
		)

		return
	}
	l.InfoContext(ctx, "store "+op,
		"path", path,
	)
}
