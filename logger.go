package libosmium

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with consistent field names for index storage
// operations.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. A nil handler falls
// back to a text handler on stderr at Info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger emitting JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithSnapshot adds the snapshot blob name to the logger.
func (l *Logger) WithSnapshot(name string) *Logger {
	return &Logger{Logger: l.Logger.With("snapshot", name)}
}

// LogSave logs the outcome of a snapshot upload.
func (l *Logger) LogSave(ctx context.Context, name string, elements int, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"snapshot", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot saved",
		"snapshot", name,
		"elements", elements,
		"bytes", bytes,
	)
}

// LogLoad logs the outcome of a snapshot download.
func (l *Logger) LogLoad(ctx context.Context, name string, elements int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"snapshot", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot loaded",
		"snapshot", name,
		"elements", elements,
	)
}
