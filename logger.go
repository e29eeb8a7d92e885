package geodesic

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with geodesic-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithLevel adds a subdivision level field to the logger.
func (l *Logger) WithLevel(level int) *Logger {
	return &Logger{
		Logger: l.Logger.With("level", level),
	}
}

// WithZone adds a zone id field to the logger.
func (l *Logger) WithZone(zone int) *Logger {
	return &Logger{
		Logger: l.Logger.With("zone", zone),
	}
}

// LogBuild logs the construction of a grid.
func (l *Logger) LogBuild(ctx context.Context, maxLevel, nodes int, d time.Duration) {
	l.InfoContext(ctx, "geodesic grid built",
		"max_level", maxLevel,
		"nodes", nodes,
		"duration", d,
	)
}

// LogSearch logs a region search.
func (l *Logger) LogSearch(ctx context.Context, maxSearchLevel, halfSpaces, inside, border int, d time.Duration) {
	l.DebugContext(ctx, "region search completed",
		"max_search_level", maxSearchLevel,
		"half_spaces", halfSpaces,
		"inside", inside,
		"border", border,
		"duration", d,
	)
}

// LogLookupFailure logs a rejected point lookup.
func (l *Logger) LogLookupFailure(ctx context.Context, level int, err error) {
	l.WarnContext(ctx, "point lookup rejected",
		"level", level,
		"error", err,
	)
}
