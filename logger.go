package clustering

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Logger wraps slog.Logger with stability-specific context.
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
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTerminalLogger creates a colorized Logger for interactive terminals.
// Timestamps are omitted and source locations are shown at debug level.
func NewTerminalLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(tint.NewHandler(w, &tint.Options{
		AddSource: level <= slog.LevelDebug,
		Level:     level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// NewAutoLogger picks the terminal logger when f is a terminal and the text
// logger otherwise.
func NewAutoLogger(f *os.File, level slog.Level) *Logger {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return NewTerminalLogger(f, level)
	}
	return NewTextLogger(f, level)
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithRunID adds a run id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithObservation adds an observation field to the logger.
func (l *Logger) WithObservation(observation string) *Logger {
	return &Logger{
		Logger: l.Logger.With("observation", observation),
	}
}

// LogDay logs the outcome of one day's pipeline.
func (l *Logger) LogDay(ctx context.Context, observation string, res *DayResult, err error) {
	if err != nil {
		l.ErrorContext(ctx, "day pipeline failed",
			"observation", observation,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "day clustered",
		"observation", observation,
		"rows", res.Rows,
		"features", res.Features,
		"inertia", res.Inertia,
		"silhouette", res.Silhouette,
	)
}

// LogComparison logs the outcome of comparing two days.
func (l *Logger) LogComparison(ctx context.Context, cmp *Comparison, err error) {
	if err != nil {
		l.ErrorContext(ctx, "comparison failed",
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "days compared",
		"shared", cmp.Shared,
		"stability", cmp.Stability,
		"total_mismatch", cmp.Alignment.TotalMismatch,
		"adjusted_rand", cmp.AdjustedRand,
	)
}

// LogDropped warns about rows whose label is outside the cluster range.
func (l *Logger) LogDropped(ctx context.Context, e *LabelRangeError) {
	l.WarnContext(ctx, "labels outside cluster range",
		"observation", e.Observation,
		"k", e.K,
		"count", len(e.Labels),
	)
}
