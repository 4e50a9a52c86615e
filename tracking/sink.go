package tracking

import (
	"context"
	"log/slog"
	"sync"
)

// Sink delivers a completed run to a tracking backend.
type Sink interface {
	Record(ctx context.Context, run *Run) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, run *Run) error

// Record calls f.
func (f SinkFunc) Record(ctx context.Context, run *Run) error {
	return f(ctx, run)
}

// LogSink writes each run as one structured log line.
type LogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSink creates a LogSink. A nil logger uses slog.Default.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger, level: slog.LevelInfo}
}

// Record implements Sink.
func (s *LogSink) Record(ctx context.Context, run *Run) error {
	params := make([]any, 0, len(run.params))
	for _, p := range run.params {
		params = append(params, slog.String(p.Key, p.Value))
	}
	metrics := make([]any, 0, len(run.metrics))
	for _, m := range run.metrics {
		metrics = append(metrics, slog.Float64(m.Key, m.Value))
	}
	s.logger.Log(ctx, s.level, "run recorded",
		slog.String("run_id", run.ID),
		slog.String("experiment", run.Experiment),
		slog.Group("params", params...),
		slog.Group("metrics", metrics...),
	)
	return nil
}

// MemorySink keeps recorded runs in memory.
type MemorySink struct {
	mu   sync.Mutex
	runs []*Run
	// Err, when set, is returned by Record instead of storing the run.
	Err error
}

// Record implements Sink.
func (s *MemorySink) Record(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.runs = append(s.runs, run)
	return nil
}

// Runs returns the recorded runs.
func (s *MemorySink) Runs() []*Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Run(nil), s.runs...)
}

// Tee records to each sink in order and stops at the first error; later
// sinks only see runs that every earlier sink accepted.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, run *Run) error {
		for _, s := range sinks {
			if err := s.Record(ctx, run); err != nil {
				return err
			}
		}
		return nil
	})
}
