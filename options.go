package clustering

import (
	"github.com/hemajv/insights-clustering/table"
)

// DefaultPrefix and DefaultParser locate a day's dataset at
// <prefix>/<observation>/<parser>/.
const (
	DefaultPrefix = "DH-DEV-INSIGHTS"
	DefaultParser = "rule_data"
)

type options struct {
	prefix           string
	parser           string
	layout           table.Layout
	clusterer        Clusterer
	metricsCollector MetricsCollector
	logger           *Logger
	sequential       bool
}

func defaultOptions() options {
	return options{
		prefix:           DefaultPrefix,
		parser:           DefaultParser,
		layout:           table.DefaultLayout(),
		clusterer:        KMeans{},
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a Pipeline or Runner.
type Option func(*options)

// WithPrefix sets the root prefix of the datasets in the store.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithParser sets the dataset name read under each observation.
func WithParser(parser string) Option {
	return func(o *options) {
		o.parser = parser
	}
}

// WithLayout sets the column layout of the feature tables.
func WithLayout(l table.Layout) Option {
	return func(o *options) {
		o.layout = l
	}
}

// WithClusterer replaces the default k-means clusterer.
//
// If nil is passed, KMeans{} is used.
func WithClusterer(c Clusterer) Option {
	return func(o *options) {
		if c == nil {
			c = KMeans{}
		}
		o.clusterer = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &clustering.BasicMetricsCollector{}
//	p, _ := clustering.NewPipeline(store, 3, 2, clustering.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithSequentialDays makes the Runner process the two days one after the
// other instead of concurrently.
func WithSequentialDays() Option {
	return func(o *options) {
		o.sequential = true
	}
}
