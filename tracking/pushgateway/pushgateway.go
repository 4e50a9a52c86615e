// Package pushgateway records runs to a Prometheus Pushgateway.
//
// Every metric becomes a gauge named <namespace>_<metric>. Parameters are
// attached as labels of a single <namespace>_run_info gauge with value 1.
// The push is grouped by run_id, so each run replaces only its own group.
package pushgateway

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/hemajv/insights-clustering/tracking"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultJob is the job label used when none is configured.
const DefaultJob = "cluster_stability"

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "stability"

// Sink pushes runs to a Pushgateway.
type Sink struct {
	url       string
	job       string
	namespace string
}

// New creates a Sink for the Pushgateway at url. Empty job and namespace
// take the defaults.
func New(url, job, namespace string) *Sink {
	if job == "" {
		job = DefaultJob
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Sink{url: url, job: job, namespace: namespace}
}

// Registry builds a registry holding the gauges for run.
func (s *Sink) Registry(run *tracking.Run) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	labels := prometheus.Labels{"experiment": run.Experiment}
	for _, p := range run.Params() {
		labels[SanitizeName(p.Key)] = p.Value
	}
	info := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   s.namespace,
		Name:        "run_info",
		Help:        "Parameters of a stability run.",
		ConstLabels: labels,
	})
	info.Set(1)
	if err := reg.Register(info); err != nil {
		return nil, fmt.Errorf("pushgateway: register run_info: %w", err)
	}

	for _, m := range run.Metrics() {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: s.namespace,
			Name:      SanitizeName(m.Key),
			Help:      "Stability run metric " + m.Key + ".",
		})
		g.Set(m.Value)
		if err := reg.Register(g); err != nil {
			return nil, fmt.Errorf("pushgateway: register %s: %w", m.Key, err)
		}
	}
	return reg, nil
}

// Record implements tracking.Sink.
func (s *Sink) Record(ctx context.Context, run *tracking.Run) error {
	reg, err := s.Registry(run)
	if err != nil {
		return err
	}
	err = push.New(s.url, s.job).
		Gatherer(reg).
		Grouping("run_id", run.ID).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("pushgateway: push run %s: %w", run.ID, err)
	}
	return nil
}

// SanitizeName maps a tracking name to a valid Prometheus metric or label
// name: lower case, with every run of other characters replaced by '_'.
func SanitizeName(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore {
			b.WriteByte('_')
			underscore = true
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "unnamed"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}
