package clustering

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    loadHistogram prometheus.Histogram
//	    failures      prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordLoad(rows int, duration time.Duration, err error) {
//	    p.loadHistogram.Observe(duration.Seconds())
//	    // ... record error state, row count, etc.
//	}
type MetricsCollector interface {
	// RecordLoad is called after a day's tables are read and decoded.
	// rows is the number of rows read, err is nil if successful.
	RecordLoad(rows int, duration time.Duration, err error)

	// RecordCluster is called after preprocessing and clustering one day.
	RecordCluster(k int, duration time.Duration, err error)

	// RecordCompare is called after two days are compared.
	// shared is the size of the shared universe.
	RecordCompare(shared int, duration time.Duration, err error)

	// RecordTrack is called after a run is handed to the tracking sink.
	RecordTrack(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordCluster(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCompare(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordTrack(time.Duration, error)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount       atomic.Int64
	LoadErrors      atomic.Int64
	LoadRows        atomic.Int64
	LoadTotalNanos  atomic.Int64
	ClusterCount    atomic.Int64
	ClusterErrors   atomic.Int64
	ClusterNanos    atomic.Int64
	CompareCount    atomic.Int64
	CompareErrors   atomic.Int64
	CompareShared   atomic.Int64
	TrackCount      atomic.Int64
	TrackErrors     atomic.Int64
	TrackTotalNanos atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(rows int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadRows.Add(int64(rows))
}

// RecordCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCluster(_ int, duration time.Duration, err error) {
	b.ClusterCount.Add(1)
	b.ClusterNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ClusterErrors.Add(1)
	}
}

// RecordCompare implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompare(shared int, _ time.Duration, err error) {
	b.CompareCount.Add(1)
	if err != nil {
		b.CompareErrors.Add(1)
		return
	}
	b.CompareShared.Add(int64(shared))
}

// RecordTrack implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrack(duration time.Duration, err error) {
	b.TrackCount.Add(1)
	b.TrackTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrackErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:       b.LoadCount.Load(),
		LoadErrors:      b.LoadErrors.Load(),
		LoadRows:        b.LoadRows.Load(),
		LoadAvgNanos:    avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		ClusterCount:    b.ClusterCount.Load(),
		ClusterErrors:   b.ClusterErrors.Load(),
		ClusterAvgNanos: avg(b.ClusterNanos.Load(), b.ClusterCount.Load()),
		CompareCount:    b.CompareCount.Load(),
		CompareErrors:   b.CompareErrors.Load(),
		CompareShared:   b.CompareShared.Load(),
		TrackCount:      b.TrackCount.Load(),
		TrackErrors:     b.TrackErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount       int64
	LoadErrors      int64
	LoadRows        int64
	LoadAvgNanos    int64
	ClusterCount    int64
	ClusterErrors   int64
	ClusterAvgNanos int64
	CompareCount    int64
	CompareErrors   int64
	CompareShared   int64
	TrackCount      int64
	TrackErrors     int64
}
