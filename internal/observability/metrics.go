// Package observability provides Prometheus metrics for the measurement
// pipeline. All helpers are nil-safe so library code and tests can pass a
// nil *Metrics without guards.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	framesSampled     prometheus.Counter
	detectionsDecoded prometheus.Counter
	recordsSynced     prometheus.Counter
	syncFailures      prometheus.Counter
	inferenceDuration prometheus.Histogram
}

// NewMetrics creates and registers the pipeline metrics.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.framesSampled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shrimpscale_frames_sampled_total",
		Help: "Number of frames pulled from the frame source",
	})
	m.detectionsDecoded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shrimpscale_detections_decoded_total",
		Help: "Number of detection boxes surviving decode",
	})
	m.recordsSynced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shrimpscale_records_synced_total",
		Help: "Number of records confirmed written to the remote store",
	})
	m.syncFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shrimpscale_sync_failures_total",
		Help: "Number of failed sync attempts",
	})
	m.inferenceDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "shrimpscale_inference_duration_seconds",
		Help:    "Model inference duration",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	m.registry.MustRegister(
		m.framesSampled,
		m.detectionsDecoded,
		m.recordsSynced,
		m.syncFailures,
		m.inferenceDuration,
	)
	return m
}

// Registry returns the underlying registry for exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// IncFramesSampled increments the sampled frame counter.
func (m *Metrics) IncFramesSampled() {
	if m == nil {
		return
	}
	m.framesSampled.Inc()
}

// AddDetections adds to the decoded detection counter.
func (m *Metrics) AddDetections(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.detectionsDecoded.Add(float64(n))
}

// AddRecordsSynced adds to the synced record counter.
func (m *Metrics) AddRecordsSynced(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recordsSynced.Add(float64(n))
}

// IncSyncFailures increments the sync failure counter.
func (m *Metrics) IncSyncFailures() {
	if m == nil {
		return
	}
	m.syncFailures.Inc()
}

// ObserveInference records one inference duration in seconds.
func (m *Metrics) ObserveInference(seconds float64) {
	if m == nil {
		return
	}
	m.inferenceDuration.Observe(seconds)
}
