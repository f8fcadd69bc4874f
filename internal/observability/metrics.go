// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scan metrics
	ScansTotal      prometheus.Counter
	ScanDuration    prometheus.Histogram
	DetectorFirings *prometheus.CounterVec
	PrimaryAttacks  *prometheus.CounterVec

	// Snapshot metrics
	SnapshotsProduced *prometheus.CounterVec
	CacheHits         prometheus.Counter
	FallbackDepth     prometheus.Histogram
	SourceErrors      *prometheus.CounterVec

	// Subscriber metrics
	SubscriberReconnects prometheus.Counter
	BufferedRecords      prometheus.Gauge

	// Storage metrics
	RecordWriteErrors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "mev_sentinel"
	}

	return &Metrics{
		ScansTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "scans_total",
			Help:      "Total number of risk scans performed",
		}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "End-to-end scan latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		DetectorFirings: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "detector_firings_total",
			Help:      "Total number of positive detections by pattern",
		}, []string{"pattern"}),
		PrimaryAttacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "primary_attacks_total",
			Help:      "Total number of scans by primary attack classification",
		}, []string{"attack_type"}),

		SnapshotsProduced: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "produced_total",
			Help:      "Total number of snapshots produced by source",
		}, []string{"source"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "cache_hits_total",
			Help:      "Total number of freshness cache hits",
		}),
		FallbackDepth: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "fallback_depth",
			Help:      "How far down the strategy chain each snapshot came from (1 = live stream)",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
		SourceErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "source_errors_total",
			Help:      "Total number of strategy failures by source",
		}, []string{"source"}),

		SubscriberReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscriber",
			Name:      "reconnects_total",
			Help:      "Total number of stream reconnect attempts",
		}),
		BufferedRecords: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "subscriber",
			Name:      "buffered_records",
			Help:      "Current number of records in the pending swap buffer",
		}),

		RecordWriteErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "write_errors_total",
			Help:      "Total number of best-effort persistence failures by store",
		}, []string{"store"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScan records one completed scan.
func RecordScan(seconds float64) {
	DefaultMetrics.ScansTotal.Inc()
	DefaultMetrics.ScanDuration.Observe(seconds)
}

// RecordDetectorFiring increments the positive detection counter for a pattern.
func RecordDetectorFiring(pattern string) {
	DefaultMetrics.DetectorFirings.WithLabelValues(pattern).Inc()
}

// RecordPrimaryAttack increments the classification counter.
func RecordPrimaryAttack(attackType string) {
	DefaultMetrics.PrimaryAttacks.WithLabelValues(attackType).Inc()
}

// RecordSnapshot records a produced snapshot and its fallback depth
// (1-based strategy index).
func RecordSnapshot(source string, depth int) {
	DefaultMetrics.SnapshotsProduced.WithLabelValues(source).Inc()
	DefaultMetrics.FallbackDepth.Observe(float64(depth))
}

// RecordCacheHit increments the freshness cache hit counter.
func RecordCacheHit() {
	DefaultMetrics.CacheHits.Inc()
}

// RecordSourceError increments the strategy failure counter.
func RecordSourceError(source string) {
	DefaultMetrics.SourceErrors.WithLabelValues(source).Inc()
}

// RecordReconnect increments the subscriber reconnect counter.
func RecordReconnect() {
	DefaultMetrics.SubscriberReconnects.Inc()
}

// UpdateBufferedRecords updates the buffer gauge.
func UpdateBufferedRecords(n int) {
	DefaultMetrics.BufferedRecords.Set(float64(n))
}

// RecordWriteError increments the persistence failure counter.
func RecordWriteError(store string) {
	DefaultMetrics.RecordWriteErrors.WithLabelValues(store).Inc()
}
