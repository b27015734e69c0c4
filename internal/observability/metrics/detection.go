// Package metrics provides custom Prometheus metrics for the CropGuard-Go application.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// DetectionMetrics contains all Prometheus metrics related to disease detection.
type DetectionMetrics struct {
	DetectionCounter  *prometheus.CounterVec
	DetectionDuration *prometheus.HistogramVec
	DetectionErrors   *prometheus.CounterVec

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	ConfidenceHistogram prometheus.Histogram

	registry *prometheus.Registry
}

// NewDetectionMetrics creates a new instance of DetectionMetrics.
// It requires a Prometheus registry to register the metrics.
func NewDetectionMetrics(registry *prometheus.Registry) (*DetectionMetrics, error) {
	m := &DetectionMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize detection metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register detection metrics: %w", err)
	}
	return m, nil
}

func (m *DetectionMetrics) initMetrics() error {
	m.DetectionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropguard_detections",
			Help: "Total number of disease detections partitioned by disease name.",
		},
		[]string{"disease"},
	)

	m.DetectionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cropguard_detection_duration_seconds",
			Help:    "Time taken to run a detection end to end.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"source"}, // "cache" or "classifier"
	)

	m.DetectionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropguard_detection_errors",
			Help: "Total number of failed detection requests partitioned by stage.",
		},
		[]string{"stage"},
	)

	m.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cropguard_detection_cache_hits",
			Help: "Total number of detection responses served from the cache.",
		},
	)

	m.CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cropguard_detection_cache_misses",
			Help: "Total number of detection requests that ran the classifier.",
		},
	)

	m.ConfidenceHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cropguard_detection_confidence",
			Help:    "Distribution of classifier confidence scores.",
			Buckets: prometheus.LinearBuckets(0.0, 0.1, 10),
		},
	)

	return nil
}

// RecordDetection records a completed detection.
func (m *DetectionMetrics) RecordDetection(disease, source string, durationSeconds, confidence float64) {
	m.DetectionCounter.WithLabelValues(disease).Inc()
	m.DetectionDuration.WithLabelValues(source).Observe(durationSeconds)
	m.ConfidenceHistogram.Observe(confidence)
}

// RecordError records a failed detection request at a given pipeline stage.
func (m *DetectionMetrics) RecordError(stage string) {
	m.DetectionErrors.WithLabelValues(stage).Inc()
}

// RecordCacheHit records a detection served from the response cache.
func (m *DetectionMetrics) RecordCacheHit() {
	m.CacheHits.Inc()
}

// RecordCacheMiss records a detection that had to run the classifier.
func (m *DetectionMetrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *DetectionMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.DetectionCounter.Describe(ch)
	m.DetectionDuration.Describe(ch)
	m.DetectionErrors.Describe(ch)
	ch <- m.CacheHits.Desc()
	ch <- m.CacheMisses.Desc()
	ch <- m.ConfidenceHistogram.Desc()
}

// Collect implements the prometheus.Collector interface.
func (m *DetectionMetrics) Collect(ch chan<- prometheus.Metric) {
	m.DetectionCounter.Collect(ch)
	m.DetectionDuration.Collect(ch)
	m.DetectionErrors.Collect(ch)
	ch <- m.CacheHits
	ch <- m.CacheMisses
	ch <- m.ConfidenceHistogram
}
