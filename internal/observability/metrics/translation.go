package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// TranslationMetrics contains all Prometheus metrics related to response translation.
type TranslationMetrics struct {
	TranslationCounter *prometheus.CounterVec
	ProviderDuration   prometheus.Histogram
	ProviderErrors     prometheus.Counter
	CatalogHits        prometheus.Counter
	PassthroughCounter prometheus.Counter

	registry *prometheus.Registry
}

// NewTranslationMetrics creates a new instance of TranslationMetrics.
func NewTranslationMetrics(registry *prometheus.Registry) (*TranslationMetrics, error) {
	m := &TranslationMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize translation metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register translation metrics: %w", err)
	}
	return m, nil
}

func (m *TranslationMetrics) initMetrics() error {
	m.TranslationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropguard_translations",
			Help: "Total number of translated detection responses partitioned by language.",
		},
		[]string{"language"},
	)

	m.ProviderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cropguard_translation_provider_duration_seconds",
			Help:    "Time taken by external translation provider calls.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
	)

	m.ProviderErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cropguard_translation_provider_errors",
			Help: "Total number of failed external translation provider calls.",
		},
	)

	m.CatalogHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cropguard_translation_catalog_hits",
			Help: "Total number of phrases resolved from the built-in catalog.",
		},
	)

	m.PassthroughCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cropguard_translation_passthrough",
			Help: "Total number of phrases returned untranslated.",
		},
	)

	return nil
}

// RecordTranslation records a detection response translated to a language.
func (m *TranslationMetrics) RecordTranslation(language string) {
	m.TranslationCounter.WithLabelValues(language).Inc()
}

// RecordProviderCall records the duration of an external provider call.
func (m *TranslationMetrics) RecordProviderCall(durationSeconds float64, err error) {
	if err != nil {
		m.ProviderErrors.Inc()
		return
	}
	m.ProviderDuration.Observe(durationSeconds)
}

// RecordCatalogHit records a phrase resolved from the built-in catalog.
func (m *TranslationMetrics) RecordCatalogHit() {
	m.CatalogHits.Inc()
}

// RecordPassthrough records a phrase returned untranslated.
func (m *TranslationMetrics) RecordPassthrough() {
	m.PassthroughCounter.Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *TranslationMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.TranslationCounter.Describe(ch)
	ch <- m.ProviderDuration.Desc()
	ch <- m.ProviderErrors.Desc()
	ch <- m.CatalogHits.Desc()
	ch <- m.PassthroughCounter.Desc()
}

// Collect implements the prometheus.Collector interface.
func (m *TranslationMetrics) Collect(ch chan<- prometheus.Metric) {
	m.TranslationCounter.Collect(ch)
	ch <- m.ProviderDuration
	ch <- m.ProviderErrors
	ch <- m.CatalogHits
	ch <- m.PassthroughCounter
}
