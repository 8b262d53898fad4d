package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "geo_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// position pipeline and the conversion API.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  *prometheus.CounterVec // labels: kind={NullInput,InvalidFormat,MalformedRecord,other}
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Normalization cache metrics.
	NormalizeCache        *prometheus.CounterVec // labels: result={hit,miss}
	NormalizeCacheEnabled prometheus.Gauge

	// HTTP conversion endpoints.
	ConversionRequests *prometheus.CounterVec // labels: operation={parse,format,normalize,decode}, outcome={success,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total messages written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total rejected position records by coordinate error kind.",
		}, []string{"kind"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		NormalizeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_cache_total",
			Help:      "Normalization cache lookups by result.",
		}, []string{"result"}),
		NormalizeCacheEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "normalize_cache_enabled",
			Help:      "1 when the normalization cache is enabled, 0 otherwise.",
		}),
		ConversionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversion_requests_total",
			Help:      "HTTP conversion requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.NormalizeCache,
		m.NormalizeCacheEnabled,
		m.ConversionRequests,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MessagesConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_consumed_total"}),
		MessagesProduced:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_produced_total"}),
		TransformErrors:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "transform_errors_total"}, []string{"kind"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_processing_duration_seconds"}),
		NormalizeCache:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "normalize_cache_total"}, []string{"result"}),
		NormalizeCacheEnabled:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "normalize_cache_enabled"}),
		ConversionRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "conversion_requests_total"}, []string{"operation", "outcome"}),
	}
}
