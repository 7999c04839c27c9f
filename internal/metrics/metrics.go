package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for ShippingTaxCalculations.
const (
	OutcomeAllocated   = "allocated"
	OutcomePassthrough = "passthrough"
	OutcomeInvalid     = "invalid"
	OutcomeError       = "error"
)

// Metrics holds the shipping tax Prometheus collectors.
type Metrics struct {
	// ShippingTaxCalculations counts filter invocations.
	// Labels: outcome
	ShippingTaxCalculations *prometheus.CounterVec

	// ShippingTaxDuration tracks end-to-end calculation latency.
	ShippingTaxDuration prometheus.Histogram

	// AllocatedBuckets tracks how many tax classes share a shipping price.
	AllocatedBuckets prometheus.Histogram

	// RateCacheInvalidations counts tax rate cache flushes.
	// Labels: source (api, event)
	RateCacheInvalidations *prometheus.CounterVec

	// EventPublishFailures counts events that could not be written to Kafka.
	EventPublishFailures prometheus.Counter
}

// NewMetrics registers the collectors with registry, or the default
// registerer when registry is nil.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		ShippingTaxCalculations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipping_tax_calculations_total",
				Help: "Total number of shipping tax calculations by outcome",
			},
			[]string{"outcome"},
		),

		ShippingTaxDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shipping_tax_calculation_duration_seconds",
				Help:    "Duration of shipping tax calculations",
				Buckets: prometheus.DefBuckets,
			},
		),

		AllocatedBuckets: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shipping_tax_allocated_buckets",
				Help:    "Number of tax classes a shipping price was allocated over",
				Buckets: []float64{1, 2, 3, 4, 6, 8},
			},
		),

		RateCacheInvalidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipping_tax_rate_cache_invalidations_total",
				Help: "Total number of tax rate cache invalidations",
			},
			[]string{"source"},
		),

		EventPublishFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shipping_tax_event_publish_failures_total",
				Help: "Total number of shipping tax events that failed to publish",
			},
		),
	}
}
