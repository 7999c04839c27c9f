package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.ShippingTaxCalculations.WithLabelValues(OutcomeAllocated).Inc()
	m.ShippingTaxCalculations.WithLabelValues(OutcomeAllocated).Inc()
	m.RateCacheInvalidations.WithLabelValues("event").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ShippingTaxCalculations.WithLabelValues(OutcomeAllocated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateCacheInvalidations.WithLabelValues("event")))

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "shipping_tax_calculations_total")
	assert.Contains(t, names, "shipping_tax_rate_cache_invalidations_total")
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewMetrics(registry)

	assert.Panics(t, func() { NewMetrics(registry) })
}
