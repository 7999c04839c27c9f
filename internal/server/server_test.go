package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Server: config.ServerConfig{Port: 0}}
	registry := prometheus.NewRegistry()
	allocator := service.NewShippingTaxAllocator(repository.NewDutchTaxRateRepository())
	svc := service.NewShippingTaxService(allocator, nil, nil, nil, metrics.NewMetrics(registry), cfg)

	return New(handlers.NewHandlers(svc, nil, cfg), cfg, registry)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/live", http.StatusOK},
		{http.MethodGet, "/version", http.StatusOK},
		{http.MethodGet, "/api/v1/shipping-tax/rates", http.StatusOK},
		{http.MethodGet, "/api/v1/tax-classes/reduced-rate/percentage", http.StatusOK},
		{http.MethodDelete, "/api/v1/shipping-tax/rates/cache", http.StatusNoContent},
		{http.MethodGet, "/api/v1/orders", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestServer_MetricsExposeCalculations(t *testing.T) {
	srv := newTestServer(t)

	body := `{"shipping_price": "10", "items": [{"tax_class": "", "unit_price": "50", "quantity": 2}]}`
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/shipping-tax/calculate", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `shipping_tax_calculations_total{outcome="allocated"} 1`)
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req_abc")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, "req_abc", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}
