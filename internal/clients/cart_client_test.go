package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPCartClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewHTTPCartClient(config.ServiceConfig{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
		APIKey:  "secret",
	}, logging.NewLoggerV2("cart-client-test"))
}

func TestHTTPCartClient_GetLineItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/carts/cart_42/items", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "req_1", r.Header.Get(HeaderRequestID))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"product_id": "p1", "tax_class": "", "unit_price": "60.00", "quantity": 1},
			{"product_id": "p2", "tax_class": "reduced-rate", "unit_price": 20, "quantity": 2}
		]`))
	})

	ctx := WithRequestID(context.Background(), "req_1")
	items, err := client.GetLineItems(ctx, "cart_42")
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, models.TaxClass(""), items[0].Class)
	assert.True(t, decimal.RequireFromString("60").Equal(items[0].UnitPrice))
	assert.Equal(t, models.TaxClass("reduced-rate"), items[1].Class)
	assert.True(t, decimal.RequireFromString("40").Equal(items[1].Subtotal()))
}

func TestHTTPCartClient_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetLineItems(context.Background(), "missing")

	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestHTTPCartClient_UnexpectedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetLineItems(context.Background(), "cart_1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPCartClient_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": `))
	})

	_, err := client.GetLineItems(context.Background(), "cart_1")

	assert.ErrorContains(t, err, "decode cart items")
}

func TestHTTPCartClient_BreakerOpensOnRepeatedFailures(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < breakerFailureThreshold; i++ {
		_, err := client.GetLineItems(context.Background(), "cart_1")
		require.Error(t, err)
	}

	_, err := client.GetLineItems(context.Background(), "cart_1")

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.EqualValues(t, breakerFailureThreshold, atomic.LoadInt32(&calls))
}

func TestHTTPCartClient_NotFoundKeepsBreakerClosed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < breakerFailureThreshold+1; i++ {
		_, err := client.GetLineItems(context.Background(), "missing")
		require.ErrorIs(t, err, errors.ErrNotFound)
	}

	assert.Equal(t, gobreaker.StateClosed, client.breaker.State())
}
