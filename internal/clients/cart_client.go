package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/models"
)

// HeaderRequestID propagates the caller's request id to the cart service.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID stores a request id for outgoing calls.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// cartItem is the cart service's wire format for a cart line.
type cartItem struct {
	ProductID string          `json:"product_id"`
	TaxClass  string          `json:"tax_class"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

const (
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
)

// HTTPCartClient reads cart contents from the cart service.
type HTTPCartClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	apiKey     string
	logger     *logging.LoggerV2
}

// NewHTTPCartClient creates a new HTTP-based cart client. Consecutive
// transport or 5xx failures open a circuit breaker; unknown carts do not.
func NewHTTPCartClient(cfg config.ServiceConfig, logger *logging.LoggerV2) *HTTPCartClient {
	c := &HTTPCartClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "cart-service",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errors.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", logging.Fields{
				"name": name,
				"from": from.String(),
				"to":   to.String(),
			})
		},
	})

	return c
}

// GetLineItems retrieves the line items of a cart in cart order.
func (c *HTTPCartClient) GetLineItems(ctx context.Context, cartID string) ([]models.LineItem, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchLineItems(ctx, cartID)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, fmt.Errorf("cart service unavailable: %w", err)
	}
	if err != nil {
		return nil, err
	}
	return result.([]models.LineItem), nil
}

func (c *HTTPCartClient) fetchLineItems(ctx context.Context, cartID string) ([]models.LineItem, error) {
	c.logger.Debug("Fetching cart items", logging.Fields{"cart_id": cartID})

	endpoint := fmt.Sprintf("%s/api/v2/carts/%s/items", c.baseURL, url.PathEscape(cartID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	c.setHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch cart items", logging.Fields{
			"cart_id": cartID,
			"error":   err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("cart %s: %w", cartID, errors.ErrNotFound)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cart service returned status %d", resp.StatusCode)
	}

	var payload []cartItem
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}

	items := make([]models.LineItem, 0, len(payload))
	for _, p := range payload {
		items = append(items, models.LineItem{
			ProductID: p.ProductID,
			Class:     models.TaxClass(p.TaxClass),
			UnitPrice: p.UnitPrice,
			Quantity:  p.Quantity,
		})
	}

	c.logger.Debug("Cart items fetched", logging.Fields{
		"cart_id": cartID,
		"items":   len(items),
	})

	return items, nil
}

func (c *HTTPCartClient) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Accept", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(HeaderRequestID, requestID)
	}
}
