package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/models"
)

// CartSource provides the current contents of a cart.
type CartSource interface {
	GetLineItems(ctx context.Context, cartID string) ([]models.LineItem, error)
}

// RateInvalidator drops cached tax rate data.
type RateInvalidator interface {
	Invalidate(ctx context.Context) error
}

// EventPublisher publishes shipping tax events.
type EventPublisher interface {
	PublishShippingTaxCalculated(ctx context.Context, cartID string, resp *models.CalculateShippingTaxResponse) error
}

// ShippingTaxService handles shipping tax requests from the storefront.
type ShippingTaxService struct {
	allocator      *ShippingTaxAllocator
	cartSource     CartSource
	invalidator    RateInvalidator
	eventPublisher EventPublisher
	metrics        *metrics.Metrics
	config         *config.Config
	logger         *logging.LoggerV2
}

// NewShippingTaxService creates a new shipping tax service. invalidator may be
// nil when rate caching is disabled.
func NewShippingTaxService(
	allocator *ShippingTaxAllocator,
	cartSource CartSource,
	invalidator RateInvalidator,
	eventPublisher EventPublisher,
	m *metrics.Metrics,
	cfg *config.Config,
) *ShippingTaxService {
	return &ShippingTaxService{
		allocator:      allocator,
		cartSource:     cartSource,
		invalidator:    invalidator,
		eventPublisher: eventPublisher,
		metrics:        m,
		config:         cfg,
		logger:         logging.NewLoggerV2("shipping-tax-service"),
	}
}

// CalculateShippingTax runs the shipping tax filter for one request.
func (s *ShippingTaxService) CalculateShippingTax(ctx context.Context, req *models.CalculateShippingTaxRequest) (*models.CalculateShippingTaxResponse, error) {
	start := time.Now()
	defer func() {
		s.metrics.ShippingTaxDuration.Observe(time.Since(start).Seconds())
	}()

	s.logger.Info("Calculating shipping tax", logging.Fields{
		"cart_id":        req.CartID,
		"item_count":     len(req.Items),
		"shipping_price": req.ShippingPrice.String(),
	})

	if err := ValidateCalculateShippingTaxRequest(req); err != nil {
		s.metrics.ShippingTaxCalculations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	items := req.Items
	if req.CartID != "" {
		var err error
		items, err = s.cartSource.GetLineItems(ctx, req.CartID)
		if err != nil {
			s.logger.Error("Failed to fetch cart", logging.Fields{
				"cart_id": req.CartID,
				"error":   err.Error(),
			})
			s.metrics.ShippingTaxCalculations.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, err
		}
		if err := validateLineItems(items); err != nil {
			s.metrics.ShippingTaxCalculations.WithLabelValues(metrics.OutcomeInvalid).Inc()
			return nil, err
		}
	}

	existing := req.ExistingTaxes
	if existing == nil {
		existing = make(map[string]decimal.Decimal)
	}

	taxes, allocation, err := s.allocator.CalculateShippingTax(ctx, existing, req.ShippingPrice, items)
	if err != nil {
		var lookupErr *errors.LookupError
		if errors.As(err, &lookupErr) {
			s.logger.Warn("Tax class has no configured rate", logging.Fields{
				"cart_id":   req.CartID,
				"tax_class": lookupErr.TaxClass,
			})
		} else {
			s.logger.Error("Failed to calculate shipping tax", logging.Fields{
				"cart_id": req.CartID,
				"error":   err.Error(),
			})
		}
		s.metrics.ShippingTaxCalculations.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	resp := &models.CalculateShippingTaxResponse{
		Taxes:        taxes,
		Replaced:     allocation != nil,
		TaxableTotal: decimal.Zero,
	}

	if allocation == nil {
		s.metrics.ShippingTaxCalculations.WithLabelValues(metrics.OutcomePassthrough).Inc()
		s.logger.Debug("No shipping-taxable items, keeping existing taxes", logging.Fields{
			"cart_id": req.CartID,
		})
		return resp, nil
	}

	resp.TaxableTotal = allocation.TaxableTotal
	resp.Buckets = allocation.Buckets
	s.metrics.ShippingTaxCalculations.WithLabelValues(metrics.OutcomeAllocated).Inc()
	s.metrics.AllocatedBuckets.Observe(float64(len(allocation.Buckets)))

	if s.config.Features.EnableTaxEvents {
		if err := s.eventPublisher.PublishShippingTaxCalculated(ctx, req.CartID, resp); err != nil {
			// Log but don't fail
			s.metrics.EventPublishFailures.Inc()
			s.logger.Error("Failed to publish shipping tax event", logging.Fields{
				"cart_id": req.CartID,
				"error":   err.Error(),
			})
		}
	}

	s.logger.Info("Shipping tax allocated", logging.Fields{
		"cart_id":       req.CartID,
		"buckets":       len(allocation.Buckets),
		"taxable_total": allocation.TaxableTotal.String(),
		"shipping_tax":  allocation.Total().String(),
	})

	return resp, nil
}

// ShippingTaxRates lists the tax classes that apply to shipping.
func (s *ShippingTaxService) ShippingTaxRates(ctx context.Context) (models.ShippingTaxRates, error) {
	return s.allocator.GetShippingTaxRates(ctx)
}

// TaxPercentage returns the representative rate percentage of a tax class.
func (s *ShippingTaxService) TaxPercentage(ctx context.Context, class models.TaxClass) (decimal.Decimal, error) {
	return s.allocator.GetTaxPercentage(ctx, models.LineItem{Class: class})
}

// InvalidateRates drops cached tax rates. source labels the trigger for metrics.
func (s *ShippingTaxService) InvalidateRates(ctx context.Context, source string) error {
	if s.invalidator == nil {
		s.logger.Debug("Rate caching disabled, nothing to invalidate")
		return nil
	}

	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Error("Failed to invalidate tax rate cache", logging.Fields{
			"source": source,
			"error":  err.Error(),
		})
		return err
	}

	s.metrics.RateCacheInvalidations.WithLabelValues(source).Inc()
	s.logger.Info("Tax rate cache invalidated", logging.Fields{"source": source})
	return nil
}
