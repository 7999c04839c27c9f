package handlers

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/service"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Handlers holds all HTTP handlers for the shipping tax service.
type Handlers struct {
	shippingTaxService *service.ShippingTaxService
	checks             map[string]ReadinessCheck
	config             *config.Config
	logger             *logging.LoggerV2
}

// NewHandlers creates a new handlers instance. checks may be nil.
func NewHandlers(
	shippingTaxService *service.ShippingTaxService,
	checks map[string]ReadinessCheck,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		shippingTaxService: shippingTaxService,
		checks:             checks,
		config:             cfg,
		logger:             logging.NewLoggerV2("handlers"),
	}
}
