package repository

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/models"
)

// Ensure the tax table implementations satisfy TaxRateSource.
var (
	_ TaxRateSource = (*PostgresTaxRateRepository)(nil)
	_ TaxRateSource = (*StaticTaxRateRepository)(nil)
	_ TaxRateSource = (*CachedTaxRateSource)(nil)
)

// TaxRateSource is the read-only view of the host tax configuration.
type TaxRateSource interface {
	// TaxClasses lists the known tax classes in host order. The default
	// (empty) class may be omitted.
	TaxClasses(ctx context.Context) ([]models.TaxClass, error)

	// RatesForClass lists the rates of a class, representative rate first.
	// An unknown class yields an empty slice, not an error.
	RatesForClass(ctx context.Context, class models.TaxClass) ([]models.TaxRate, error)
}

// TaxRateCache defines caching operations for the tax table.
type TaxRateCache interface {
	GetClasses(ctx context.Context) ([]models.TaxClass, bool, error)
	SetClasses(ctx context.Context, classes []models.TaxClass) error
	GetRates(ctx context.Context, class models.TaxClass) ([]models.TaxRate, bool, error)
	SetRates(ctx context.Context, class models.TaxClass, rates []models.TaxRate) error
	InvalidateAll(ctx context.Context) error
}
