package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/repository"
)

var hundred = decimal.NewFromInt(100)

// ShippingTaxAllocator spreads shipping tax over the VAT classes of a cart in
// proportion to each class's share of the taxable cart value.
//
// It holds no per-call state; one instance serves concurrent requests.
type ShippingTaxAllocator struct {
	rates  repository.TaxRateSource
	logger *logging.LoggerV2
}

// NewShippingTaxAllocator creates an allocator reading from the given tax table.
func NewShippingTaxAllocator(rates repository.TaxRateSource) *ShippingTaxAllocator {
	return &ShippingTaxAllocator{
		rates:  rates,
		logger: logging.NewLoggerV2("shipping-tax-allocator"),
	}
}

// GetShippingTaxRates returns the classes whose representative rate applies to
// shipping, in the host's class order with the default class first when the
// host did not list it.
func (a *ShippingTaxAllocator) GetShippingTaxRates(ctx context.Context) (models.ShippingTaxRates, error) {
	classes, err := a.rates.TaxClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tax classes: %w", err)
	}

	if !containsDefaultClass(classes) {
		classes = append([]models.TaxClass{""}, classes...)
	}

	result := make(models.ShippingTaxRates, 0, len(classes))
	for _, class := range classes {
		rates, err := a.rates.RatesForClass(ctx, class)
		if err != nil {
			return nil, fmt.Errorf("list rates for tax class %q: %w", class.Label(), err)
		}
		if len(rates) == 0 {
			continue
		}

		representative := rates[0]
		if !representative.Shipping {
			continue
		}

		label := representative.Class.Label()
		if _, exists := result.RateID(label); exists {
			continue
		}
		result = append(result, models.ShippingTaxRate{Class: label, RateID: representative.ID})
	}

	a.logger.Debug("Resolved shipping tax rates", logging.Fields{
		"classes":        len(classes),
		"shipping_rates": len(result),
	})

	return result, nil
}

// GetTaxPercentage returns the percentage of the representative rate of the
// item's tax class. A class without rates yields a *errors.LookupError.
func (a *ShippingTaxAllocator) GetTaxPercentage(ctx context.Context, item models.LineItem) (decimal.Decimal, error) {
	rates, err := a.rates.RatesForClass(ctx, item.Class)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list rates for tax class %q: %w", item.Class.Label(), err)
	}
	if len(rates) == 0 {
		return decimal.Zero, errors.NewLookupError(item.Class.Label())
	}
	return rates[0].Percentage, nil
}

// Allocate computes the per-bucket breakdown. It returns a nil allocation when
// there is nothing to allocate: no shipping tax rates, an empty cart, or no
// cart value in a shipping-taxable class.
func (a *ShippingTaxAllocator) Allocate(
	ctx context.Context,
	shippingPrice decimal.Decimal,
	items []models.LineItem,
	rates models.ShippingTaxRates,
) (*models.Allocation, error) {
	if len(rates) == 0 || len(items) == 0 {
		return nil, nil
	}

	buckets := make([]models.Bucket, 0, len(rates))
	index := make(map[string]int, len(rates))
	for _, rate := range rates {
		if _, ok := index[rate.RateID]; ok {
			continue
		}
		index[rate.RateID] = len(buckets)
		buckets = append(buckets, models.Bucket{
			RateID:         rate.RateID,
			Class:          rate.Class,
			Subtotal:       decimal.Zero,
			RatePercentage: decimal.Zero,
		})
	}

	taxableTotal := decimal.Zero
	percentages := make(map[string]decimal.Decimal)

	for _, item := range items {
		label := item.Class.Label()
		rateID, ok := rates.RateID(label)
		if !ok {
			continue
		}

		subtotal := item.Subtotal()
		b := &buckets[index[rateID]]
		b.Subtotal = b.Subtotal.Add(subtotal)
		taxableTotal = taxableTotal.Add(subtotal)

		pct, ok := percentages[label]
		if !ok {
			var err error
			pct, err = a.GetTaxPercentage(ctx, item)
			if err != nil {
				return nil, err
			}
			percentages[label] = pct
		}
		b.RatePercentage = pct
	}

	if !taxableTotal.IsPositive() {
		a.logger.Debug("No taxable cart value for shipping tax", logging.Fields{
			"items": len(items),
		})
		return nil, nil
	}

	for i := range buckets {
		b := &buckets[i]
		b.SharePercentage = b.Subtotal.Div(taxableTotal).Mul(hundred)
		b.ShippingCostsPart = shippingPrice.Div(hundred).Mul(b.SharePercentage)
		b.ShippingTaxAmount = b.ShippingCostsPart.Div(hundred).Mul(b.RatePercentage).Round(2)
	}

	return &models.Allocation{
		ShippingPrice: shippingPrice,
		TaxableTotal:  taxableTotal,
		Buckets:       buckets,
	}, nil
}

// AllocateShippingTax returns the rate id to shipping tax mapping. The map is
// empty when Allocate finds nothing to allocate.
func (a *ShippingTaxAllocator) AllocateShippingTax(
	ctx context.Context,
	shippingPrice decimal.Decimal,
	items []models.LineItem,
	rates models.ShippingTaxRates,
) (map[string]decimal.Decimal, error) {
	allocation, err := a.Allocate(ctx, shippingPrice, items, rates)
	if err != nil {
		return nil, err
	}
	return allocation.Taxes(), nil
}

// CalculateShippingTax is the host's shipping tax filter. It returns the
// replacement taxes together with their breakdown, or existingTaxes and a nil
// allocation when no shipping-taxable items are in the cart.
func (a *ShippingTaxAllocator) CalculateShippingTax(
	ctx context.Context,
	existingTaxes map[string]decimal.Decimal,
	shippingPrice decimal.Decimal,
	items []models.LineItem,
) (map[string]decimal.Decimal, *models.Allocation, error) {
	rates, err := a.GetShippingTaxRates(ctx)
	if err != nil {
		return nil, nil, err
	}

	allocation, err := a.Allocate(ctx, shippingPrice, items, rates)
	if err != nil {
		return nil, nil, err
	}
	if allocation == nil {
		return existingTaxes, nil, nil
	}

	return allocation.Taxes(), allocation, nil
}

func containsDefaultClass(classes []models.TaxClass) bool {
	for _, c := range classes {
		if c.Slug() == "" {
			return true
		}
	}
	return false
}
