package repository

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/models"
)

// StaticTaxRateRepository serves a tax table held in memory. It backs local
// development runs without PostgreSQL and the service tests.
type StaticTaxRateRepository struct {
	classes []models.TaxClass
	rates   map[string][]models.TaxRate
}

// NewStaticTaxRateRepository builds a table from the given classes and rates.
// Rates are grouped by class and ordered by priority, order and id.
func NewStaticTaxRateRepository(classes []models.TaxClass, rates []models.TaxRate) *StaticTaxRateRepository {
	repo := &StaticTaxRateRepository{
		classes: append([]models.TaxClass(nil), classes...),
		rates:   make(map[string][]models.TaxRate),
	}
	for _, r := range rates {
		key := r.Class.Slug()
		repo.rates[key] = append(repo.rates[key], r)
	}
	for _, list := range repo.rates {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Priority != list[j].Priority {
				return list[i].Priority < list[j].Priority
			}
			if list[i].Order != list[j].Order {
				return list[i].Order < list[j].Order
			}
			return list[i].ID < list[j].ID
		})
	}
	return repo
}

// NewDutchTaxRateRepository seeds the table with the Dutch VAT classes:
// 21% standard, 9% reduced and 0% zero rate. Only the standard and reduced
// rates apply to shipping.
func NewDutchTaxRateRepository() *StaticTaxRateRepository {
	return NewStaticTaxRateRepository(
		[]models.TaxClass{"reduced-rate", "zero-rate"},
		defaultRates(),
	)
}

func (r *StaticTaxRateRepository) TaxClasses(_ context.Context) ([]models.TaxClass, error) {
	return append([]models.TaxClass(nil), r.classes...), nil
}

func (r *StaticTaxRateRepository) RatesForClass(_ context.Context, class models.TaxClass) ([]models.TaxRate, error) {
	return append([]models.TaxRate(nil), r.rates[class.Slug()]...), nil
}

func defaultRates() []models.TaxRate {
	return []models.TaxRate{
		{ID: "1", Class: "", Country: "NL", Name: "BTW hoog", Percentage: decimal.NewFromInt(21), Shipping: true},
		{ID: "2", Class: "reduced-rate", Country: "NL", Name: "BTW laag", Percentage: decimal.NewFromInt(9), Shipping: true},
		{ID: "3", Class: "zero-rate", Country: "NL", Name: "BTW nul", Percentage: decimal.Zero, Shipping: false},
	}
}
