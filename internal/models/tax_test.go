package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTaxClass_LabelAndSlug(t *testing.T) {
	tests := []struct {
		class TaxClass
		label string
		slug  string
	}{
		{"", "standard", ""},
		{"standard", "standard", ""},
		{"reduced-rate", "reduced-rate", "reduced-rate"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.label, tt.class.Label())
			assert.Equal(t, tt.slug, tt.class.Slug())
		})
	}
}

func TestLineItem_Subtotal(t *testing.T) {
	item := LineItem{UnitPrice: decimal.RequireFromString("12.50"), Quantity: 3}

	assert.True(t, decimal.RequireFromString("37.50").Equal(item.Subtotal()))
}

func TestShippingTaxRates_RateID(t *testing.T) {
	rates := ShippingTaxRates{
		{Class: "standard", RateID: "1"},
		{Class: "reduced-rate", RateID: "2"},
	}

	id, ok := rates.RateID("reduced-rate")
	assert.True(t, ok)
	assert.Equal(t, "2", id)

	_, ok = rates.RateID("zero-rate")
	assert.False(t, ok)
}

func TestAllocation_TaxesAndTotal(t *testing.T) {
	a := &Allocation{Buckets: []Bucket{
		{RateID: "1", ShippingTaxAmount: decimal.RequireFromString("2.52")},
		{RateID: "2", ShippingTaxAmount: decimal.RequireFromString("0.72")},
	}}

	taxes := a.Taxes()
	assert.Len(t, taxes, 2)
	assert.True(t, decimal.RequireFromString("0.72").Equal(taxes["2"]))
	assert.True(t, decimal.RequireFromString("3.24").Equal(a.Total()))

	var empty *Allocation
	assert.Empty(t, empty.Taxes())
	assert.True(t, empty.Total().IsZero())
}
