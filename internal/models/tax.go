package models

import (
	"github.com/shopspring/decimal"
)

// StandardTaxClass is the label given to the host's default (empty) tax class.
const StandardTaxClass = "standard"

// TaxClass is a tax class slug as stored by the host. The empty slug is the
// default class.
type TaxClass string

// Label returns the class name used as an allocation key.
func (c TaxClass) Label() string {
	if c == "" {
		return StandardTaxClass
	}
	return string(c)
}

// Slug returns the storage form of the class, mapping "standard" back to "".
func (c TaxClass) Slug() string {
	if c == StandardTaxClass {
		return ""
	}
	return string(c)
}

// TaxRate is one row of the host tax table.
type TaxRate struct {
	ID         string          `json:"id"`
	Class      TaxClass        `json:"tax_class"`
	Country    string          `json:"country,omitempty"`
	Name       string          `json:"name,omitempty"`
	Percentage decimal.Decimal `json:"percentage"`
	Priority   int             `json:"priority"`
	Order      int             `json:"order"`
	Shipping   bool            `json:"shipping"`
}

// LineItem is a cart line as seen by the allocator.
type LineItem struct {
	ProductID string          `json:"product_id,omitempty"`
	Class     TaxClass        `json:"tax_class"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is unit price times quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShippingTaxRate pairs a shipping-taxable class label with the id of its
// representative rate.
type ShippingTaxRate struct {
	Class  string `json:"tax_class"`
	RateID string `json:"rate_id"`
}

// ShippingTaxRates keeps the host's class enumeration order.
type ShippingTaxRates []ShippingTaxRate

// RateID returns the rate id registered for a class label.
func (r ShippingTaxRates) RateID(class string) (string, bool) {
	for _, rate := range r {
		if rate.Class == class {
			return rate.RateID, true
		}
	}
	return "", false
}

// Bucket accumulates the cart value of one shipping-taxable class.
type Bucket struct {
	RateID            string          `json:"rate_id"`
	Class             string          `json:"tax_class"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	RatePercentage    decimal.Decimal `json:"rate_percentage"`
	SharePercentage   decimal.Decimal `json:"share_percentage"`
	ShippingCostsPart decimal.Decimal `json:"shipping_costs_part"`
	ShippingTaxAmount decimal.Decimal `json:"shipping_tax_amount"`
}

// Allocation is the result of spreading shipping tax over the buckets.
type Allocation struct {
	ShippingPrice decimal.Decimal `json:"shipping_price"`
	TaxableTotal  decimal.Decimal `json:"taxable_total"`
	Buckets       []Bucket        `json:"buckets"`
}

// Taxes returns the rate id to shipping tax amount mapping.
func (a *Allocation) Taxes() map[string]decimal.Decimal {
	taxes := make(map[string]decimal.Decimal)
	if a == nil {
		return taxes
	}
	for _, b := range a.Buckets {
		taxes[b.RateID] = b.ShippingTaxAmount
	}
	return taxes
}

// Total sums the shipping tax of all buckets.
func (a *Allocation) Total() decimal.Decimal {
	total := decimal.Zero
	if a == nil {
		return total
	}
	for _, b := range a.Buckets {
		total = total.Add(b.ShippingTaxAmount)
	}
	return total
}
