package models

import (
	"github.com/shopspring/decimal"
)

// CalculateShippingTaxRequest is the host's "compute shipping tax" call.
// Either CartID or Items identifies the cart contents.
type CalculateShippingTaxRequest struct {
	ExistingTaxes map[string]decimal.Decimal `json:"existing_taxes"`
	ShippingPrice decimal.Decimal            `json:"shipping_price"`
	CartID        string                     `json:"cart_id,omitempty"`
	Items         []LineItem                 `json:"items,omitempty"`
}

// CalculateShippingTaxResponse carries the taxes the host should apply.
// Replaced is false when the existing taxes were passed through.
type CalculateShippingTaxResponse struct {
	Taxes        map[string]decimal.Decimal `json:"taxes"`
	Replaced     bool                       `json:"replaced"`
	TaxableTotal decimal.Decimal            `json:"taxable_total"`
	Buckets      []Bucket                   `json:"buckets,omitempty"`
}
