package service

import (
	"fmt"

	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/models"
)

// ValidateCalculateShippingTaxRequest validates a shipping tax request.
// An empty cart is valid and results in the existing taxes being kept.
func ValidateCalculateShippingTaxRequest(req *models.CalculateShippingTaxRequest) error {
	if req.ShippingPrice.IsNegative() {
		return errors.NewValidationError("shipping_price", "shipping price cannot be negative")
	}

	if req.CartID != "" && len(req.Items) > 0 {
		return errors.NewValidationError("items", "items cannot be combined with cart_id")
	}

	for rateID, amount := range req.ExistingTaxes {
		if rateID == "" {
			return errors.NewValidationError("existing_taxes", "rate ID is required")
		}
		if amount.IsNegative() {
			return errors.NewValidationError("existing_taxes", fmt.Sprintf("tax for rate %s cannot be negative", rateID))
		}
	}

	return validateLineItems(req.Items)
}

func validateLineItems(items []models.LineItem) error {
	for i, item := range items {
		if err := validateLineItem(&item, i); err != nil {
			return err
		}
	}
	return nil
}

func validateLineItem(item *models.LineItem, index int) error {
	if item.UnitPrice.IsNegative() {
		return errors.NewValidationError("items", fmt.Sprintf("unit price of item %d cannot be negative", index))
	}

	if item.Quantity < 0 {
		return errors.NewValidationError("items", fmt.Sprintf("quantity of item %d cannot be negative", index))
	}

	return nil
}
