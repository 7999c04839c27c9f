package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/models"
)

// CalculateShippingTax handles POST /api/v1/shipping-tax/calculate
func (h *Handlers) CalculateShippingTax(c *gin.Context) {
	var req models.CalculateShippingTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind request", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.shippingTaxService.CalculateShippingTax(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListShippingTaxRates handles GET /api/v1/shipping-tax/rates
func (h *Handlers) ListShippingTaxRates(c *gin.Context) {
	rates, err := h.shippingTaxService.ShippingTaxRates(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	if rates == nil {
		rates = models.ShippingTaxRates{}
	}

	c.JSON(http.StatusOK, gin.H{
		"rates": rates,
		"total": len(rates),
	})
}

// GetTaxPercentage handles GET /api/v1/tax-classes/:class/percentage
func (h *Handlers) GetTaxPercentage(c *gin.Context) {
	class := models.TaxClass(c.Param("class"))

	percentage, err := h.shippingTaxService.TaxPercentage(c.Request.Context(), models.TaxClass(class.Slug()))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tax_class":  class.Label(),
		"percentage": percentage,
	})
}

// InvalidateRateCache handles DELETE /api/v1/shipping-tax/rates/cache
func (h *Handlers) InvalidateRateCache(c *gin.Context) {
	if err := h.shippingTaxService.InvalidateRates(c.Request.Context(), "api"); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func handleError(c *gin.Context, err error) {
	if errors.Is(err, errors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var validationErr *errors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   validationErr.Message,
			"field":   validationErr.Field,
			"details": validationErr.Details,
		})
		return
	}

	var lookupErr *errors.LookupError
	if errors.As(err, &lookupErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "no tax rate configured for tax class",
			"tax_class": models.TaxClass(lookupErr.TaxClass).Label(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
