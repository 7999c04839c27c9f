package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("allocate: %w", NewLookupError("reduced"))

	assert.True(t, Is(err, ErrTaxRateNotFound))

	var lookupErr *LookupError
	require.True(t, As(err, &lookupErr))
	assert.Equal(t, "reduced", lookupErr.TaxClass)
	assert.Contains(t, err.Error(), `tax class "reduced"`)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("shipping_price", "shipping price cannot be negative")

	assert.Equal(t, "validation failed on shipping_price: shipping price cannot be negative", err.Error())
	assert.Equal(t, "shipping price cannot be negative", err.Details["shipping_price"])
	assert.False(t, Is(err, ErrNotFound))
}
