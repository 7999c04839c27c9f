// Package errors defines the error values shared by the shipping tax service.
package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested resource (e.g. a cart) does not exist.
	ErrNotFound = stderrors.New("not found")

	// ErrTaxRateNotFound marks a tax class that has no configured rate.
	ErrTaxRateNotFound = stderrors.New("tax rate not found")
)

// ValidationError reports invalid host-supplied input.
type ValidationError struct {
	Field   string            `json:"field"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: map[string]string{field: message},
	}
}

// LookupError is returned when a tax class present in a cart has no rate in
// the tax table.
type LookupError struct {
	TaxClass string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no tax rate configured for tax class %q", e.TaxClass)
}

func (e *LookupError) Unwrap() error {
	return ErrTaxRateNotFound
}

// NewLookupError creates a LookupError for the given class label.
func NewLookupError(taxClass string) *LookupError {
	return &LookupError{TaxClass: taxClass}
}

// Is and As re-export the standard library helpers so callers need a single import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }
