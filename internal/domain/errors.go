package domain

import (
	"errors"
	"fmt"
)

// Validation errors. They block a submit action and are reported to the
// user as a single message; none of them is fatal.
var (
	ErrInvalidDiscount     = errors.New("invalid discount")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidUnitPrice    = errors.New("invalid unit price")
	ErrInvalidTaxValue     = errors.New("invalid tax value")
	ErrInvalidTaxStampKind = errors.New("tax stamp must be a fixed amount")
	ErrInvalidWithholding  = errors.New("withholding rate must be between 0 and 100")
	ErrInvalidPrecision    = errors.New("currency precision cannot be negative")
	ErrNegativeTotal       = errors.New("document total is negative")

	ErrRateRequired       = errors.New("exchange rate required")
	ErrAllocationOverflow = errors.New("allocation exceeds invoice remaining balance")
	ErrAllocationMismatch = errors.New("allocations do not match payment amount")
)

// ValidationError wraps one of the sentinel errors above with the field it
// concerns and a human readable detail.
type ValidationError struct {
	Err     error
	Field   string
	Details string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Details != "":
		return fmt.Sprintf("%s: %s: %s", e.Field, e.Err.Error(), e.Details)
	case e.Details != "":
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError.
func NewValidationError(err error, field, details string) *ValidationError {
	return &ValidationError{Err: err, Field: field, Details: details}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
