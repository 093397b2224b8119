package domain

import (
	"fmt"
	"strings"

	"github.com/andy/billcalc/internal/money"
)

// Currency describes a currency as supplied by the catalogue. DigitAfterComma
// is the precision every amount in that currency is quantised to.
type Currency struct {
	ID              int64
	Code            string
	Label           string
	Symbol          string
	DigitAfterComma int
}

// Validate returns an error if the currency is invalid
func (c *Currency) Validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return NewValidationError(fmt.Errorf("currency code is required"), "code", "")
	}
	if c.DigitAfterComma < 0 {
		return NewValidationError(ErrInvalidPrecision, "digit_after_comma", fmt.Sprintf("%d", c.DigitAfterComma))
	}
	return nil
}

// Format renders m with the currency symbol.
func (c *Currency) Format(m money.Money) string {
	if c.Symbol == "" {
		return fmt.Sprintf("%s %s", m.String(), c.Code)
	}
	return fmt.Sprintf("%s %s", m.String(), c.Symbol)
}

// TaxDefinition is a tax as configured in the catalogue. A rate tax applies
// Value percent; otherwise Value is a fixed amount. Special taxes are applied
// on top of the amount after regular taxes.
type TaxDefinition struct {
	ID        int64
	Label     string
	Value     float64
	IsRate    bool
	IsSpecial bool
}

// Validate returns an error if the tax definition is invalid
func (t *TaxDefinition) Validate() error {
	if t.Value < 0 {
		return NewValidationError(ErrInvalidTaxValue, t.field(), fmt.Sprintf("value %v", t.Value))
	}
	if t.IsRate && t.Value > 100 {
		return NewValidationError(ErrInvalidTaxValue, t.field(), fmt.Sprintf("rate %v%% above 100%%", t.Value))
	}
	return nil
}

func (t *TaxDefinition) field() string {
	if t.Label != "" {
		return "tax " + t.Label
	}
	return fmt.Sprintf("tax #%d", t.ID)
}

// TaxWithholding is a withholding rate a document can opt into. Rate is a
// percentage of the document total.
type TaxWithholding struct {
	ID    int64
	Label string
	Rate  float64
}

// Validate returns an error if the withholding rate is outside [0,100]
func (w *TaxWithholding) Validate() error {
	if w.Rate < 0 || w.Rate > 100 {
		return NewValidationError(ErrInvalidWithholding, "withholding "+w.Label, fmt.Sprintf("%v%%", w.Rate))
	}
	return nil
}
