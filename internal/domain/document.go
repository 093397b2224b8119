package domain

import (
	"fmt"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountAmount     DiscountType = "AMOUNT"
)

// DocumentKind tags the business document a Document was mapped from.
type DocumentKind string

const (
	KindInvoice          DocumentKind = "invoice"
	KindQuotation        DocumentKind = "quotation"
	KindExpenseInvoice   DocumentKind = "expense_invoice"
	KindExpenseQuotation DocumentKind = "expense_quotation"
)

// LineItem is one article line of a document. Its subtotal and total are
// always derived by the pricing package and never stored here.
type LineItem struct {
	ID           int64
	Description  string
	Quantity     float64
	UnitPrice    float64
	Discount     float64
	DiscountType DiscountType
	Taxes        []TaxDefinition
}

// Validate returns an error if the line cannot be submitted
func (l *LineItem) Validate() error {
	field := l.field()
	if l.Quantity < 0 {
		return NewValidationError(ErrInvalidQuantity, field, fmt.Sprintf("quantity %v", l.Quantity))
	}
	if l.UnitPrice < 0 {
		return NewValidationError(ErrInvalidUnitPrice, field, fmt.Sprintf("unit price %v", l.UnitPrice))
	}
	if err := validateDiscount(field, l.Discount, l.DiscountType); err != nil {
		return err
	}
	for i := range l.Taxes {
		if err := l.Taxes[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (l *LineItem) field() string {
	if l.Description != "" {
		return fmt.Sprintf("line %q", l.Description)
	}
	return fmt.Sprintf("line #%d", l.ID)
}

// Document is the generic shape shared by invoices, quotations and their
// expense counterparts.
type Document struct {
	Kind              DocumentKind
	Lines             []LineItem
	Discount          float64
	DiscountType      DiscountType
	TaxStamp          *TaxDefinition // nil when no stamp applies
	WithholdingRate   *float64       // percent, nil when withholding is disabled
	AmountPaid        float64
	CurrencyPrecision int
}

// Validate checks the document before a submit action. The calculators
// themselves accept any numeric input.
func (d *Document) Validate() error {
	if d.CurrencyPrecision < 0 {
		return NewValidationError(ErrInvalidPrecision, "currency", fmt.Sprintf("%d digits", d.CurrencyPrecision))
	}
	for i := range d.Lines {
		if err := d.Lines[i].Validate(); err != nil {
			return err
		}
	}
	if err := validateDiscount("document", d.Discount, d.DiscountType); err != nil {
		return err
	}
	if err := d.ValidateTaxStamp(); err != nil {
		return err
	}
	if d.WithholdingRate != nil {
		if r := *d.WithholdingRate; r < 0 || r > 100 {
			return NewValidationError(ErrInvalidWithholding, "withholding", fmt.Sprintf("%v%%", r))
		}
	}
	return nil
}

// ValidateTaxStamp rejects rate-based stamps: a stamp is a fixed levy and a
// rate has no defined base.
func (d *Document) ValidateTaxStamp() error {
	if d.TaxStamp == nil {
		return nil
	}
	if d.TaxStamp.IsRate {
		return NewValidationError(ErrInvalidTaxStampKind, d.TaxStamp.field(), fmt.Sprintf("rate %v%%", d.TaxStamp.Value))
	}
	return d.TaxStamp.Validate()
}

func validateDiscount(field string, discount float64, kind DiscountType) error {
	switch kind {
	case DiscountPercentage, "":
		if discount < 0 || discount > 100 {
			return NewValidationError(ErrInvalidDiscount, field, fmt.Sprintf("percentage %v outside [0,100]", discount))
		}
	case DiscountAmount:
		if discount < 0 {
			return NewValidationError(ErrInvalidDiscount, field, fmt.Sprintf("amount %v is negative", discount))
		}
	default:
		return NewValidationError(ErrInvalidDiscount, field, fmt.Sprintf("unknown discount type %q", kind))
	}
	return nil
}
