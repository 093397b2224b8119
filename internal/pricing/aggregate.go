package pricing

import (
	"fmt"

	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/money"
)

// Policy holds the configurable rules of the aggregator.
type Policy struct {
	// AllowNegativeTotals lets a discount or stamp combination produce a
	// negative line or document total. When false such a document is
	// rejected with domain.ErrNegativeTotal. Totals are never clamped.
	AllowNegativeTotals bool
}

// DefaultPolicy rejects negative totals.
func DefaultPolicy() Policy {
	return Policy{}
}

// AggregateInput carries the document-level fields of the aggregation.
type AggregateInput struct {
	Discount        float64
	DiscountType    domain.DiscountType
	TaxStamp        *domain.TaxDefinition
	WithholdingRate *float64
	AmountPaid      float64
	Precision       int
}

// Totals is the result of a document aggregation. Total is the face value;
// withholding reduces RemainingAmount only.
type Totals struct {
	SubTotal          money.Money
	PreDiscountTotal  money.Money
	DiscountAmount    money.Money
	TaxStampAmount    money.Money
	Total             money.Money
	WithholdingAmount money.Money
	AmountPaid        money.Money
	RemainingAmount   money.Money
}

// AggregateDocument sums the computed lines and applies the document
// discount, the optional fixed tax stamp and the optional withholding.
func AggregateDocument(lines []LineResult, in AggregateInput, policy Policy) (Totals, error) {
	p := in.Precision
	t := Totals{
		SubTotal:          money.Zero(p),
		PreDiscountTotal:  money.Zero(p),
		TaxStampAmount:    money.Zero(p),
		WithholdingAmount: money.Zero(p),
	}

	var err error
	for i, line := range lines {
		if !policy.AllowNegativeTotals {
			if verr := negativeLine(i, line); verr != nil {
				return Totals{}, verr
			}
		}
		if t.SubTotal, err = t.SubTotal.Add(line.SubTotal); err != nil {
			return Totals{}, fmt.Errorf("line %d subtotal: %w", i+1, err)
		}
		if t.PreDiscountTotal, err = t.PreDiscountTotal.Add(line.Total); err != nil {
			return Totals{}, fmt.Errorf("line %d total: %w", i+1, err)
		}
	}

	t.DiscountAmount = discountOf(t.PreDiscountTotal, in.Discount, in.DiscountType)
	if t.Total, err = t.PreDiscountTotal.Sub(t.DiscountAmount); err != nil {
		return Totals{}, fmt.Errorf("document discount: %w", err)
	}

	if in.TaxStamp != nil {
		if in.TaxStamp.IsRate {
			return Totals{}, domain.NewValidationError(domain.ErrInvalidTaxStampKind, "tax stamp",
				fmt.Sprintf("%q is a rate of %v%%", in.TaxStamp.Label, in.TaxStamp.Value))
		}
		t.TaxStampAmount = money.New(in.TaxStamp.Value, p)
		if t.Total, err = t.Total.Add(t.TaxStampAmount); err != nil {
			return Totals{}, fmt.Errorf("tax stamp: %w", err)
		}
	}

	if t.Total.IsNegative() && !policy.AllowNegativeTotals {
		return Totals{}, domain.NewValidationError(domain.ErrNegativeTotal, "total", t.Total.String())
	}

	if in.WithholdingRate != nil {
		t.WithholdingAmount = t.Total.Percent(*in.WithholdingRate)
	}

	t.AmountPaid = money.New(in.AmountPaid, p)
	if t.RemainingAmount, err = t.Total.Sub(t.AmountPaid); err != nil {
		return Totals{}, fmt.Errorf("remaining amount: %w", err)
	}
	if t.RemainingAmount, err = t.RemainingAmount.Sub(t.WithholdingAmount); err != nil {
		return Totals{}, fmt.Errorf("remaining amount: %w", err)
	}

	return t, nil
}

func negativeLine(i int, line LineResult) error {
	field := fmt.Sprintf("line %d", i+1)
	if line.SubTotal.IsNegative() {
		return domain.NewValidationError(domain.ErrNegativeTotal, field, "subtotal "+line.SubTotal.String())
	}
	if line.Total.IsNegative() {
		return domain.NewValidationError(domain.ErrNegativeTotal, field, "total "+line.Total.String())
	}
	return nil
}
