// Package pricing computes line and document totals: discounts, regular and
// special (cascading) taxes, the per-tax summary, the optional tax stamp and
// withholding. It is pure computation over in-memory values.
package pricing

import (
	"github.com/andy/billcalc/internal/domain"
)

// DocumentResult is one full recomputation pass over a document.
type DocumentResult struct {
	Lines      []LineResult
	TaxSummary []TaxSummaryEntry
	Totals     Totals
}

// Calculate runs lines, then the tax summary and the aggregation over the
// settled line results.
func Calculate(doc domain.Document, policy Policy) (*DocumentResult, error) {
	p := doc.CurrencyPrecision

	lines, err := CalculateLines(doc.Lines, p)
	if err != nil {
		return nil, err
	}

	summary, err := SummarizeLines(lines, p)
	if err != nil {
		return nil, err
	}

	totals, err := AggregateDocument(lines, AggregateInput{
		Discount:        doc.Discount,
		DiscountType:    doc.DiscountType,
		TaxStamp:        doc.TaxStamp,
		WithholdingRate: doc.WithholdingRate,
		AmountPaid:      doc.AmountPaid,
		Precision:       p,
	}, policy)
	if err != nil {
		return nil, err
	}

	return &DocumentResult{Lines: lines, TaxSummary: summary, Totals: totals}, nil
}
