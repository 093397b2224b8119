package pricing

import (
	"fmt"

	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/money"
)

// TaxSummaryEntry is the document-wide amount of one tax.
type TaxSummaryEntry struct {
	TaxID     int64
	Label     string
	Value     float64
	IsRate    bool
	IsSpecial bool
	Amount    money.Money
}

// BuildTaxSummary computes every line and groups the tax contributions by
// tax id, in first-seen order.
func BuildTaxSummary(items []domain.LineItem, precision int) ([]TaxSummaryEntry, error) {
	lines, err := CalculateLines(items, precision)
	if err != nil {
		return nil, err
	}
	return SummarizeLines(lines, precision)
}

// SummarizeLines groups the contributions of already computed lines.
func SummarizeLines(lines []LineResult, precision int) ([]TaxSummaryEntry, error) {
	index := make(map[int64]int)
	summary := make([]TaxSummaryEntry, 0)

	for _, line := range lines {
		for _, c := range line.Contributions() {
			pos, ok := index[c.Tax.ID]
			if !ok {
				pos = len(summary)
				index[c.Tax.ID] = pos
				summary = append(summary, TaxSummaryEntry{
					TaxID:     c.Tax.ID,
					Label:     c.Tax.Label,
					Value:     c.Tax.Value,
					IsRate:    c.Tax.IsRate,
					IsSpecial: c.Tax.IsSpecial,
					Amount:    money.Zero(precision),
				})
			}

			amount, err := summary[pos].Amount.Add(c.Amount)
			if err != nil {
				return nil, fmt.Errorf("tax %d: %w", c.Tax.ID, err)
			}
			summary[pos].Amount = amount
		}
	}

	return summary, nil
}

// SummaryTotal returns the sum of all entries.
func SummaryTotal(summary []TaxSummaryEntry, precision int) (money.Money, error) {
	amounts := make([]money.Money, len(summary))
	for i, e := range summary {
		amounts[i] = e.Amount
	}
	return money.Sum(precision, amounts...)
}
