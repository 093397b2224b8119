package pricing

import (
	"fmt"

	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/money"
)

// TaxContribution is the amount one tax adds to one line, with the base it
// was computed on.
type TaxContribution struct {
	Tax    domain.TaxDefinition
	Base   money.Money
	Amount money.Money
}

// LineResult holds every intermediate figure of a line computation so the
// tax summary can reuse the exact same quantised amounts.
type LineResult struct {
	RawSubTotal         money.Money
	DiscountAmount      money.Money
	SubTotal            money.Money // tax-excluded
	RegularTaxes        []TaxContribution
	RegularContribution money.Money
	AfterRegular        money.Money
	SpecialTaxes        []TaxContribution
	SpecialContribution money.Money
	Total               money.Money
}

// CalculateLine computes subtotal and total of one line at the given
// currency precision. Regular taxes apply to the discounted subtotal,
// special taxes to the subtotal plus regular taxes.
func CalculateLine(item domain.LineItem, precision int) (LineResult, error) {
	var res LineResult

	res.RawSubTotal = money.Product(item.Quantity, item.UnitPrice, precision)
	res.DiscountAmount = discountOf(res.RawSubTotal, item.Discount, item.DiscountType)

	var err error
	if res.SubTotal, err = res.RawSubTotal.Sub(res.DiscountAmount); err != nil {
		return LineResult{}, fmt.Errorf("line subtotal: %w", err)
	}

	regular, special := partitionTaxes(item.Taxes)

	res.RegularTaxes, res.RegularContribution, err = applyTaxes(regular, res.SubTotal)
	if err != nil {
		return LineResult{}, fmt.Errorf("regular taxes: %w", err)
	}
	if res.AfterRegular, err = res.SubTotal.Add(res.RegularContribution); err != nil {
		return LineResult{}, fmt.Errorf("regular taxes: %w", err)
	}

	res.SpecialTaxes, res.SpecialContribution, err = applyTaxes(special, res.AfterRegular)
	if err != nil {
		return LineResult{}, fmt.Errorf("special taxes: %w", err)
	}
	if res.Total, err = res.AfterRegular.Add(res.SpecialContribution); err != nil {
		return LineResult{}, fmt.Errorf("special taxes: %w", err)
	}

	return res, nil
}

// CalculateLines runs CalculateLine over every item, in order.
func CalculateLines(items []domain.LineItem, precision int) ([]LineResult, error) {
	out := make([]LineResult, 0, len(items))
	for i, item := range items {
		res, err := CalculateLine(item, precision)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// TaxAmount returns the sum of all tax contributions on the line.
func (r LineResult) TaxAmount() (money.Money, error) {
	return r.Total.Sub(r.SubTotal)
}

// Contributions returns regular then special contributions.
func (r LineResult) Contributions() []TaxContribution {
	out := make([]TaxContribution, 0, len(r.RegularTaxes)+len(r.SpecialTaxes))
	out = append(out, r.RegularTaxes...)
	return append(out, r.SpecialTaxes...)
}

// discountOf returns the discount amount on base. An empty discount type is
// treated as a percentage. Out-of-range values are not clamped.
func discountOf(base money.Money, discount float64, kind domain.DiscountType) money.Money {
	if kind == domain.DiscountAmount {
		return money.New(discount, base.Precision())
	}
	return base.Percent(discount)
}

func partitionTaxes(taxes []domain.TaxDefinition) (regular, special []domain.TaxDefinition) {
	for _, t := range taxes {
		if t.IsSpecial {
			special = append(special, t)
		} else {
			regular = append(regular, t)
		}
	}
	return regular, special
}

func applyTaxes(taxes []domain.TaxDefinition, base money.Money) ([]TaxContribution, money.Money, error) {
	total := money.Zero(base.Precision())
	contributions := make([]TaxContribution, 0, len(taxes))
	for _, t := range taxes {
		amount := taxOn(base, t)
		var err error
		if total, err = total.Add(amount); err != nil {
			return nil, money.Money{}, err
		}
		contributions = append(contributions, TaxContribution{Tax: t, Base: base, Amount: amount})
	}
	return contributions, total, nil
}

func taxOn(base money.Money, t domain.TaxDefinition) money.Money {
	if t.IsRate {
		return base.Percent(t.Value)
	}
	return money.New(t.Value, base.Precision())
}
