package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/money"
)

// DefaultTolerance is the slack accepted when comparing allocations with
// balances and with the payment amount.
var DefaultTolerance = decimal.New(1, -2)

// Result is the outcome of a submit-time validation. Reason is the single
// message shown to the user when Valid is false; Err carries the matching
// domain sentinel for errors.Is.
type Result struct {
	Valid               bool
	Reason              string
	Err                 error
	UsedAmount          money.Money
	RemainingToAllocate money.Money
}

// AllocatePayment validates a set of allocation entries against a payment:
// cross-currency entries need a positive rate, no entry may exceed its
// invoice's remaining balance once converted, and the allocations must add
// up to amount + fee. Only precision mismatches are returned as errors;
// everything else is reported through Result.
func AllocatePayment(entries []domain.AllocationEntry, payment domain.Payment, eps decimal.Decimal) (Result, error) {
	pp := payment.Precision()

	available, err := payment.Available()
	if err != nil {
		return Result{}, fmt.Errorf("payment amount: %w", err)
	}

	used, err := usedAmount(entries, pp)
	if err != nil {
		return Result{}, err
	}
	remaining, err := available.Sub(used)
	if err != nil {
		return Result{}, fmt.Errorf("remaining to allocate: %w", err)
	}

	res := Result{UsedAmount: used, RemainingToAllocate: remaining}

	for i := range entries {
		if verr := checkEntry(&entries[i], payment.CurrencyID, pp, eps); verr != nil {
			return res.invalid(verr), nil
		}
	}

	if !used.WithinTolerance(available, eps) {
		return res.invalid(domain.NewValidationError(domain.ErrAllocationMismatch, "payment",
			fmt.Sprintf("allocated %s, payment amount plus fee is %s", used, available))), nil
	}

	res.Valid = true
	return res, nil
}

func checkEntry(e *domain.AllocationEntry, paymentCurrencyID int64, pp int, eps decimal.Decimal) *domain.ValidationError {
	amount := e.Amount(pp)
	if amount.IsZero() {
		return nil
	}
	field := entryField(e)

	if amount.IsNegative() {
		return domain.NewValidationError(ErrNegativeAmount, field, amount.String())
	}

	if !e.SameCurrency(paymentCurrencyID) && !(e.ExchangeRate > 0) {
		return domain.NewValidationError(domain.ErrRateRequired, field,
			fmt.Sprintf("currency #%d to currency #%d", paymentCurrencyID, e.InvoiceCurrencyID))
	}

	// The tolerance is a payment-currency amount, as in Engine.SetAmount.
	max, err := maxAllowed(e, paymentCurrencyID, pp)
	if err != nil {
		return domain.NewValidationError(domain.ErrRateRequired, field, err.Error())
	}
	if amount.ExceedsBy(max, eps) {
		converted := amount
		if !e.SameCurrency(paymentCurrencyID) {
			converted = amount.Convert(e.ExchangeRate, e.InvoiceRemainingBalance.Precision())
		}
		return domain.NewValidationError(domain.ErrAllocationOverflow, field,
			fmt.Sprintf("%s exceeds remaining balance %s, at most %s can be allocated",
				converted, e.InvoiceRemainingBalance, max))
	}
	return nil
}

func (r Result) invalid(err *domain.ValidationError) Result {
	r.Valid = false
	r.Err = err
	r.Reason = err.Error()
	return r
}

func usedAmount(entries []domain.AllocationEntry, pp int) (money.Money, error) {
	used := money.Zero(pp)
	for i := range entries {
		var err error
		if used, err = used.Add(entries[i].Amount(pp)); err != nil {
			return money.Money{}, fmt.Errorf("%s: %w", entryField(&entries[i]), err)
		}
	}
	return used, nil
}

// maxAllowed is the largest amount in payment currency that settles the
// entry's invoice. Cross-currency values are truncated so that the amount
// converted back never exceeds the remaining balance.
func maxAllowed(e *domain.AllocationEntry, paymentCurrencyID int64, pp int) (money.Money, error) {
	if e.SameCurrency(paymentCurrencyID) {
		return e.InvoiceRemainingBalance, nil
	}
	if !(e.ExchangeRate > 0) {
		return money.Money{}, domain.NewValidationError(domain.ErrRateRequired, entryField(e),
			fmt.Sprintf("currency #%d to currency #%d", paymentCurrencyID, e.InvoiceCurrencyID))
	}
	return e.InvoiceRemainingBalance.ConvertDown(e.ExchangeRate, pp)
}

func entryField(e *domain.AllocationEntry) string {
	if e.InvoiceNumber != "" {
		return "invoice " + e.InvoiceNumber
	}
	return fmt.Sprintf("invoice #%d", e.InvoiceID)
}
