package domain

import (
	"github.com/andy/billcalc/internal/money"
)

// AllocationEntry is the portion of one payment applied to one invoice.
// AllocatedAmount is expressed in the payment currency; nil means unset.
// ExchangeRate is how many invoice-currency units one payment-currency unit
// buys, and is pinned to 1 when both currencies match.
type AllocationEntry struct {
	InvoiceID               int64
	InvoiceNumber           string
	InvoiceCurrencyID       int64
	InvoiceRemainingBalance money.Money
	AllocatedAmount         *money.Money
	ExchangeRate            float64
}

// IsSet returns true if an amount has been entered
func (e *AllocationEntry) IsSet() bool {
	return e.AllocatedAmount != nil
}

// Amount returns the allocated amount, or zero at the given precision when unset.
func (e *AllocationEntry) Amount(precision int) money.Money {
	if e.AllocatedAmount == nil {
		return money.Zero(precision)
	}
	return *e.AllocatedAmount
}

// SameCurrency returns true if the invoice is denominated in the payment currency
func (e *AllocationEntry) SameCurrency(paymentCurrencyID int64) bool {
	return e.InvoiceCurrencyID == paymentCurrencyID
}

// Payment is one incoming or outgoing payment for a firm. Amount and Fee are
// in the payment currency; ConversionRate converts into the base currency.
type Payment struct {
	ID             int64
	FirmID         int64
	CurrencyID     int64
	Amount         money.Money
	Fee            money.Money
	ConversionRate float64
	Allocations    []AllocationEntry
}

// Available returns the usable amount of the payment: amount plus fee.
func (p *Payment) Available() (money.Money, error) {
	return p.Amount.Add(p.Fee)
}

// BaseAmount converts the usable amount into the base currency.
func (p *Payment) BaseAmount(basePrecision int) (money.Money, error) {
	available, err := p.Available()
	if err != nil {
		return money.Money{}, err
	}
	rate := p.ConversionRate
	if rate <= 0 {
		rate = 1
	}
	return available.Convert(rate, basePrecision), nil
}

// Precision returns the payment currency precision.
func (p *Payment) Precision() int {
	return p.Amount.Precision()
}
