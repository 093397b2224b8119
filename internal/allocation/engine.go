// Package allocation spreads one payment across a firm's outstanding
// invoices, possibly in several currencies, and validates the result before
// submission.
package allocation

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/money"
)

// State is the allocation progress of one entry.
type State string

const (
	StateUnset              State = "unset"
	StatePartiallyAllocated State = "partially_allocated"
	StateFullyAllocated     State = "fully_allocated"
)

// PrecisionFunc resolves a currency id to its number of decimal digits.
type PrecisionFunc func(currencyID int64) (int, error)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger; the engine is silent by default.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithTolerance overrides DefaultTolerance.
func WithTolerance(eps decimal.Decimal) Option {
	return func(e *Engine) { e.tolerance = eps }
}

// Engine owns the allocation entries of one payment. Entries only change
// through explicit calls; nothing is recomputed in the background. An
// Engine is not safe for concurrent use.
type Engine struct {
	id          string
	payment     domain.Payment
	precisionOf PrecisionFunc
	tolerance   decimal.Decimal
	log         zerolog.Logger
}

// EntryView is an entry with its derived state and ceiling.
type EntryView struct {
	Entry      domain.AllocationEntry
	State      State
	MaxAllowed *money.Money // nil while a cross-currency rate is missing
}

// NewEngine creates an engine for payment. Existing allocations on the
// payment are kept.
func NewEngine(payment domain.Payment, precisionOf PrecisionFunc, opts ...Option) *Engine {
	e := &Engine{
		id:          uuid.NewString(),
		payment:     payment,
		precisionOf: precisionOf,
		tolerance:   DefaultTolerance,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.payment.Allocations = append([]domain.AllocationEntry(nil), payment.Allocations...)
	e.log = e.log.With().Str("allocation_id", e.id).Logger()
	return e
}

// ID identifies this allocation session in logs.
func (e *Engine) ID() string { return e.id }

// Payment returns a copy of the payment with its current allocations.
func (e *Engine) Payment() domain.Payment {
	p := e.payment
	p.Allocations = e.Entries()
	return p
}

// Entries returns a copy of the current entries.
func (e *Engine) Entries() []domain.AllocationEntry {
	out := make([]domain.AllocationEntry, len(e.payment.Allocations))
	for i, entry := range e.payment.Allocations {
		out[i] = entry
		if entry.AllocatedAmount != nil {
			amount := *entry.AllocatedAmount
			out[i].AllocatedAmount = &amount
		}
	}
	return out
}

// Seed replaces the entries with one unset entry per payable invoice that
// still has a positive remaining balance.
func (e *Engine) Seed(invoices []domain.Invoice) error {
	entries := make([]domain.AllocationEntry, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		if !inv.IsPayable() {
			continue
		}
		precision, err := e.precisionOf(inv.CurrencyID)
		if err != nil {
			return fmt.Errorf("invoice %d: %w", inv.ID, err)
		}
		remaining := inv.RemainingBalance(precision)
		if !remaining.IsPositive() {
			continue
		}
		entries = append(entries, domain.AllocationEntry{
			InvoiceID:               inv.ID,
			InvoiceNumber:           inv.SequentialNumber,
			InvoiceCurrencyID:       inv.CurrencyID,
			InvoiceRemainingBalance: remaining,
			ExchangeRate:            e.initialRate(inv.CurrencyID),
		})
	}
	e.payment.Allocations = entries

	e.log.Debug().
		Int("offered", len(invoices)).
		Int("seeded", len(entries)).
		Msg("Seeded allocation entries")
	return nil
}

// ComputeMaxAllowed returns the largest amount, in payment currency, that
// can be allocated to the entry.
func (e *Engine) ComputeMaxAllowed(entry domain.AllocationEntry) (money.Money, error) {
	return maxAllowed(&entry, e.payment.CurrencyID, e.payment.Precision())
}

// SetAmount stores an allocated amount. Negative values are refused; values
// above the maximum (plus tolerance) are clamped to the maximum. The stored
// amount is returned.
func (e *Engine) SetAmount(invoiceID int64, value float64) (money.Money, error) {
	entry, err := e.find(invoiceID)
	if err != nil {
		return money.Money{}, err
	}
	if value < 0 || math.IsNaN(value) {
		return money.Money{}, fmt.Errorf("%w: %v", ErrNegativeAmount, value)
	}

	max, err := e.ComputeMaxAllowed(*entry)
	if err != nil {
		return money.Money{}, err
	}

	amount := money.New(value, e.payment.Precision())
	if amount.ExceedsBy(max, e.tolerance) {
		e.log.Debug().
			Int64("invoice_id", invoiceID).
			Str("requested", amount.String()).
			Str("max", max.String()).
			Msg("Clamped allocation to maximum")
		amount = max
	}
	entry.AllocatedAmount = &amount
	return amount, nil
}

// Fill allocates the maximum allowed amount to the entry.
func (e *Engine) Fill(invoiceID int64) (money.Money, error) {
	entry, err := e.find(invoiceID)
	if err != nil {
		return money.Money{}, err
	}
	max, err := e.ComputeMaxAllowed(*entry)
	if err != nil {
		return money.Money{}, err
	}
	entry.AllocatedAmount = &max
	return max, nil
}

// ClearAmount returns the entry to the unset state.
func (e *Engine) ClearAmount(invoiceID int64) error {
	entry, err := e.find(invoiceID)
	if err != nil {
		return err
	}
	entry.AllocatedAmount = nil
	return nil
}

// SetExchangeRate sets how many invoice-currency units one payment-currency
// unit is worth. Same-currency entries are pinned to 1.
func (e *Engine) SetExchangeRate(invoiceID int64, rate float64) error {
	entry, err := e.find(invoiceID)
	if err != nil {
		return err
	}
	if entry.SameCurrency(e.payment.CurrencyID) {
		return ErrRatePinned
	}
	if !(rate > 0) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidExchangeRate, rate)
	}
	entry.ExchangeRate = rate
	return nil
}

// SetPaymentAmount updates the payment amount and fee, in payment currency.
func (e *Engine) SetPaymentAmount(amount, fee float64) {
	p := e.payment.Precision()
	e.payment.Amount = money.New(amount, p)
	e.payment.Fee = money.New(fee, p)
}

// ChangeCurrency switches the payment currency. The exchange-rate basis
// changes, so every entry is cleared and rates are reset.
func (e *Engine) ChangeCurrency(currencyID int64) error {
	precision, err := e.precisionOf(currencyID)
	if err != nil {
		return err
	}

	e.payment.CurrencyID = currencyID
	e.payment.Amount = money.FromDecimal(e.payment.Amount.Decimal(), precision)
	e.payment.Fee = money.FromDecimal(e.payment.Fee.Decimal(), precision)

	for i := range e.payment.Allocations {
		entry := &e.payment.Allocations[i]
		entry.AllocatedAmount = nil
		entry.ExchangeRate = e.initialRate(entry.InvoiceCurrencyID)
	}

	e.log.Debug().
		Int64("currency_id", currencyID).
		Int("entries", len(e.payment.Allocations)).
		Msg("Payment currency changed, allocations cleared")
	return nil
}

// Reset discards every entry.
func (e *Engine) Reset() {
	e.payment.Allocations = nil
}

// CalculateUsedAmount sums the allocated amounts, already in payment currency.
func (e *Engine) CalculateUsedAmount() (money.Money, error) {
	return usedAmount(e.payment.Allocations, e.payment.Precision())
}

// RemainingToAllocate is amount + fee minus what is already allocated.
func (e *Engine) RemainingToAllocate() (money.Money, error) {
	available, err := e.payment.Available()
	if err != nil {
		return money.Money{}, err
	}
	used, err := e.CalculateUsedAmount()
	if err != nil {
		return money.Money{}, err
	}
	return available.Sub(used)
}

// EntryState reports the allocation progress of one entry.
func (e *Engine) EntryState(invoiceID int64) (State, error) {
	entry, err := e.find(invoiceID)
	if err != nil {
		return "", err
	}
	return e.stateOf(entry), nil
}

// Views returns every entry with its state and ceiling.
func (e *Engine) Views() []EntryView {
	views := make([]EntryView, 0, len(e.payment.Allocations))
	for _, entry := range e.Entries() {
		v := EntryView{Entry: entry, State: e.stateOf(&entry)}
		if max, err := e.ComputeMaxAllowed(entry); err == nil {
			v.MaxAllowed = &max
		}
		views = append(views, v)
	}
	return views
}

// Validate runs the submit-time checks on the current entries.
func (e *Engine) Validate() (Result, error) {
	res, err := AllocatePayment(e.payment.Allocations, e.payment, e.tolerance)
	if err != nil {
		return Result{}, err
	}
	if !res.Valid {
		e.log.Warn().
			Err(res.Err).
			Str("used", res.UsedAmount.String()).
			Str("remaining", res.RemainingToAllocate.String()).
			Msg("Allocation rejected")
	}
	return res, nil
}

func (e *Engine) stateOf(entry *domain.AllocationEntry) State {
	if entry.AllocatedAmount == nil || entry.AllocatedAmount.IsZero() {
		return StateUnset
	}
	max, err := e.ComputeMaxAllowed(*entry)
	if err != nil {
		return StatePartiallyAllocated
	}
	if entry.AllocatedAmount.WithinTolerance(max, e.tolerance) || entry.AllocatedAmount.ExceedsBy(max, e.tolerance) {
		return StateFullyAllocated
	}
	return StatePartiallyAllocated
}

func (e *Engine) initialRate(invoiceCurrencyID int64) float64 {
	if invoiceCurrencyID == e.payment.CurrencyID {
		return 1
	}
	return 0
}

func (e *Engine) find(invoiceID int64) (*domain.AllocationEntry, error) {
	for i := range e.payment.Allocations {
		if e.payment.Allocations[i].InvoiceID == invoiceID {
			return &e.payment.Allocations[i], nil
		}
	}
	return nil, fmt.Errorf("%w: invoice %d", ErrEntryNotFound, invoiceID)
}
