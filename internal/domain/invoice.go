package domain

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/andy/billcalc/internal/money"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusValidated     InvoiceStatus = "validated"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusUnpaid        InvoiceStatus = "unpaid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusExpired       InvoiceStatus = "expired"
	InvoiceStatusArchived      InvoiceStatus = "archived"
)

// Invoice is the settlement view of an issued invoice: what a payment can be
// allocated against. Amounts are face values in the invoice currency.
type Invoice struct {
	ID                   int64
	FirmID               int64
	SequentialNumber     string
	CurrencyID           int64
	Status               InvoiceStatus
	Total                float64
	AmountPaid           float64
	TaxWithholdingAmount float64
}

// RemainingBalance returns total minus amounts already paid and withheld.
func (i *Invoice) RemainingBalance(precision int) money.Money {
	total := money.New(i.Total, precision)
	paid := money.New(i.AmountPaid, precision)
	withheld := money.New(i.TaxWithholdingAmount, precision)
	return money.FromMinor(total.Minor()-paid.Minor()-withheld.Minor(), precision)
}

// IsPayable returns true if a payment may be allocated against the invoice
func (i *Invoice) IsPayable() bool {
	switch i.Status {
	case InvoiceStatusValidated, InvoiceStatusSent, InvoiceStatusUnpaid, InvoiceStatusPartiallyPaid:
		return true
	}
	return false
}

// CanEdit returns true if the invoice can be modified
func (i *Invoice) CanEdit() bool {
	return i.Status == InvoiceStatusDraft
}

// PaymentStatus derives the settlement status from the current balances.
// Draft, expired and archived invoices keep their status.
func (i *Invoice) PaymentStatus(precision int, eps decimal.Decimal) InvoiceStatus {
	switch i.Status {
	case InvoiceStatusDraft, InvoiceStatusExpired, InvoiceStatusArchived:
		return i.Status
	}
	remaining := i.RemainingBalance(precision)
	if remaining.WithinTolerance(money.Zero(precision), eps) || remaining.IsNegative() {
		return InvoiceStatusPaid
	}
	if money.New(i.AmountPaid, precision).IsPositive() {
		return InvoiceStatusPartiallyPaid
	}
	return InvoiceStatusUnpaid
}

// Validate returns an error if the invoice is invalid
func (i *Invoice) Validate() error {
	if i.FirmID <= 0 {
		return errors.New("firm ID is required")
	}
	if i.CurrencyID <= 0 {
		return errors.New("currency ID is required")
	}
	if i.Total < 0 {
		return errors.New("invoice total cannot be negative")
	}
	if i.AmountPaid < 0 {
		return errors.New("amount paid cannot be negative")
	}
	if i.TaxWithholdingAmount < 0 {
		return errors.New("withholding amount cannot be negative")
	}
	return nil
}
