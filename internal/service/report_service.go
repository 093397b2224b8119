package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/money"
	"github.com/andy/billcalc/internal/repository"
)

// InvoiceBalance is one invoice with its remaining balance and the payment
// status derived from it
type InvoiceBalance struct {
	Invoice   domain.Invoice
	Remaining money.Money
	Status    domain.InvoiceStatus
}

// CurrencyBalance totals what a firm still owes in one currency
type CurrencyBalance struct {
	Currency  domain.Currency
	Invoices  []InvoiceBalance
	Remaining money.Money
}

// FirmBalance groups a firm's outstanding invoices by currency
type FirmBalance struct {
	Firm     domain.Firm
	Balances []CurrencyBalance // in order of first appearance
}

// ReportService provides balance aggregations
type ReportService interface {
	// GetFirmBalance returns the payable invoices of a firm grouped by currency
	GetFirmBalance(ctx context.Context, firmID int64) (*FirmBalance, error)

	// GetOutstandingTotal sums remaining balances of payable invoices in one currency
	GetOutstandingTotal(ctx context.Context, currencyID int64) (money.Money, error)
}

type reportService struct {
	firmRepo     repository.FirmRepository
	invoiceRepo  repository.InvoiceRepository
	currencyRepo repository.CurrencyRepository
	tolerance    decimal.Decimal
}

// NewReportService creates a new report service
func NewReportService(
	firmRepo repository.FirmRepository,
	invoiceRepo repository.InvoiceRepository,
	currencyRepo repository.CurrencyRepository,
	tolerance decimal.Decimal,
) ReportService {
	return &reportService{
		firmRepo:     firmRepo,
		invoiceRepo:  invoiceRepo,
		currencyRepo: currencyRepo,
		tolerance:    tolerance,
	}
}

func (s *reportService) GetFirmBalance(ctx context.Context, firmID int64) (*FirmBalance, error) {
	firm, err := s.firmRepo.GetByID(ctx, firmID)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.List(ctx, &firmID, nil)
	if err != nil {
		return nil, err
	}

	out := &FirmBalance{Firm: *firm}
	slot := make(map[int64]int)
	for _, inv := range invoices {
		if !inv.IsPayable() {
			continue
		}

		i, ok := slot[inv.CurrencyID]
		if !ok {
			c, err := s.currencyRepo.GetByID(ctx, inv.CurrencyID)
			if err != nil {
				return nil, err
			}
			out.Balances = append(out.Balances, CurrencyBalance{
				Currency:  *c,
				Remaining: money.Zero(c.DigitAfterComma),
			})
			i = len(out.Balances) - 1
			slot[inv.CurrencyID] = i
		}

		cb := &out.Balances[i]
		p := cb.Currency.DigitAfterComma
		remaining := inv.RemainingBalance(p)
		cb.Invoices = append(cb.Invoices, InvoiceBalance{
			Invoice:   *inv,
			Remaining: remaining,
			Status:    inv.PaymentStatus(p, s.tolerance),
		})
		if cb.Remaining, err = cb.Remaining.Add(remaining); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (s *reportService) GetOutstandingTotal(ctx context.Context, currencyID int64) (money.Money, error) {
	c, err := s.currencyRepo.GetByID(ctx, currencyID)
	if err != nil {
		return money.Money{}, err
	}

	invoices, err := s.invoiceRepo.List(ctx, nil, nil)
	if err != nil {
		return money.Money{}, err
	}

	total := money.Zero(c.DigitAfterComma)
	for _, inv := range invoices {
		if inv.CurrencyID != currencyID || !inv.IsPayable() {
			continue
		}
		if total, err = total.Add(inv.RemainingBalance(c.DigitAfterComma)); err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}
