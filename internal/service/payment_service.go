package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andy/billcalc/internal/allocation"
	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/logger"
	"github.com/andy/billcalc/internal/money"
	"github.com/andy/billcalc/internal/repository"
)

var ErrFirmArchived = errors.New("firm is archived")

// AllocationEdit is one user change to an entry. The rate is applied before
// the amount so that a cross-currency entry can be edited in one step.
type AllocationEdit struct {
	InvoiceNumber string
	ExchangeRate  *float64
	Amount        *float64
	Fill          bool
	Clear         bool
}

// AllocationRequest describes a payment and the edits to apply to it.
type AllocationRequest struct {
	FirmID         int64
	CurrencyID     int64
	Amount         float64
	Fee            float64
	ConversionRate float64
	Edits          []AllocationEdit
}

// AllocationOutcome is the state of a payment after its edits were applied
// and the submit-time checks ran.
type AllocationOutcome struct {
	SessionID  string
	Payment    domain.Payment
	Entries    []allocation.EntryView
	Result     allocation.Result
	BaseAmount *money.Money // nil when no base currency is configured
}

// PaymentService spreads payments across a firm's outstanding invoices
type PaymentService interface {
	// Open seeds an allocation engine with the firm's payable invoices
	Open(ctx context.Context, firmID, currencyID int64, amount, fee float64) (*allocation.Engine, error)

	// Allocate opens a session, applies the edits and validates the result
	Allocate(ctx context.Context, req AllocationRequest) (*AllocationOutcome, error)
}

type paymentService struct {
	firmRepo       repository.FirmRepository
	invoiceRepo    repository.InvoiceRepository
	currencyRepo   repository.CurrencyRepository
	tolerance      decimal.Decimal
	baseCurrencyID int64
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	firmRepo repository.FirmRepository,
	invoiceRepo repository.InvoiceRepository,
	currencyRepo repository.CurrencyRepository,
	tolerance decimal.Decimal,
	baseCurrencyID int64,
) PaymentService {
	return &paymentService{
		firmRepo:       firmRepo,
		invoiceRepo:    invoiceRepo,
		currencyRepo:   currencyRepo,
		tolerance:      tolerance,
		baseCurrencyID: baseCurrencyID,
	}
}

func (s *paymentService) Open(ctx context.Context, firmID, currencyID int64, amount, fee float64) (*allocation.Engine, error) {
	firm, err := s.firmRepo.GetByID(ctx, firmID)
	if err != nil {
		return nil, err
	}
	if firm.IsArchived {
		return nil, fmt.Errorf("%s: %w", firm.Name, ErrFirmArchived)
	}
	if currencyID == 0 {
		currencyID = firm.CurrencyID
	}

	precision := precisionOf(ctx, s.currencyRepo)
	pp, err := precision(currencyID)
	if err != nil {
		return nil, err
	}

	payment := domain.Payment{
		FirmID:     firmID,
		CurrencyID: currencyID,
		Amount:     money.New(amount, pp),
		Fee:        money.New(fee, pp),
	}
	engine := allocation.NewEngine(payment, precision,
		allocation.WithTolerance(s.tolerance),
		allocation.WithLogger(logger.WithComponent("allocation")),
	)

	invoices, err := s.invoiceRepo.List(ctx, &firmID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	values := make([]domain.Invoice, len(invoices))
	for i, inv := range invoices {
		values[i] = *inv
	}
	if err := engine.Seed(values); err != nil {
		return nil, err
	}

	return engine, nil
}

func (s *paymentService) Allocate(ctx context.Context, req AllocationRequest) (*AllocationOutcome, error) {
	engine, err := s.Open(ctx, req.FirmID, req.CurrencyID, req.Amount, req.Fee)
	if err != nil {
		return nil, err
	}
	log := logger.WithRequestID(engine.ID())

	index := make(map[string]int64)
	for _, e := range engine.Entries() {
		index[e.InvoiceNumber] = e.InvoiceID
	}

	for _, edit := range req.Edits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, ok := index[edit.InvoiceNumber]
		if !ok {
			return nil, fmt.Errorf("invoice %s: %w", edit.InvoiceNumber, allocation.ErrEntryNotFound)
		}
		if err := applyEdit(engine, id, edit); err != nil {
			return nil, fmt.Errorf("invoice %s: %w", edit.InvoiceNumber, err)
		}
	}

	res, err := engine.Validate()
	if err != nil {
		return nil, err
	}

	payment := engine.Payment()
	payment.ConversionRate = req.ConversionRate
	out := &AllocationOutcome{
		SessionID: engine.ID(),
		Payment:   payment,
		Entries:   engine.Views(),
		Result:    res,
	}

	if s.baseCurrencyID > 0 {
		bp, err := precisionOf(ctx, s.currencyRepo)(s.baseCurrencyID)
		if err != nil {
			return nil, fmt.Errorf("base currency: %w", err)
		}
		base, err := payment.BaseAmount(bp)
		if err != nil {
			return nil, err
		}
		out.BaseAmount = &base
	}

	if res.Valid {
		log.Info().
			Int64("firm_id", req.FirmID).
			Int("entries", len(out.Entries)).
			Str("used", res.UsedAmount.String()).
			Msg("Payment allocation accepted")
	}
	return out, nil
}

func applyEdit(engine *allocation.Engine, invoiceID int64, edit AllocationEdit) error {
	if edit.ExchangeRate != nil {
		if err := engine.SetExchangeRate(invoiceID, *edit.ExchangeRate); err != nil {
			return err
		}
	}
	switch {
	case edit.Clear:
		return engine.ClearAmount(invoiceID)
	case edit.Fill:
		_, err := engine.Fill(invoiceID)
		return err
	case edit.Amount != nil:
		_, err := engine.SetAmount(invoiceID, *edit.Amount)
		return err
	}
	return nil
}
