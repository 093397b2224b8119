package repository

import (
	"context"
	"errors"

	"github.com/andy/billcalc/internal/domain"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("not found")

// CurrencyRepository provides the currency catalogue
type CurrencyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Currency, error)
	GetByCode(ctx context.Context, code string) (*domain.Currency, error)
	List(ctx context.Context) ([]*domain.Currency, error)
}

// TaxRepository provides tax definitions and withholding rates
type TaxRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TaxDefinition, error)
	List(ctx context.Context) ([]*domain.TaxDefinition, error)
	GetWithholding(ctx context.Context, id int64) (*domain.TaxWithholding, error)
	ListWithholdings(ctx context.Context) ([]*domain.TaxWithholding, error)
}

// FirmRepository provides counterparties
type FirmRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Firm, error)
	GetByName(ctx context.Context, name string) (*domain.Firm, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Firm, error)
}

// InvoiceRepository provides counterpart invoices a payment can settle
type InvoiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	List(ctx context.Context, firmID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error)
}
