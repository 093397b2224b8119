package repository

import (
	"context"
	"fmt"

	"github.com/andy/billcalc/internal/domain"
)

// InvoiceRepo is a workbook implementation of InvoiceRepository
type InvoiceRepo struct {
	wb *Workbook
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(wb *Workbook) *InvoiceRepo {
	return &InvoiceRepo{wb: wb}
}

// GetByID retrieves an invoice by ID
func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	for i := range r.wb.invoices {
		if r.wb.invoices[i].ID == id {
			inv := r.wb.invoices[i]
			return &inv, nil
		}
	}
	return nil, fmt.Errorf("invoice %d: %w", id, ErrNotFound)
}

// GetByNumber retrieves an invoice by its sequential number
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	for i := range r.wb.invoices {
		if r.wb.invoices[i].SequentialNumber == number {
			inv := r.wb.invoices[i]
			return &inv, nil
		}
	}
	return nil, fmt.Errorf("invoice %s: %w", number, ErrNotFound)
}

// List retrieves invoices in workbook order, optionally filtered by firm and status
func (r *InvoiceRepo) List(ctx context.Context, firmID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	invoices := make([]*domain.Invoice, 0)
	for i := range r.wb.invoices {
		inv := r.wb.invoices[i]
		if firmID != nil && inv.FirmID != *firmID {
			continue
		}
		if status != nil && inv.Status != *status {
			continue
		}
		invoices = append(invoices, &inv)
	}
	return invoices, nil
}
