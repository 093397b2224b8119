package repository

import (
	"context"
	"fmt"

	"github.com/andy/billcalc/internal/domain"
)

// TaxRepo is a workbook implementation of TaxRepository
type TaxRepo struct {
	wb *Workbook
}

// NewTaxRepo creates a new TaxRepo
func NewTaxRepo(wb *Workbook) *TaxRepo {
	return &TaxRepo{wb: wb}
}

// GetByID retrieves a tax definition by ID
func (r *TaxRepo) GetByID(ctx context.Context, id int64) (*domain.TaxDefinition, error) {
	for i := range r.wb.taxes {
		if r.wb.taxes[i].ID == id {
			t := r.wb.taxes[i]
			return &t, nil
		}
	}
	return nil, fmt.Errorf("tax %d: %w", id, ErrNotFound)
}

// List retrieves all tax definitions in workbook order
func (r *TaxRepo) List(ctx context.Context) ([]*domain.TaxDefinition, error) {
	out := make([]*domain.TaxDefinition, len(r.wb.taxes))
	for i := range r.wb.taxes {
		t := r.wb.taxes[i]
		out[i] = &t
	}
	return out, nil
}

// GetWithholding retrieves a withholding rate by ID
func (r *TaxRepo) GetWithholding(ctx context.Context, id int64) (*domain.TaxWithholding, error) {
	for i := range r.wb.withholdings {
		if r.wb.withholdings[i].ID == id {
			w := r.wb.withholdings[i]
			return &w, nil
		}
	}
	return nil, fmt.Errorf("withholding %d: %w", id, ErrNotFound)
}

// ListWithholdings retrieves all withholding rates in workbook order
func (r *TaxRepo) ListWithholdings(ctx context.Context) ([]*domain.TaxWithholding, error) {
	out := make([]*domain.TaxWithholding, len(r.wb.withholdings))
	for i := range r.wb.withholdings {
		w := r.wb.withholdings[i]
		out[i] = &w
	}
	return out, nil
}
