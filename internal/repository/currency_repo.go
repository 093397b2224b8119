package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billcalc/internal/domain"
)

// CurrencyRepo is a workbook implementation of CurrencyRepository
type CurrencyRepo struct {
	wb *Workbook
}

// NewCurrencyRepo creates a new CurrencyRepo
func NewCurrencyRepo(wb *Workbook) *CurrencyRepo {
	return &CurrencyRepo{wb: wb}
}

// GetByID retrieves a currency by ID
func (r *CurrencyRepo) GetByID(ctx context.Context, id int64) (*domain.Currency, error) {
	for i := range r.wb.currencies {
		if r.wb.currencies[i].ID == id {
			c := r.wb.currencies[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("currency %d: %w", id, ErrNotFound)
}

// GetByCode retrieves a currency by its ISO code
func (r *CurrencyRepo) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for i := range r.wb.currencies {
		if r.wb.currencies[i].Code == code {
			c := r.wb.currencies[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("currency %s: %w", code, ErrNotFound)
}

// List retrieves all currencies in workbook order
func (r *CurrencyRepo) List(ctx context.Context) ([]*domain.Currency, error) {
	out := make([]*domain.Currency, len(r.wb.currencies))
	for i := range r.wb.currencies {
		c := r.wb.currencies[i]
		out[i] = &c
	}
	return out, nil
}
