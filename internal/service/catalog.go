package service

import (
	"context"
	"fmt"

	"github.com/andy/billcalc/internal/allocation"
	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/repository"
)

// taxCatalog binds a TaxRepository to one request context so that document
// adapters can resolve their tax references.
type taxCatalog struct {
	ctx  context.Context
	repo repository.TaxRepository
}

func (c taxCatalog) Tax(id int64) (domain.TaxDefinition, error) {
	t, err := c.repo.GetByID(c.ctx, id)
	if err != nil {
		return domain.TaxDefinition{}, err
	}
	return *t, nil
}

func (c taxCatalog) Withholding(id int64) (domain.TaxWithholding, error) {
	w, err := c.repo.GetWithholding(c.ctx, id)
	if err != nil {
		return domain.TaxWithholding{}, err
	}
	return *w, nil
}

// precisionOf returns a lookup of currency precision backed by repo. Results
// are cached for the lifetime of the returned function.
func precisionOf(ctx context.Context, repo repository.CurrencyRepository) allocation.PrecisionFunc {
	cache := make(map[int64]int)
	return func(currencyID int64) (int, error) {
		if p, ok := cache[currencyID]; ok {
			return p, nil
		}
		c, err := repo.GetByID(ctx, currencyID)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", allocation.ErrUnknownCurrency, err)
		}
		cache[currencyID] = c.DigitAfterComma
		return c.DigitAfterComma, nil
	}
}
