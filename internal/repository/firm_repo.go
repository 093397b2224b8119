package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/andy/billcalc/internal/domain"
)

// FirmRepo is a workbook implementation of FirmRepository
type FirmRepo struct {
	wb *Workbook
}

// NewFirmRepo creates a new FirmRepo
func NewFirmRepo(wb *Workbook) *FirmRepo {
	return &FirmRepo{wb: wb}
}

// GetByID retrieves a firm by ID
func (r *FirmRepo) GetByID(ctx context.Context, id int64) (*domain.Firm, error) {
	for i := range r.wb.firms {
		if r.wb.firms[i].ID == id {
			firm := r.wb.firms[i]
			return &firm, nil
		}
	}
	return nil, fmt.Errorf("firm %d: %w", id, ErrNotFound)
}

// GetByName retrieves a firm by name, ignoring case
func (r *FirmRepo) GetByName(ctx context.Context, name string) (*domain.Firm, error) {
	name = strings.TrimSpace(name)
	for i := range r.wb.firms {
		if strings.EqualFold(r.wb.firms[i].Name, name) {
			firm := r.wb.firms[i]
			return &firm, nil
		}
	}
	return nil, fmt.Errorf("firm %q: %w", name, ErrNotFound)
}

// List retrieves all firms ordered by name, optionally including archived ones
func (r *FirmRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Firm, error) {
	firms := make([]*domain.Firm, 0, len(r.wb.firms))
	for i := range r.wb.firms {
		if r.wb.firms[i].IsArchived && !includeArchived {
			continue
		}
		firm := r.wb.firms[i]
		firms = append(firms, &firm)
	}
	sort.Slice(firms, func(i, j int) bool { return firms[i].Name < firms[j].Name })
	return firms, nil
}
