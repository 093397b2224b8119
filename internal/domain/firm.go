package domain

import (
	"errors"
	"strings"
	"time"
)

// Firm is a counterparty (customer or supplier) that invoices are issued
// to or received from.
type Firm struct {
	ID         int64
	Name       string
	Email      string
	CurrencyID int64
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewFirm creates a new firm with required fields
func NewFirm(name string, currencyID int64) *Firm {
	now := time.Now()
	return &Firm{
		Name:       strings.TrimSpace(name),
		CurrencyID: currencyID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate returns an error if the firm is invalid
func (f *Firm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("firm name is required")
	}
	if f.CurrencyID <= 0 {
		return errors.New("firm currency is required")
	}
	return nil
}
