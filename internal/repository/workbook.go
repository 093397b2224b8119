package repository

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/andy/billcalc/internal/domain"
)

type currencyRecord struct {
	ID              int64  `yaml:"id" validate:"required,gt=0"`
	Code            string `yaml:"code" validate:"required,alpha,len=3"`
	Label           string `yaml:"label"`
	Symbol          string `yaml:"symbol"`
	DigitAfterComma int    `yaml:"digit_after_comma" validate:"gte=0,lte=8"`
}

type taxRecord struct {
	ID        int64   `yaml:"id" validate:"required,gt=0"`
	Label     string  `yaml:"label" validate:"required"`
	Value     float64 `yaml:"value" validate:"gte=0"`
	IsRate    bool    `yaml:"is_rate"`
	IsSpecial bool    `yaml:"is_special"`
}

type withholdingRecord struct {
	ID    int64   `yaml:"id" validate:"required,gt=0"`
	Label string  `yaml:"label" validate:"required"`
	Rate  float64 `yaml:"rate" validate:"gte=0,lte=100"`
}

type firmRecord struct {
	ID         int64  `yaml:"id" validate:"required,gt=0"`
	Name       string `yaml:"name" validate:"required"`
	Email      string `yaml:"email" validate:"omitempty,email"`
	CurrencyID int64  `yaml:"currency_id" validate:"required,gt=0"`
	IsArchived bool   `yaml:"is_archived"`
	CreatedAt  string `yaml:"created_at"`
	UpdatedAt  string `yaml:"updated_at"`
}

type invoiceRecord struct {
	ID                   int64   `yaml:"id" validate:"required,gt=0"`
	FirmID               int64   `yaml:"firm_id" validate:"required,gt=0"`
	SequentialNumber     string  `yaml:"sequential_number" validate:"required"`
	CurrencyID           int64   `yaml:"currency_id" validate:"required,gt=0"`
	Status               string  `yaml:"status" validate:"required,oneof=draft validated sent unpaid partially_paid paid expired archived"`
	Total                float64 `yaml:"total"`
	AmountPaid           float64 `yaml:"amount_paid" validate:"gte=0"`
	TaxWithholdingAmount float64 `yaml:"tax_withholding_amount" validate:"gte=0"`
}

type workbookFile struct {
	Currencies   []currencyRecord    `yaml:"currencies" validate:"dive"`
	Taxes        []taxRecord         `yaml:"taxes" validate:"dive"`
	Withholdings []withholdingRecord `yaml:"withholdings" validate:"dive"`
	Firms        []firmRecord        `yaml:"firms" validate:"dive"`
	Invoices     []invoiceRecord     `yaml:"invoices" validate:"dive"`
}

// Workbook is an immutable, in-memory catalogue loaded from a YAML file.
// It is safe for concurrent reads.
type Workbook struct {
	currencies   []domain.Currency
	taxes        []domain.TaxDefinition
	withholdings []domain.TaxWithholding
	firms        []domain.Firm
	invoices     []domain.Invoice
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadWorkbook reads and validates a workbook file.
func LoadWorkbook(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	wb, err := ParseWorkbook(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wb, nil
}

// ParseWorkbook decodes and validates workbook YAML, including references
// between sections.
func ParseWorkbook(data []byte) (*Workbook, error) {
	var f workbookFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse workbook: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}

	wb := &Workbook{}
	currencyIDs := make(map[int64]bool, len(f.Currencies))
	for _, r := range f.Currencies {
		if currencyIDs[r.ID] {
			return nil, fmt.Errorf("duplicate currency id %d", r.ID)
		}
		currencyIDs[r.ID] = true
		wb.currencies = append(wb.currencies, domain.Currency{
			ID:              r.ID,
			Code:            strings.ToUpper(r.Code),
			Label:           r.Label,
			Symbol:          r.Symbol,
			DigitAfterComma: r.DigitAfterComma,
		})
	}

	taxIDs := make(map[int64]bool, len(f.Taxes))
	for _, r := range f.Taxes {
		if taxIDs[r.ID] {
			return nil, fmt.Errorf("duplicate tax id %d", r.ID)
		}
		taxIDs[r.ID] = true
		tax := domain.TaxDefinition{ID: r.ID, Label: r.Label, Value: r.Value, IsRate: r.IsRate, IsSpecial: r.IsSpecial}
		if err := tax.Validate(); err != nil {
			return nil, fmt.Errorf("invalid tax: %w", err)
		}
		wb.taxes = append(wb.taxes, tax)
	}

	withholdingIDs := make(map[int64]bool, len(f.Withholdings))
	for _, r := range f.Withholdings {
		if withholdingIDs[r.ID] {
			return nil, fmt.Errorf("duplicate withholding id %d", r.ID)
		}
		withholdingIDs[r.ID] = true
		wb.withholdings = append(wb.withholdings, domain.TaxWithholding{ID: r.ID, Label: r.Label, Rate: r.Rate})
	}

	firmIDs := make(map[int64]bool, len(f.Firms))
	for _, r := range f.Firms {
		if firmIDs[r.ID] {
			return nil, fmt.Errorf("duplicate firm id %d", r.ID)
		}
		if !currencyIDs[r.CurrencyID] {
			return nil, fmt.Errorf("firm %q: unknown currency %d", r.Name, r.CurrencyID)
		}
		createdAt, err := parseTime(r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("firm %q: failed to parse created_at: %w", r.Name, err)
		}
		updatedAt, err := parseTime(r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("firm %q: failed to parse updated_at: %w", r.Name, err)
		}
		firmIDs[r.ID] = true
		wb.firms = append(wb.firms, domain.Firm{
			ID:         r.ID,
			Name:       strings.TrimSpace(r.Name),
			Email:      r.Email,
			CurrencyID: r.CurrencyID,
			IsArchived: r.IsArchived,
			CreatedAt:  createdAt,
			UpdatedAt:  updatedAt,
		})
	}

	invoiceIDs := make(map[int64]bool, len(f.Invoices))
	invoiceNumbers := make(map[string]bool, len(f.Invoices))
	for _, r := range f.Invoices {
		if invoiceIDs[r.ID] {
			return nil, fmt.Errorf("duplicate invoice id %d", r.ID)
		}
		if invoiceNumbers[r.SequentialNumber] {
			return nil, fmt.Errorf("duplicate invoice number %s", r.SequentialNumber)
		}
		invoiceIDs[r.ID] = true
		invoiceNumbers[r.SequentialNumber] = true
		if !firmIDs[r.FirmID] {
			return nil, fmt.Errorf("invoice %s: unknown firm %d", r.SequentialNumber, r.FirmID)
		}
		if !currencyIDs[r.CurrencyID] {
			return nil, fmt.Errorf("invoice %s: unknown currency %d", r.SequentialNumber, r.CurrencyID)
		}
		wb.invoices = append(wb.invoices, domain.Invoice{
			ID:                   r.ID,
			FirmID:               r.FirmID,
			SequentialNumber:     r.SequentialNumber,
			CurrencyID:           r.CurrencyID,
			Status:               domain.InvoiceStatus(r.Status),
			Total:                r.Total,
			AmountPaid:           r.AmountPaid,
			TaxWithholdingAmount: r.TaxWithholdingAmount,
		})
	}

	return wb, nil
}
