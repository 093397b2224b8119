// Package document maps the four business documents (invoices, quotations
// and their expense counterparts) onto the generic pricing shape and writes
// the computed figures back under each document's own field names.
package document

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/money"
	"github.com/andy/billcalc/internal/pricing"
)

var ErrUnknownKind = errors.New("unknown document kind")

// Catalog resolves the tax and withholding references a document carries.
type Catalog interface {
	Tax(id int64) (domain.TaxDefinition, error)
	Withholding(id int64) (domain.TaxWithholding, error)
}

// Adapter is implemented by every document type.
type Adapter interface {
	Kind() domain.DocumentKind
	Reference() string
	Currency() int64
	ToDocument(cat Catalog, precision int) (domain.Document, error)
	Apply(res *pricing.DocumentResult)
}

// Header holds the fields every document type shares.
type Header struct {
	SequentialNumber string              `yaml:"sequential_number"`
	CurrencyID       int64               `yaml:"currency_id" validate:"required,gt=0"`
	Discount         float64             `yaml:"discount"`
	DiscountType     domain.DiscountType `yaml:"discount_type" validate:"omitempty,oneof=PERCENTAGE AMOUNT"`

	SubTotal   money.Money               `yaml:"-"`
	Total      money.Money               `yaml:"-"`
	TaxSummary []pricing.TaxSummaryEntry `yaml:"-"`
}

// Reference returns the sequential number.
func (h *Header) Reference() string { return h.SequentialNumber }

// Currency returns the document currency id.
func (h *Header) Currency() int64 { return h.CurrencyID }

func (h *Header) document(kind domain.DocumentKind, lines []domain.LineItem, precision int) domain.Document {
	return domain.Document{
		Kind:              kind,
		Lines:             lines,
		Discount:          h.Discount,
		DiscountType:      h.DiscountType,
		CurrencyPrecision: precision,
	}
}

func (h *Header) apply(res *pricing.DocumentResult) {
	h.SubTotal = res.Totals.SubTotal
	h.Total = res.Totals.Total
	h.TaxSummary = res.TaxSummary
}

// Article is one line of a document. SubTotal and Total are filled by
// Apply and never read back.
type Article struct {
	ID           int64               `yaml:"id"`
	Title        string              `yaml:"title"`
	Quantity     float64             `yaml:"quantity"`
	UnitPrice    float64             `yaml:"unit_price"`
	Discount     float64             `yaml:"discount"`
	DiscountType domain.DiscountType `yaml:"discount_type" validate:"omitempty,oneof=PERCENTAGE AMOUNT"`
	TaxIDs       []int64             `yaml:"tax_ids" validate:"dive,gt=0"`

	SubTotal money.Money `yaml:"-"`
	Total    money.Money `yaml:"-"`
}

func toLines(cat Catalog, articles []Article) ([]domain.LineItem, error) {
	lines := make([]domain.LineItem, len(articles))
	for i, a := range articles {
		taxes := make([]domain.TaxDefinition, 0, len(a.TaxIDs))
		for _, id := range a.TaxIDs {
			tax, err := cat.Tax(id)
			if err != nil {
				return nil, fmt.Errorf("article %d: %w", i+1, err)
			}
			taxes = append(taxes, tax)
		}
		lines[i] = domain.LineItem{
			ID:           a.ID,
			Description:  a.Title,
			Quantity:     a.Quantity,
			UnitPrice:    a.UnitPrice,
			Discount:     a.Discount,
			DiscountType: a.DiscountType,
			Taxes:        taxes,
		}
	}
	return lines, nil
}

func applyLines(articles []Article, lines []pricing.LineResult) {
	for i := range articles {
		if i >= len(lines) {
			return
		}
		articles[i].SubTotal = lines[i].SubTotal
		articles[i].Total = lines[i].Total
	}
}

func resolveStamp(cat Catalog, id *int64) (*domain.TaxDefinition, error) {
	if id == nil {
		return nil, nil
	}
	tax, err := cat.Tax(*id)
	if err != nil {
		return nil, fmt.Errorf("tax stamp: %w", err)
	}
	return &tax, nil
}

func resolveWithholding(cat Catalog, id *int64) (*float64, error) {
	if id == nil {
		return nil, nil
	}
	w, err := cat.Withholding(*id)
	if err != nil {
		return nil, fmt.Errorf("tax withholding: %w", err)
	}
	rate := w.Rate
	return &rate, nil
}

// Calculate maps the document in, runs a full pricing pass and writes the
// results back onto it.
func Calculate(a Adapter, cat Catalog, precision int, policy pricing.Policy) (*pricing.DocumentResult, error) {
	doc, err := a.ToDocument(cat, precision)
	if err != nil {
		return nil, err
	}
	res, err := pricing.Calculate(doc, policy)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", a.Kind(), a.Reference(), err)
	}
	a.Apply(res)
	return res, nil
}

// Validate runs the submit-time checks on the mapped document.
func Validate(a Adapter, cat Catalog, precision int) error {
	doc, err := a.ToDocument(cat, precision)
	if err != nil {
		return err
	}
	return doc.Validate()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type envelope struct {
	Kind domain.DocumentKind `yaml:"kind"`
}

// Parse decodes a YAML document whose top-level "kind" key selects the
// document type.
func Parse(data []byte) (Adapter, error) {
	var env envelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	a, err := New(env.Kind)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", env.Kind, err)
	}
	if err := validate.Struct(a); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", env.Kind, err)
	}
	return a, nil
}

// New returns an empty document of the given kind.
func New(kind domain.DocumentKind) (Adapter, error) {
	switch kind {
	case domain.KindInvoice:
		return &Invoice{}, nil
	case domain.KindQuotation:
		return &Quotation{}, nil
	case domain.KindExpenseInvoice:
		return &ExpenseInvoice{}, nil
	case domain.KindExpenseQuotation:
		return &ExpenseQuotation{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
