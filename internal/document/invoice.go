package document

import (
	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/money"
	"github.com/andy/billcalc/internal/pricing"
)

// Settlement holds the fields invoices carry and quotations do not.
type Settlement struct {
	TaxStampID       *int64  `yaml:"tax_stamp_id" validate:"omitempty,gt=0"`
	TaxWithholdingID *int64  `yaml:"tax_withholding_id" validate:"omitempty,gt=0"`
	AmountPaid       float64 `yaml:"amount_paid" validate:"gte=0"`

	TaxStampAmount       money.Money `yaml:"-"`
	TaxWithholdingAmount money.Money `yaml:"-"`
	RemainingAmount      money.Money `yaml:"-"`
}

func (s *Settlement) fill(cat Catalog, doc *domain.Document) error {
	stamp, err := resolveStamp(cat, s.TaxStampID)
	if err != nil {
		return err
	}
	rate, err := resolveWithholding(cat, s.TaxWithholdingID)
	if err != nil {
		return err
	}
	doc.TaxStamp = stamp
	doc.WithholdingRate = rate
	doc.AmountPaid = s.AmountPaid
	return nil
}

func (s *Settlement) apply(res *pricing.DocumentResult) {
	s.TaxStampAmount = res.Totals.TaxStampAmount
	s.TaxWithholdingAmount = res.Totals.WithholdingAmount
	s.RemainingAmount = res.Totals.RemainingAmount
}

// Invoice is a selling invoice.
type Invoice struct {
	Header                `yaml:",inline"`
	Settlement            `yaml:",inline"`
	ArticleInvoiceEntries []Article `yaml:"article_invoice_entries" validate:"dive"`
}

func (i *Invoice) Kind() domain.DocumentKind { return domain.KindInvoice }

func (i *Invoice) ToDocument(cat Catalog, precision int) (domain.Document, error) {
	lines, err := toLines(cat, i.ArticleInvoiceEntries)
	if err != nil {
		return domain.Document{}, err
	}
	doc := i.document(i.Kind(), lines, precision)
	if err := i.fill(cat, &doc); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

func (i *Invoice) Apply(res *pricing.DocumentResult) {
	applyLines(i.ArticleInvoiceEntries, res.Lines)
	i.Header.apply(res)
	i.Settlement.apply(res)
}

// ExpenseInvoice is an invoice received from a supplier.
type ExpenseInvoice struct {
	Header                       `yaml:",inline"`
	Settlement                   `yaml:",inline"`
	SupplierReference            string    `yaml:"supplier_reference"`
	ArticleExpenseInvoiceEntries []Article `yaml:"article_expense_invoice_entries" validate:"dive"`
}

func (e *ExpenseInvoice) Kind() domain.DocumentKind { return domain.KindExpenseInvoice }

// Reference prefers the supplier's own number.
func (e *ExpenseInvoice) Reference() string {
	if e.SupplierReference != "" {
		return e.SupplierReference
	}
	return e.SequentialNumber
}

func (e *ExpenseInvoice) ToDocument(cat Catalog, precision int) (domain.Document, error) {
	lines, err := toLines(cat, e.ArticleExpenseInvoiceEntries)
	if err != nil {
		return domain.Document{}, err
	}
	doc := e.document(e.Kind(), lines, precision)
	if err := e.fill(cat, &doc); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

func (e *ExpenseInvoice) Apply(res *pricing.DocumentResult) {
	applyLines(e.ArticleExpenseInvoiceEntries, res.Lines)
	e.Header.apply(res)
	e.Settlement.apply(res)
}
