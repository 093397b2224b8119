package document

import (
	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/pricing"
)

// Quotation is a selling quotation. It has no stamp, withholding or
// payments.
type Quotation struct {
	Header                  `yaml:",inline"`
	ArticleQuotationEntries []Article `yaml:"article_quotation_entries" validate:"dive"`
}

func (q *Quotation) Kind() domain.DocumentKind { return domain.KindQuotation }

func (q *Quotation) ToDocument(cat Catalog, precision int) (domain.Document, error) {
	lines, err := toLines(cat, q.ArticleQuotationEntries)
	if err != nil {
		return domain.Document{}, err
	}
	return q.document(q.Kind(), lines, precision), nil
}

func (q *Quotation) Apply(res *pricing.DocumentResult) {
	applyLines(q.ArticleQuotationEntries, res.Lines)
	q.Header.apply(res)
}

// ExpenseQuotation is a quotation received from a supplier.
type ExpenseQuotation struct {
	Header                         `yaml:",inline"`
	ArticleExpenseQuotationEntries []Article `yaml:"article_expense_quotation_entries" validate:"dive"`
}

func (q *ExpenseQuotation) Kind() domain.DocumentKind { return domain.KindExpenseQuotation }

func (q *ExpenseQuotation) ToDocument(cat Catalog, precision int) (domain.Document, error) {
	lines, err := toLines(cat, q.ArticleExpenseQuotationEntries)
	if err != nil {
		return domain.Document{}, err
	}
	return q.document(q.Kind(), lines, precision), nil
}

func (q *ExpenseQuotation) Apply(res *pricing.DocumentResult) {
	applyLines(q.ArticleExpenseQuotationEntries, res.Lines)
	q.Header.apply(res)
}
