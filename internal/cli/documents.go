package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/andy/billcalc/internal/document"
	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/money"
	"github.com/andy/billcalc/internal/pricing"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Compute invoices and quotations",
	Long:  `Compute line, tax and document totals for invoices, quotations and their expense counterparts.`,
}

var documentCalcCmd = &cobra.Command{
	Use:   "calc [file]",
	Short: "Compute a document described in a YAML file",
	Long: `Compute a document described in a YAML file. The top-level "kind" key is one
of invoice, quotation, expense_invoice or expense_quotation.

Example:
  kind: invoice
  sequential_number: INV-2024-010
  currency_id: 1
  discount: 5
  discount_type: AMOUNT
  tax_stamp_id: 3
  article_invoice_entries:
    - title: Consulting
      quantity: 2
      unit_price: 50
      discount: 10
      tax_ids: [1]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := requireApp(ctx)
		if err != nil {
			return err
		}
		p, err := printer(cmd)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
		doc, err := document.Parse(data)
		if err != nil {
			return err
		}

		if strict, _ := cmd.Flags().GetBool("validate"); strict {
			if err := a.DocumentService.Validate(ctx, doc); err != nil {
				return fmt.Errorf("document is not valid: %w", err)
			}
		}

		res, err := a.DocumentService.Calculate(ctx, doc)
		if err != nil {
			return fmt.Errorf("failed to calculate document: %w", err)
		}
		currency, err := a.DocumentService.Currency(ctx, doc)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		title := doc.Reference()
		if title == "" {
			title = "(unnumbered)"
		}
		p.Fprintf(out, "%s %s\n\n", doc.Kind(), title)

		p.Fprintf(out, "%-4s %-24s %16s %16s\n", "#", "Line", "Subtotal", "Total")
		fmt.Fprintln(out, "----------------------------------------------------------------")
		for i, line := range res.Lines {
			p.Fprintf(out, "%-4d %-24s %16s %16s\n",
				i+1,
				truncate(lineTitle(doc, i), 24),
				amount(p, line.SubTotal),
				amount(p, line.Total),
			)
		}

		if len(res.TaxSummary) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Taxes:")
			for _, tax := range res.TaxSummary {
				p.Fprintf(out, "  %-30s %16s\n", truncate(tax.Label, 30), amount(p, tax.Amount))
			}
		}

		printTotals(p, out, res.Totals, currency)
		return nil
	},
}

func printTotals(p *message.Printer, out io.Writer, t pricing.Totals, c *domain.Currency) {
	row := func(label string, m money.Money) {
		p.Fprintf(out, "  %-20s %20s\n", label, amountIn(p, m, c))
	}

	fmt.Fprintln(out)
	row("Subtotal:", t.SubTotal)
	if !t.DiscountAmount.IsZero() {
		row("Discount:", t.DiscountAmount.Neg())
	}
	if !t.TaxStampAmount.IsZero() {
		row("Tax stamp:", t.TaxStampAmount)
	}
	row("Total:", t.Total)
	if !t.WithholdingAmount.IsZero() {
		row("Withholding:", t.WithholdingAmount)
	}
	if !t.AmountPaid.IsZero() || !t.WithholdingAmount.IsZero() {
		row("Remaining:", t.RemainingAmount)
	}
}

func lineTitle(doc document.Adapter, i int) string {
	if lines := articlesOf(doc); i < len(lines) && lines[i].Title != "" {
		return lines[i].Title
	}
	return fmt.Sprintf("line %d", i+1)
}

func articlesOf(doc document.Adapter) []document.Article {
	switch d := doc.(type) {
	case *document.Invoice:
		return d.ArticleInvoiceEntries
	case *document.Quotation:
		return d.ArticleQuotationEntries
	case *document.ExpenseInvoice:
		return d.ArticleExpenseInvoiceEntries
	case *document.ExpenseQuotation:
		return d.ArticleExpenseQuotationEntries
	}
	return nil
}

func init() {
	documentCalcCmd.Flags().Bool("validate", false, "Run submit-time checks before computing")

	documentCmd.AddCommand(documentCalcCmd)
}
