package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/money"
)

// printer formats amounts with the grouping rules of --locale.
func printer(cmd *cobra.Command) (*message.Printer, error) {
	loc, _ := cmd.Flags().GetString("locale")
	tag, err := language.Parse(loc)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", loc, err)
	}
	return message.NewPrinter(tag), nil
}

// amount renders m at its own precision with locale grouping
func amount(p *message.Printer, m money.Money) string {
	return p.Sprintf(fmt.Sprintf("%%.%df", m.Precision()), m.Float64())
}

// amountIn renders m followed by the currency symbol, or its code
func amountIn(p *message.Printer, m money.Money, c *domain.Currency) string {
	if c == nil {
		return amount(p, m)
	}
	unit := c.Symbol
	if unit == "" {
		unit = c.Code
	}
	return amount(p, m) + " " + unit
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
