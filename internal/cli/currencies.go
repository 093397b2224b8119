package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var currenciesCmd = &cobra.Command{
	Use:   "currencies",
	Short: "List currencies, taxes and withholding rates from the workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := requireApp(ctx)
		if err != nil {
			return err
		}

		currencies, err := a.CurrencyRepo.List(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-5s %-5s %-24s %-6s %s\n", "ID", "Code", "Label", "Symbol", "Digits")
		fmt.Fprintln(out, "--------------------------------------------------------")
		for _, c := range currencies {
			fmt.Fprintf(out, "%-5d %-5s %-24s %-6s %d\n", c.ID, c.Code, truncate(c.Label, 24), c.Symbol, c.DigitAfterComma)
		}

		if showTaxes, _ := cmd.Flags().GetBool("taxes"); !showTaxes {
			return nil
		}

		taxes, err := a.TaxRepo.List(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-5s %-24s %10s %-6s %s\n", "ID", "Tax", "Value", "Kind", "Applies to")
		fmt.Fprintln(out, "--------------------------------------------------------")
		for _, t := range taxes {
			kind := "fixed"
			if t.IsRate {
				kind = "rate"
			}
			base := "subtotal"
			if t.IsSpecial {
				base = "after taxes"
			}
			fmt.Fprintf(out, "%-5d %-24s %10g %-6s %s\n", t.ID, truncate(t.Label, 24), t.Value, kind, base)
		}

		withholdings, err := a.TaxRepo.ListWithholdings(ctx)
		if err != nil {
			return err
		}
		if len(withholdings) > 0 {
			fmt.Fprintln(out)
			for _, w := range withholdings {
				fmt.Fprintf(out, "%-5d %-24s %9g%%\n", w.ID, truncate(w.Label, 24), w.Rate)
			}
		}
		return nil
	},
}

func init() {
	currenciesCmd.Flags().Bool("taxes", false, "Also list taxes and withholding rates")
}
