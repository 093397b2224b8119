package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var firmCmd = &cobra.Command{
	Use:   "firm",
	Short: "Inspect firms and their balances",
}

var firmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List firms",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := requireApp(ctx)
		if err != nil {
			return err
		}

		includeArchived, _ := cmd.Flags().GetBool("archived")
		firms, err := a.FirmRepo.List(ctx, includeArchived)
		if err != nil {
			return fmt.Errorf("failed to list firms: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(firms) == 0 {
			fmt.Fprintln(out, "No firms found")
			return nil
		}

		fmt.Fprintf(out, "%-5s %-30s %-30s %-5s\n", "ID", "Name", "Email", "Cur")
		fmt.Fprintln(out, "------------------------------------------------------------------------")
		for _, f := range firms {
			code := "?"
			if c, err := a.CurrencyRepo.GetByID(ctx, f.CurrencyID); err == nil {
				code = c.Code
			}
			name := f.Name
			if f.IsArchived {
				name += " (archived)"
			}
			fmt.Fprintf(out, "%-5d %-30s %-30s %-5s\n", f.ID, truncate(name, 30), truncate(f.Email, 30), code)
		}

		fmt.Fprintf(out, "\nTotal: %d firm(s)\n", len(firms))
		return nil
	},
}

var firmBalanceCmd = &cobra.Command{
	Use:   "balance [firm_id_or_name]",
	Short: "Show outstanding balances of a firm per currency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if _, err := requireApp(ctx); err != nil {
			return err
		}
		p, err := printer(cmd)
		if err != nil {
			return err
		}

		firmID, err := resolveFirmID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve firm: %w", err)
		}

		fb, err := appInstance.ReportService.GetFirmBalance(ctx, firmID)
		if err != nil {
			return fmt.Errorf("failed to compute balance: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", fb.Firm.Name)
		if len(fb.Balances) == 0 {
			fmt.Fprintln(out, "No outstanding invoices")
			return nil
		}

		for _, cb := range fb.Balances {
			fmt.Fprintf(out, "%s (%s)\n", cb.Currency.Label, cb.Currency.Code)
			for _, ib := range cb.Invoices {
				p.Fprintf(out, "  %-16s %-16s %20s\n",
					truncate(ib.Invoice.SequentialNumber, 16),
					ib.Status,
					amountIn(p, ib.Remaining, &cb.Currency),
				)
			}
			p.Fprintf(out, "  %-33s %20s\n\n", "Outstanding:", amountIn(p, cb.Remaining, &cb.Currency))
		}
		return nil
	},
}

func resolveFirmID(ctx context.Context, idOrName string) (int64, error) {
	// Try to parse as ID first
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		if _, err := appInstance.FirmRepo.GetByID(ctx, id); err != nil {
			return 0, err
		}
		return id, nil
	}

	firm, err := appInstance.FirmRepo.GetByName(ctx, idOrName)
	if err != nil {
		return 0, err
	}
	return firm.ID, nil
}

func init() {
	firmListCmd.Flags().Bool("archived", false, "Include archived firms")

	firmCmd.AddCommand(firmListCmd)
	firmCmd.AddCommand(firmBalanceCmd)
}
