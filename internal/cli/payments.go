package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andy/billcalc/internal/service"
)

var errAllocationRejected = errors.New("allocation rejected")

var validate = validator.New(validator.WithRequiredStructEnabled())

// paymentFile is the YAML shape read by "payment allocate".
type paymentFile struct {
	FirmID         int64            `yaml:"firm_id" validate:"required,gt=0"`
	CurrencyID     int64            `yaml:"currency_id" validate:"gte=0"`
	Amount         float64          `yaml:"amount" validate:"gte=0"`
	Fee            float64          `yaml:"fee" validate:"gte=0"`
	ConversionRate float64          `yaml:"conversion_rate" validate:"gte=0"`
	Allocations    []allocationEdit `yaml:"allocations" validate:"dive"`
}

type allocationEdit struct {
	Invoice      string   `yaml:"invoice" validate:"required"`
	ExchangeRate *float64 `yaml:"exchange_rate" validate:"omitempty,gt=0"`
	Amount       *float64 `yaml:"amount" validate:"omitempty,gte=0"`
	Fill         bool     `yaml:"fill"`
	Clear        bool     `yaml:"clear"`
}

func parsePaymentFile(data []byte) (service.AllocationRequest, error) {
	var f paymentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return service.AllocationRequest{}, fmt.Errorf("failed to parse payment: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return service.AllocationRequest{}, fmt.Errorf("invalid payment: %w", err)
	}

	req := service.AllocationRequest{
		FirmID:         f.FirmID,
		CurrencyID:     f.CurrencyID,
		Amount:         f.Amount,
		Fee:            f.Fee,
		ConversionRate: f.ConversionRate,
	}
	for _, a := range f.Allocations {
		req.Edits = append(req.Edits, service.AllocationEdit{
			InvoiceNumber: a.Invoice,
			ExchangeRate:  a.ExchangeRate,
			Amount:        a.Amount,
			Fill:          a.Fill,
			Clear:         a.Clear,
		})
	}
	return req, nil
}

var paymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Allocate payments to invoices",
}

var paymentAllocateCmd = &cobra.Command{
	Use:   "allocate [file]",
	Short: "Spread a payment across a firm's outstanding invoices",
	Long: `Spread a payment across a firm's outstanding invoices and run the
submit-time checks. Edits are applied in file order; exchange rates are read
as invoice-currency units per payment-currency unit.

Example:
  firm_id: 1
  currency_id: 1
  amount: 340
  fee: 10
  allocations:
    - invoice: INV-2024-001
      fill: true
    - invoice: INV-2024-002
      exchange_rate: 0.3
      amount: 100`,
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
			return fmt.Errorf("failed to read payment: %w", err)
		}
		req, err := parsePaymentFile(data)
		if err != nil {
			return err
		}

		outcome, err := a.PaymentService.Allocate(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to allocate payment: %w", err)
		}

		payCurrency, err := a.CurrencyRepo.GetByID(ctx, outcome.Payment.CurrencyID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		p.Fprintf(out, "%-16s %-5s %18s %18s %10s %18s  %s\n", "Invoice", "Cur", "Remaining", "Max", "Rate", "Allocated", "State")
		fmt.Fprintln(out, "--------------------------------------------------------------------------------------------------------------")
		for _, v := range outcome.Entries {
			invCurrency, err := a.CurrencyRepo.GetByID(ctx, v.Entry.InvoiceCurrencyID)
			if err != nil {
				return err
			}
			limit := "rate needed"
			if v.MaxAllowed != nil {
				limit = amount(p, *v.MaxAllowed)
			}
			rate := "-"
			if v.Entry.ExchangeRate > 0 {
				rate = p.Sprintf("%g", v.Entry.ExchangeRate)
			}
			p.Fprintf(out, "%-16s %-5s %18s %18s %10s %18s  %s\n",
				truncate(v.Entry.InvoiceNumber, 16),
				invCurrency.Code,
				amount(p, v.Entry.InvoiceRemainingBalance),
				limit,
				rate,
				amount(p, v.Entry.Amount(outcome.Payment.Precision())),
				v.State,
			)
		}

		available, err := outcome.Payment.Available()
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		p.Fprintf(out, "  %-22s %20s\n", "Amount + fee:", amountIn(p, available, payCurrency))
		p.Fprintf(out, "  %-22s %20s\n", "Allocated:", amountIn(p, outcome.Result.UsedAmount, payCurrency))
		p.Fprintf(out, "  %-22s %20s\n", "Left to allocate:", amountIn(p, outcome.Result.RemainingToAllocate, payCurrency))
		if outcome.BaseAmount != nil {
			base, err := a.CurrencyRepo.GetByID(ctx, a.Config.Calculation.BaseCurrencyID)
			if err != nil {
				return err
			}
			p.Fprintf(out, "  %-22s %20s\n", "In base currency:", amountIn(p, *outcome.BaseAmount, base))
		}
		fmt.Fprintln(out)

		if !outcome.Result.Valid {
			fmt.Fprintf(out, "✗ %s\n", outcome.Result.Reason)
			return errAllocationRejected
		}
		fmt.Fprintln(out, "✓ Allocation is valid")
		return nil
	},
}

func init() {
	paymentCmd.AddCommand(paymentAllocateCmd)
}
