package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/billcalc/internal/app"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "billcalc",
	Short: "Document totals and multi-currency payment allocation",
	Long: `Billcalc computes invoice and quotation totals (discounts, cascading
taxes, tax stamps, withholding) and spreads payments across a firm's
outstanding invoices, possibly in several currencies.

Reference data (currencies, taxes, firms, invoices) is read from a YAML
workbook configured in ~/.config/billcalc/config.yaml.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

// requireApp builds the app on first use so that commands which do not need
// the workbook (config, help) work without one.
func requireApp(ctx context.Context) (*app.App, error) {
	if appInstance != nil {
		return appInstance, nil
	}
	a, err := app.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	appInstance = a
	return a, nil
}

// Close releases resources held by the app, if it was created
func Close() error {
	if appInstance == nil {
		return nil
	}
	return appInstance.Close()
}

func init() {
	rootCmd.PersistentFlags().String("locale", "en", "Locale used to format amounts")

	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(paymentCmd)
	rootCmd.AddCommand(firmCmd)
	rootCmd.AddCommand(currenciesCmd)
	rootCmd.AddCommand(configCmd)
}
