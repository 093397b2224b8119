package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/andy/billcalc/internal/app"
	"github.com/andy/billcalc/internal/config"
	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/money"
)

func setupTestApp(t *testing.T) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Data.WorkbookPath = filepath.Join("..", "repository", "testdata", "workbook.yaml")

	a, err := app.NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)

	SetApp(a)
	t.Cleanup(func() { SetApp(nil) })
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAmount(t *testing.T) {
	en := message.NewPrinter(language.English)
	assert.Equal(t, "1,234.500", amount(en, money.New(1234.5, 3)))
	assert.Equal(t, "-12.30", amount(en, money.New(-12.3, 2)))
	assert.Equal(t, "7", amount(en, money.New(7, 0)))

	assert.Equal(t, "10.00 €", amountIn(en, money.New(10, 2), &domain.Currency{Code: "EUR", Symbol: "€"}))
	assert.Equal(t, "10.00 CHF", amountIn(en, money.New(10, 2), &domain.Currency{Code: "CHF"}))
	assert.Equal(t, "10.00", amountIn(en, money.New(10, 2), nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a long...", truncate("a long title", 9))
}

func TestDocumentCalc(t *testing.T) {
	setupTestApp(t)

	path := writeFile(t, "invoice.yaml", `kind: invoice
sequential_number: INV-2024-010
currency_id: 1
article_invoice_entries:
  - title: Consulting
    quantity: 2
    unit_price: 50
    tax_ids: [1]
`)

	out, err := run(t, "", "document", "calc", path)
	require.NoError(t, err)
	assert.Contains(t, out, "INV-2024-010")
	assert.Contains(t, out, "Consulting")
	assert.Contains(t, out, "VAT 19%")
	assert.Contains(t, out, "119.000 DT")
}

func TestDocumentCalc_UnknownKind(t *testing.T) {
	setupTestApp(t)

	path := writeFile(t, "doc.yaml", "kind: receipt\ncurrency_id: 1\n")

	_, err := run(t, "", "document", "calc", path)
	assert.Error(t, err)
}

func TestPaymentAllocate(t *testing.T) {
	setupTestApp(t)

	t.Run("valid", func(t *testing.T) {
		path := writeFile(t, "payment.yaml", `firm_id: 1
currency_id: 1
amount: 250
allocations:
  - invoice: INV-2024-001
    fill: true
`)
		out, err := run(t, "", "payment", "allocate", path)
		require.NoError(t, err)
		assert.Contains(t, out, "INV-2024-001")
		assert.Contains(t, out, "250.000 DT")
		assert.Contains(t, out, "Allocation is valid")
	})

	t.Run("mismatch", func(t *testing.T) {
		path := writeFile(t, "payment.yaml", `firm_id: 1
currency_id: 1
amount: 300
allocations:
  - invoice: INV-2024-001
    fill: true
`)
		_, err := run(t, "", "payment", "allocate", path)
		assert.ErrorIs(t, err, errAllocationRejected)
	})

	t.Run("missing firm", func(t *testing.T) {
		path := writeFile(t, "payment.yaml", "amount: 10\n")
		_, err := run(t, "", "payment", "allocate", path)
		assert.Error(t, err)
	})
}

func TestParsePaymentFile(t *testing.T) {
	req, err := parsePaymentFile([]byte(`firm_id: 2
amount: 100
fee: 1.5
allocations:
  - invoice: INV-2024-005
    exchange_rate: 1
    amount: 50
  - invoice: INV-2024-006
    clear: true
`))
	require.NoError(t, err)
	assert.Equal(t, int64(2), req.FirmID)
	assert.Equal(t, 1.5, req.Fee)
	require.Len(t, req.Edits, 2)
	require.NotNil(t, req.Edits[0].Amount)
	assert.Equal(t, 50.0, *req.Edits[0].Amount)
	assert.True(t, req.Edits[1].Clear)

	_, err = parsePaymentFile([]byte("firm_id: 1\nallocations:\n  - exchange_rate: -1\n"))
	assert.Error(t, err)
}

func TestFirmCommands(t *testing.T) {
	setupTestApp(t)

	out, err := run(t, "", "firm", "balance", "Acme Tunisia")
	require.NoError(t, err)
	assert.Contains(t, out, "INV-2024-001")
	assert.Contains(t, out, "250.000 DT")
	assert.NotContains(t, out, "INV-2024-003")

	out, err = run(t, "", "firm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Bolt Europe")
	assert.NotContains(t, out, "Old Client")

	_, err = run(t, "", "firm", "balance", "Nobody")
	assert.Error(t, err)
}

func TestCurrencies(t *testing.T) {
	setupTestApp(t)

	out, err := run(t, "", "currencies", "--taxes")
	require.NoError(t, err)
	assert.Contains(t, out, "TND")
	assert.Contains(t, out, "FODEC 1%")
	assert.Contains(t, out, "RS 1.5%")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(config.EnvConfigPath, path)
	workbook := filepath.Join(t.TempDir(), "data", "workbook.yaml")

	out, err := run(t, "", "config", "init", "--workbook", workbook)
	require.NoError(t, err)
	assert.Contains(t, out, "Config written")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, workbook, cfg.Data.WorkbookPath)

	// Declining the prompt leaves the file alone
	out, err = run(t, "n\n", "config", "init", "--workbook", "elsewhere.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, workbook, cfg.Data.WorkbookPath)

	out, err = run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "workbook_path: "+workbook)
}

func TestConfirmPrompt(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirmPrompt(strings.NewReader("yes\n"), &out, "Proceed?"))
	assert.False(t, confirmPrompt(strings.NewReader("\n"), &out, "Proceed?"))
	assert.False(t, confirmPrompt(strings.NewReader(""), &out, "Proceed?"))
	assert.Contains(t, out.String(), "Proceed? [y/N]")
}
