package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/billcalc/internal/money"
)

func ptr[T any](v T) *T { return &v }

func TestLineItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		line    LineItem
		wantErr error
	}{
		{"valid percentage", LineItem{Quantity: 2, UnitPrice: 50, Discount: 10, DiscountType: DiscountPercentage}, nil},
		{"valid amount", LineItem{Quantity: 1, UnitPrice: 50, Discount: 5, DiscountType: DiscountAmount}, nil},
		{"percentage over 100", LineItem{Quantity: 1, Discount: 101, DiscountType: DiscountPercentage}, ErrInvalidDiscount},
		{"negative percentage", LineItem{Quantity: 1, Discount: -1, DiscountType: DiscountPercentage}, ErrInvalidDiscount},
		{"negative amount", LineItem{Quantity: 1, Discount: -5, DiscountType: DiscountAmount}, ErrInvalidDiscount},
		{"unknown discount type", LineItem{Quantity: 1, DiscountType: "BOGUS"}, ErrInvalidDiscount},
		{"negative quantity", LineItem{Quantity: -1}, ErrInvalidQuantity},
		{"negative price", LineItem{Quantity: 1, UnitPrice: -3}, ErrInvalidUnitPrice},
		{"negative tax", LineItem{Quantity: 1, Taxes: []TaxDefinition{{ID: 1, Value: -2, IsRate: true}}}, ErrInvalidTaxValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestDocumentValidate(t *testing.T) {
	t.Run("rate based tax stamp is rejected", func(t *testing.T) {
		doc := Document{
			CurrencyPrecision: 3,
			TaxStamp:          &TaxDefinition{ID: 9, Label: "Stamp", Value: 1, IsRate: true},
		}
		err := doc.Validate()
		assert.ErrorIs(t, err, ErrInvalidTaxStampKind)
		assert.Contains(t, err.Error(), "Stamp")
	})

	t.Run("fixed tax stamp is accepted", func(t *testing.T) {
		doc := Document{CurrencyPrecision: 3, TaxStamp: &TaxDefinition{ID: 9, Value: 1}}
		assert.NoError(t, doc.Validate())
	})

	t.Run("withholding outside range", func(t *testing.T) {
		doc := Document{CurrencyPrecision: 2, WithholdingRate: ptr(120.0)}
		assert.ErrorIs(t, doc.Validate(), ErrInvalidWithholding)
	})

	t.Run("document discount", func(t *testing.T) {
		doc := Document{CurrencyPrecision: 2, Discount: -5, DiscountType: DiscountAmount}
		assert.ErrorIs(t, doc.Validate(), ErrInvalidDiscount)
	})

	t.Run("negative precision", func(t *testing.T) {
		doc := Document{CurrencyPrecision: -1}
		assert.ErrorIs(t, doc.Validate(), ErrInvalidPrecision)
	})

	t.Run("first invalid line wins", func(t *testing.T) {
		doc := Document{
			CurrencyPrecision: 2,
			Lines: []LineItem{
				{ID: 1, Quantity: 1},
				{ID: 2, Description: "Widget", Quantity: -4},
			},
		}
		err := doc.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Contains(t, err.Error(), `"Widget"`)
	})
}

func TestValidationErrorFormatting(t *testing.T) {
	err := NewValidationError(ErrRateRequired, "invoice INV-1", "EUR -> USD")
	assert.Equal(t, "invoice INV-1: exchange rate required: EUR -> USD", err.Error())
	assert.True(t, errors.Is(err, ErrRateRequired))

	assert.Equal(t, "exchange rate required", NewValidationError(ErrRateRequired, "", "").Error())
	assert.False(t, IsValidation(errors.New("plain")))
}

func TestInvoiceRemainingAndStatus(t *testing.T) {
	eps := decimal.RequireFromString("0.01")

	inv := Invoice{ID: 1, FirmID: 1, CurrencyID: 1, Status: InvoiceStatusValidated, Total: 118, AmountPaid: 0, TaxWithholdingAmount: 1.18}
	assert.Equal(t, "116.82", inv.RemainingBalance(2).String())
	assert.Equal(t, InvoiceStatusUnpaid, inv.PaymentStatus(2, eps))
	assert.True(t, inv.IsPayable())

	inv.AmountPaid = 50
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.PaymentStatus(2, eps))
	assert.Equal(t, "66.82", inv.RemainingBalance(2).String())
	assert.Equal(t, "66.820", inv.RemainingBalance(3).String())

	inv.AmountPaid = 116.815
	assert.Equal(t, InvoiceStatusPaid, inv.PaymentStatus(2, eps))

	draft := Invoice{Status: InvoiceStatusDraft, Total: 10}
	assert.Equal(t, InvoiceStatusDraft, draft.PaymentStatus(2, eps))
	assert.False(t, draft.IsPayable())
	assert.True(t, draft.CanEdit())
	assert.Error(t, draft.Validate())
}

func TestPaymentAvailable(t *testing.T) {
	p := Payment{CurrencyID: 1, Amount: money.New(100, 2), Fee: money.New(2.5, 2), ConversionRate: 3.2}

	available, err := p.Available()
	require.NoError(t, err)
	assert.Equal(t, "102.50", available.String())

	base, err := p.BaseAmount(3)
	require.NoError(t, err)
	assert.Equal(t, "328.000", base.String())

	p.Fee = money.New(1, 3)
	_, err = p.Available()
	assert.ErrorIs(t, err, money.ErrPrecisionMismatch)
}

func TestCurrency(t *testing.T) {
	c := Currency{ID: 1, Code: "TND", Symbol: "DT", DigitAfterComma: 3}
	require.NoError(t, c.Validate())
	assert.Equal(t, "12.500 DT", c.Format(money.New(12.5, 3)))

	c.DigitAfterComma = -1
	assert.ErrorIs(t, c.Validate(), ErrInvalidPrecision)
}

func TestTaxWithholdingValidate(t *testing.T) {
	w := TaxWithholding{ID: 1, Label: "RS 1.5%", Rate: 1.5}
	assert.NoError(t, w.Validate())

	w.Rate = 101
	assert.ErrorIs(t, w.Validate(), ErrInvalidWithholding)
}
