package allocation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/money"
)

const (
	tnd int64 = 1 // 3 digits
	eur int64 = 2 // 2 digits
	usd int64 = 3 // 2 digits
)

func testPrecision(id int64) (int, error) {
	switch id {
	case tnd:
		return 3, nil
	case eur, usd:
		return 2, nil
	}
	return 0, ErrUnknownCurrency
}

func newPayment(currencyID int64, amount, fee float64) domain.Payment {
	p, _ := testPrecision(currencyID)
	return domain.Payment{
		ID:         1,
		FirmID:     10,
		CurrencyID: currencyID,
		Amount:     money.New(amount, p),
		Fee:        money.New(fee, p),
	}
}

func invoice(id int64, number string, currencyID int64, total float64) domain.Invoice {
	return domain.Invoice{
		ID:               id,
		FirmID:           10,
		SequentialNumber: number,
		CurrencyID:       currencyID,
		Status:           domain.InvoiceStatusUnpaid,
		Total:            total,
	}
}

func seeded(t *testing.T, payment domain.Payment, invoices ...domain.Invoice) *Engine {
	t.Helper()
	e := NewEngine(payment, testPrecision)
	require.NoError(t, e.Seed(invoices))
	return e
}

func TestEngine_Seed(t *testing.T) {
	paid := invoice(3, "INV-3", eur, 50)
	paid.AmountPaid = 50
	draft := invoice(4, "INV-4", eur, 80)
	draft.Status = domain.InvoiceStatusDraft

	e := seeded(t, newPayment(eur, 100, 0),
		invoice(1, "INV-1", eur, 100),
		invoice(2, "INV-2", tnd, 250),
		paid,
		draft,
	)

	entries := e.Entries()
	require.Len(t, entries, 2)

	assert.Equal(t, int64(1), entries[0].InvoiceID)
	assert.Equal(t, 1.0, entries[0].ExchangeRate)
	assert.False(t, entries[0].IsSet())

	assert.Equal(t, int64(2), entries[1].InvoiceID)
	assert.Equal(t, 0.0, entries[1].ExchangeRate)
	assert.Equal(t, "250.000", entries[1].InvoiceRemainingBalance.String())
}

func TestEngine_Seed_UnknownCurrency(t *testing.T) {
	e := NewEngine(newPayment(eur, 100, 0), testPrecision)
	err := e.Seed([]domain.Invoice{invoice(1, "INV-1", 99, 10)})
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestEngine_SameCurrencyFullAllocation(t *testing.T) {
	e := seeded(t, newPayment(eur, 100, 0), invoice(1, "INV-1", eur, 100))

	stored, err := e.SetAmount(1, 100)
	require.NoError(t, err)
	assert.Equal(t, "100.00", stored.String())

	res, err := e.Validate()
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Reason)
	assert.True(t, res.RemainingToAllocate.IsZero())

	state, err := e.EntryState(1)
	require.NoError(t, err)
	assert.Equal(t, StateFullyAllocated, state)
}

func TestEngine_CrossCurrencyMaximum(t *testing.T) {
	e := seeded(t, newPayment(eur, 125, 0), invoice(1, "INV-1", tnd, 250))
	require.NoError(t, e.SetExchangeRate(1, 2))

	entry := e.Entries()[0]
	max, err := e.ComputeMaxAllowed(entry)
	require.NoError(t, err)
	assert.Equal(t, "125.00", max.String())

	t.Run("at maximum is accepted", func(t *testing.T) {
		stored, err := e.SetAmount(1, 125)
		require.NoError(t, err)
		assert.Equal(t, "125.00", stored.String())

		res, err := e.Validate()
		require.NoError(t, err)
		assert.True(t, res.Valid, res.Reason)
	})

	t.Run("above maximum is clamped", func(t *testing.T) {
		stored, err := e.SetAmount(1, 126)
		require.NoError(t, err)
		assert.Equal(t, "125.00", stored.String())
	})

	t.Run("above maximum is rejected at submit", func(t *testing.T) {
		over := money.New(126, 2)
		entries := e.Entries()
		entries[0].AllocatedAmount = &over

		res, err := AllocatePayment(entries, newPayment(eur, 126, 0), DefaultTolerance)
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.ErrorIs(t, res.Err, domain.ErrAllocationOverflow)
		assert.Contains(t, res.Reason, "INV-1")
	})
}

func TestEngine_CrossCurrencyToleranceAcceptedAtSubmit(t *testing.T) {
	e := seeded(t, newPayment(eur, 125.01, 0), invoice(1, "INV-1", tnd, 250))
	require.NoError(t, e.SetExchangeRate(1, 2))

	stored, err := e.SetAmount(1, 125.01)
	require.NoError(t, err)
	assert.Equal(t, "125.01", stored.String())

	state, err := e.EntryState(1)
	require.NoError(t, err)
	assert.Equal(t, StateFullyAllocated, state)

	res, err := e.Validate()
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Reason)

	// One more cent is past the tolerance
	over := money.New(125.02, 2)
	entries := e.Entries()
	entries[0].AllocatedAmount = &over

	res, err = AllocatePayment(entries, newPayment(eur, 125.02, 0), DefaultTolerance)
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, domain.ErrAllocationOverflow)
}

func TestEngine_ClampWithinTolerance(t *testing.T) {
	e := seeded(t, newPayment(eur, 100, 0), invoice(1, "INV-1", eur, 100))

	// 100.01 sits on the tolerance boundary and is kept as entered
	stored, err := e.SetAmount(1, 100.01)
	require.NoError(t, err)
	assert.Equal(t, "100.01", stored.String())

	stored, err = e.SetAmount(1, 100.02)
	require.NoError(t, err)
	assert.Equal(t, "100.00", stored.String())
}

func TestEngine_SetAmount_Errors(t *testing.T) {
	e := seeded(t, newPayment(eur, 100, 0),
		invoice(1, "INV-1", eur, 100),
		invoice(2, "INV-2", tnd, 100),
	)

	_, err := e.SetAmount(1, -1)
	assert.ErrorIs(t, err, ErrNegativeAmount)

	_, err = e.SetAmount(42, 10)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = e.SetAmount(2, 10)
	assert.ErrorIs(t, err, domain.ErrRateRequired)
}

func TestEngine_SetExchangeRate(t *testing.T) {
	e := seeded(t, newPayment(eur, 100, 0),
		invoice(1, "INV-1", eur, 100),
		invoice(2, "INV-2", tnd, 100),
	)

	assert.ErrorIs(t, e.SetExchangeRate(1, 3), ErrRatePinned)
	assert.ErrorIs(t, e.SetExchangeRate(2, 0), ErrInvalidExchangeRate)
	assert.ErrorIs(t, e.SetExchangeRate(2, -1.5), ErrInvalidExchangeRate)
	require.NoError(t, e.SetExchangeRate(2, 3.3))
	assert.Equal(t, 3.3, e.Entries()[1].ExchangeRate)
}

func TestEngine_MaxAllowedNeverOverpays(t *testing.T) {
	remainings := []float64{0.001, 1, 10, 99.999, 250, 1234.567, 33333.333}
	rates := []float64{0.3, 0.7, 1.1, 2, 3, 3.3333, 7.77}

	for _, remaining := range remainings {
		for _, rate := range rates {
			e := seeded(t, newPayment(eur, 0, 0), invoice(1, "INV-1", tnd, remaining))
			require.NoError(t, e.SetExchangeRate(1, rate))

			entry := e.Entries()[0]
			max, err := e.ComputeMaxAllowed(entry)
			require.NoError(t, err)

			back := max.Decimal().Mul(decimal.NewFromFloat(rate))
			assert.True(t, back.LessThanOrEqual(entry.InvoiceRemainingBalance.Decimal()),
				"remaining %v rate %v: max %s converts back to %s", remaining, rate, max, back)
		}
	}
}

func TestEngine_UsedPlusRemainingIsAvailable(t *testing.T) {
	e := seeded(t, newPayment(eur, 300, 5),
		invoice(1, "INV-1", eur, 100),
		invoice(2, "INV-2", eur, 80),
		invoice(3, "INV-3", usd, 60),
	)
	require.NoError(t, e.SetExchangeRate(3, 1.2))

	_, err := e.SetAmount(1, 40)
	require.NoError(t, err)
	_, err = e.Fill(2)
	require.NoError(t, err)
	_, err = e.SetAmount(3, 12.34)
	require.NoError(t, err)

	used, err := e.CalculateUsedAmount()
	require.NoError(t, err)
	remaining, err := e.RemainingToAllocate()
	require.NoError(t, err)

	sum, err := used.Add(remaining)
	require.NoError(t, err)
	assert.Equal(t, "305.00", sum.String())
	assert.Equal(t, "132.34", used.String())
}

func TestEngine_Validate(t *testing.T) {
	t.Run("missing rate", func(t *testing.T) {
		e := seeded(t, newPayment(eur, 10, 0), invoice(1, "INV-1", tnd, 100))
		amount := money.New(10, 2)
		entries := e.Entries()
		entries[0].AllocatedAmount = &amount

		res, err := AllocatePayment(entries, e.Payment(), DefaultTolerance)
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.ErrorIs(t, res.Err, domain.ErrRateRequired)
	})

	t.Run("under allocated", func(t *testing.T) {
		e := seeded(t, newPayment(eur, 100, 0), invoice(1, "INV-1", eur, 100))
		_, err := e.SetAmount(1, 60)
		require.NoError(t, err)

		res, err := e.Validate()
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.ErrorIs(t, res.Err, domain.ErrAllocationMismatch)
		assert.Equal(t, "40.00", res.RemainingToAllocate.String())

		var verr *domain.ValidationError
		require.True(t, errors.As(res.Err, &verr))
		assert.Equal(t, "payment", verr.Field)
	})

	t.Run("mismatch within tolerance is accepted", func(t *testing.T) {
		e := seeded(t, newPayment(eur, 100.01, 0), invoice(1, "INV-1", eur, 100))
		_, err := e.Fill(1)
		require.NoError(t, err)

		res, err := e.Validate()
		require.NoError(t, err)
		assert.True(t, res.Valid, res.Reason)
	})

	t.Run("fee counts as available", func(t *testing.T) {
		e := seeded(t, newPayment(eur, 95, 5), invoice(1, "INV-1", eur, 100))
		_, err := e.Fill(1)
		require.NoError(t, err)

		res, err := e.Validate()
		require.NoError(t, err)
		assert.True(t, res.Valid, res.Reason)
	})

	t.Run("payment amount edited after allocation", func(t *testing.T) {
		e := seeded(t, newPayment(eur, 80, 0), invoice(1, "INV-1", eur, 100))
		_, err := e.Fill(1)
		require.NoError(t, err)

		res, err := e.Validate()
		require.NoError(t, err)
		assert.False(t, res.Valid)

		e.SetPaymentAmount(90, 10)
		res, err = e.Validate()
		require.NoError(t, err)
		assert.True(t, res.Valid, res.Reason)
		assert.Equal(t, "10.00", e.Payment().Fee.String())
	})

	t.Run("unset cross currency entries are ignored", func(t *testing.T) {
		e := seeded(t, newPayment(eur, 50, 0),
			invoice(1, "INV-1", eur, 50),
			invoice(2, "INV-2", tnd, 500),
		)
		_, err := e.Fill(1)
		require.NoError(t, err)

		res, err := e.Validate()
		require.NoError(t, err)
		assert.True(t, res.Valid, res.Reason)
	})
}

func TestEngine_ChangeCurrency(t *testing.T) {
	e := seeded(t, newPayment(eur, 100.5, 1.25),
		invoice(1, "INV-1", eur, 100),
		invoice(2, "INV-2", tnd, 100),
	)
	require.NoError(t, e.SetExchangeRate(2, 3))
	_, err := e.SetAmount(1, 50)
	require.NoError(t, err)
	_, err = e.SetAmount(2, 20)
	require.NoError(t, err)

	require.NoError(t, e.ChangeCurrency(tnd))

	p := e.Payment()
	assert.Equal(t, tnd, p.CurrencyID)
	assert.Equal(t, "100.500", p.Amount.String())
	assert.Equal(t, "1.250", p.Fee.String())

	entries := e.Entries()
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.False(t, entry.IsSet())
	}
	assert.Equal(t, 0.0, entries[0].ExchangeRate)
	assert.Equal(t, 1.0, entries[1].ExchangeRate)

	assert.ErrorIs(t, e.ChangeCurrency(99), ErrUnknownCurrency)
}

func TestEngine_States(t *testing.T) {
	e := seeded(t, newPayment(eur, 100, 0), invoice(1, "INV-1", eur, 100))

	state, err := e.EntryState(1)
	require.NoError(t, err)
	assert.Equal(t, StateUnset, state)

	_, err = e.SetAmount(1, 0)
	require.NoError(t, err)
	state, _ = e.EntryState(1)
	assert.Equal(t, StateUnset, state)

	_, err = e.SetAmount(1, 30)
	require.NoError(t, err)
	state, _ = e.EntryState(1)
	assert.Equal(t, StatePartiallyAllocated, state)

	_, err = e.Fill(1)
	require.NoError(t, err)
	state, _ = e.EntryState(1)
	assert.Equal(t, StateFullyAllocated, state)

	require.NoError(t, e.ClearAmount(1))
	state, _ = e.EntryState(1)
	assert.Equal(t, StateUnset, state)

	_, err = e.EntryState(7)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestEngine_ViewsAndReset(t *testing.T) {
	e := seeded(t, newPayment(eur, 100, 0),
		invoice(1, "INV-1", eur, 100),
		invoice(2, "INV-2", tnd, 100),
	)

	views := e.Views()
	require.Len(t, views, 2)
	require.NotNil(t, views[0].MaxAllowed)
	assert.Equal(t, "100.00", views[0].MaxAllowed.String())
	assert.Nil(t, views[1].MaxAllowed)

	e.Reset()
	assert.Empty(t, e.Entries())
}

func TestEngine_EntriesAreCopies(t *testing.T) {
	e := seeded(t, newPayment(eur, 100, 0), invoice(1, "INV-1", eur, 100))
	_, err := e.SetAmount(1, 10)
	require.NoError(t, err)

	entries := e.Entries()
	changed := money.New(99, 2)
	*entries[0].AllocatedAmount = changed

	used, err := e.CalculateUsedAmount()
	require.NoError(t, err)
	assert.Equal(t, "10.00", used.String())
}
