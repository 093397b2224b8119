// Package money implements fixed-point monetary values bound to a currency's
// minor-unit precision. Every amount the calculation core produces flows
// through this type; raw float64 summation of monetary values is never used.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrPrecisionMismatch is returned when two values of different precision
	// are combined without an explicit conversion step.
	ErrPrecisionMismatch = errors.New("money: precision mismatch")

	// ErrDivisionByZero is returned by DivScalar for a zero divisor.
	ErrDivisionByZero = errors.New("money: division by zero")

	// ErrNegativePrecision is returned when a precision below zero is requested.
	ErrNegativePrecision = errors.New("money: negative precision")
)

var hundred = decimal.NewFromInt(100)

// Money is an amount expressed as an integer count of minor units at a fixed
// number of decimal digits. The zero value is 0 at precision 0.
type Money struct {
	minor     int64
	precision int
}

// New scales v to minor units at the given precision, rounding half away
// from zero. Non-finite input is treated as 0.
func New(v float64, precision int) Money {
	return FromDecimal(fromFloat(v), precision)
}

// FromMinor builds a value directly from minor units.
func FromMinor(minor int64, precision int) Money {
	return Money{minor: minor, precision: clampPrecision(precision)}
}

// Zero returns 0 at the given precision.
func Zero(precision int) Money {
	return Money{precision: clampPrecision(precision)}
}

// FromDecimal quantises d to the given precision, rounding half away from zero.
func FromDecimal(d decimal.Decimal, precision int) Money {
	p := clampPrecision(precision)
	scaled := d.Shift(int32(p)).Round(0)
	return Money{minor: scaled.IntPart(), precision: p}
}

// Product returns a × b quantised to precision. The multiplication happens
// before rounding so that quantity × unit price does not round the price first.
func Product(a, b float64, precision int) Money {
	return FromDecimal(fromFloat(a).Mul(fromFloat(b)), precision)
}

// ValidatePrecision reports whether p can be used as a currency precision.
func ValidatePrecision(p int) error {
	if p < 0 {
		return fmt.Errorf("%w: %d", ErrNegativePrecision, p)
	}
	return nil
}

// Minor returns the raw minor-unit count.
func (m Money) Minor() int64 { return m.minor }

// Precision returns the number of decimal digits.
func (m Money) Precision() int { return m.precision }

// Decimal returns the exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.minor, -int32(m.precision))
}

// Float64 converts back to a floating display value.
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

// String renders the value with exactly Precision() fractional digits.
func (m Money) String() string {
	return m.Decimal().StringFixed(int32(m.precision))
}

// Add returns m + o.
func (m Money) Add(o Money) (Money, error) {
	if m.precision != o.precision {
		return Money{}, mismatch(m, o)
	}
	return Money{minor: m.minor + o.minor, precision: m.precision}, nil
}

// Sub returns m - o.
func (m Money) Sub(o Money) (Money, error) {
	if m.precision != o.precision {
		return Money{}, mismatch(m, o)
	}
	return Money{minor: m.minor - o.minor, precision: m.precision}, nil
}

// MulScalar multiplies by f and re-quantises to the original precision.
func (m Money) MulScalar(f float64) Money {
	return FromDecimal(m.Decimal().Mul(fromFloat(f)), m.precision)
}

// Percent returns m × p / 100 at the original precision.
func (m Money) Percent(p float64) Money {
	return FromDecimal(m.Decimal().Mul(fromFloat(p)).Div(hundred), m.precision)
}

// DivScalar divides by f and re-quantises to the original precision.
func (m Money) DivScalar(f float64) (Money, error) {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, ErrDivisionByZero
	}
	return FromDecimal(m.Decimal().Div(fromFloat(f)), m.precision), nil
}

// Convert multiplies by an exchange rate and quantises to the target
// currency's precision. It is the only way to move a value across currencies.
func (m Money) Convert(rate float64, targetPrecision int) Money {
	return FromDecimal(m.Decimal().Mul(fromFloat(rate)), targetPrecision)
}

// ConvertDown divides by an exchange rate and truncates toward zero at the
// target precision, so that the result multiplied back never exceeds m.
func (m Money) ConvertDown(rate float64, targetPrecision int) (Money, error) {
	if rate == 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return Money{}, ErrDivisionByZero
	}
	p := clampPrecision(targetPrecision)
	q := m.Decimal().Div(fromFloat(rate)).Truncate(int32(p))
	return FromDecimal(q, p), nil
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{minor: -m.minor, precision: m.precision}
}

// Abs returns |m|.
func (m Money) Abs() Money {
	if m.minor < 0 {
		return m.Neg()
	}
	return m
}

// Cmp compares m and o: -1, 0 or +1.
func (m Money) Cmp(o Money) (int, error) {
	if m.precision != o.precision {
		return 0, mismatch(m, o)
	}
	switch {
	case m.minor < o.minor:
		return -1, nil
	case m.minor > o.minor:
		return 1, nil
	}
	return 0, nil
}

// IsZero reports whether m is 0.
func (m Money) IsZero() bool { return m.minor == 0 }

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool { return m.minor < 0 }

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool { return m.minor > 0 }

// WithinTolerance reports whether |m - o| <= eps, compared on exact decimal
// values so that the two sides may carry different precisions.
func (m Money) WithinTolerance(o Money, eps decimal.Decimal) bool {
	return m.Decimal().Sub(o.Decimal()).Abs().LessThanOrEqual(eps)
}

// ExceedsBy reports whether m > o + eps on exact decimal values.
func (m Money) ExceedsBy(o Money, eps decimal.Decimal) bool {
	return m.Decimal().GreaterThan(o.Decimal().Add(eps))
}

// Sum adds values that all share precision.
func Sum(precision int, values ...Money) (Money, error) {
	total := Zero(precision)
	for _, v := range values {
		var err error
		if total, err = total.Add(v); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

func mismatch(a, b Money) error {
	return fmt.Errorf("%w: %d vs %d", ErrPrecisionMismatch, a.precision, b.precision)
}

func fromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func clampPrecision(p int) int {
	if p < 0 {
		return 0
	}
	return p
}
