// Package money provides an exact monetary amount quantized to cents.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrZeroBase is returned by RelDiff when the base amount is zero.
var ErrZeroBase = errors.New("money: relative difference with zero base amount")

// Money is a fixed-point monetary value with two fractional digits.
// Every constructor and operation re-quantizes with round-half-up, so a
// write-then-read-back round trip reproduces the same displayed amount.
// The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// quantize rounds to cents with ties away from zero.
func quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// New builds a Money from an exact decimal value.
func New(d decimal.Decimal) Money {
	return Money{quantize(d)}
}

// FromFloat builds a Money from a float64 approximation.
func FromFloat(f float64) Money {
	return New(decimal.NewFromFloat(f))
}

// FromInt builds a Money from a whole number of currency units.
func FromInt(n int64) Money {
	return Money{decimal.NewFromInt(n)}
}

// Parse builds a Money from a decimal string such as "1234.57".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, err
	}
	return New(d), nil
}

// Decimal returns the exact quantized value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Float64 returns a floating-point approximation for presentation and
// store interop. The decimal value remains canonical.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

func (m Money) Add(o Money) Money { return New(m.d.Add(o.d)) }
func (m Money) Sub(o Money) Money { return New(m.d.Sub(o.d)) }
func (m Money) Neg() Money        { return Money{m.d.Neg()} }
func (m Money) Abs() Money        { return Money{m.d.Abs()} }

// Mul scales the amount by a plain scalar.
func (m Money) Mul(f float64) Money {
	return New(m.d.Mul(decimal.NewFromFloat(f)))
}

// MulInt scales the amount by an integer factor, e.g. a flow direction.
func (m Money) MulInt(n int) Money {
	return New(m.d.Mul(decimal.NewFromInt(int64(n))))
}

// Div divides the amount by a non-zero scalar.
func (m Money) Div(f float64) Money {
	return New(m.d.Div(decimal.NewFromFloat(f)))
}

// RelDiff returns (o - m) / |m| as an exact decimal.
func (m Money) RelDiff(o Money) (decimal.Decimal, error) {
	if m.d.IsZero() {
		return decimal.Decimal{}, ErrZeroBase
	}
	return o.d.Sub(m.d).Div(m.d.Abs()), nil
}

// Cmp compares two amounts: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int    { return m.d.Cmp(o.d) }
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }
func (m Money) Less(o Money) bool  { return m.d.LessThan(o.d) }

// CmpFloat compares against a plain number, coercing it through the same
// cent quantization first.
func (m Money) CmpFloat(f float64) int {
	return m.d.Cmp(quantize(decimal.NewFromFloat(f)))
}

func (m Money) IsZero() bool     { return m.d.IsZero() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// String returns the plain fixed-point form, e.g. "1234.57".
func (m Money) String() string { return m.d.StringFixed(2) }

// Display returns a signed, euro-formatted form with European separators,
// e.g. "+1.234,57 €". Presentation only.
func (m Money) Display() string {
	sign := "+"
	if m.d.IsNegative() {
		sign = "-"
	}
	s := m.d.Abs().StringFixed(2) // "1234.57"
	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "," + fracPart + " €"
}
