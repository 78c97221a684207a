package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the only currency the pipeline handles today.
const DefaultCurrency = "BRL"

// Money is an exact monetary amount stored as integer cents.
// All arithmetic happens on Cents; decimals and floats exist only at
// the parsing and formatting boundaries.
type Money struct {
	Cents    int64  `json:"cents"`
	Currency string `json:"currency"`
}

// NewMoney builds a Money from integer cents.
func NewMoney(cents int64) Money {
	return Money{Cents: cents, Currency: DefaultCurrency}
}

// FromDecimal converts a decimal amount (e.g. 1234.56) to Money,
// rounding half-up to the nearest cent.
func FromDecimal(d decimal.Decimal) Money {
	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return NewMoney(cents)
}

// FromFloat converts a float amount to Money. Rejects NaN and Inf;
// those always indicate upstream corruption, never a real amount.
func FromFloat(v float64) (Money, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Money{}, &ErrValidation{Field: "amount", Message: fmt.Sprintf("non-finite value %v", v)}
	}
	return FromDecimal(decimal.NewFromFloat(v)), nil
}

// Decimal returns the amount as a decimal value (cents / 100).
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents, Currency: m.currency()} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents, Currency: m.currency()} }
func (m Money) Neg() Money        { return Money{Cents: -m.Cents, Currency: m.currency()} }
func (m Money) IsZero() bool      { return m.Cents == 0 }
func (m Money) IsNegative() bool  { return m.Cents < 0 }

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return m.Neg()
	}
	return Money{Cents: m.Cents, Currency: m.currency()}
}

// Cmp returns -1, 0 or +1 comparing m against o.
func (m Money) Cmp(o Money) int {
	switch {
	case m.Cents < o.Cents:
		return -1
	case m.Cents > o.Cents:
		return 1
	default:
		return 0
	}
}

// EqualsWithin reports whether m and o differ by at most toleranceCents.
func (m Money) EqualsWithin(o Money, toleranceCents int64) bool {
	diff := m.Cents - o.Cents
	if diff < 0 {
		diff = -diff
	}
	return diff <= toleranceCents
}

// MulScalar multiplies the amount by a scalar, rounding half-up to the
// nearest cent.
func (m Money) MulScalar(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, &ErrValidation{Field: "scalar", Message: fmt.Sprintf("non-finite multiplier %v", f)}
	}
	cents := decimal.NewFromInt(m.Cents).Mul(decimal.NewFromFloat(f)).Round(0).IntPart()
	return Money{Cents: cents, Currency: m.currency()}, nil
}

// DivScalar divides the amount by a scalar, rounding half-up to the
// nearest cent. Division by zero is a value error.
func (m Money) DivScalar(f float64) (Money, error) {
	if f == 0 {
		return Money{}, &ErrDivideByZero{Operation: "Money.DivScalar"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, &ErrValidation{Field: "scalar", Message: fmt.Sprintf("non-finite divisor %v", f)}
	}
	cents := decimal.NewFromInt(m.Cents).Div(decimal.NewFromFloat(f)).Round(0).IntPart()
	return Money{Cents: cents, Currency: m.currency()}, nil
}

// SumMoney adds a slice of amounts.
func SumMoney(ms []Money) Money {
	total := NewMoney(0)
	for _, m := range ms {
		total = total.Add(m)
	}
	return total
}

// MinMoney returns the smaller of a and b.
func MinMoney(a, b Money) Money {
	if a.Cents <= b.Cents {
		return a
	}
	return b
}

// MaxMoney returns the larger of a and b.
func MaxMoney(a, b Money) Money {
	if a.Cents >= b.Cents {
		return a
	}
	return b
}

// Format renders the amount in pt-BR convention (1.234,56), optionally
// prefixed with the currency symbol.
func (m Money) Format(withSymbol bool) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	intPart := cents / 100
	fracPart := cents % 100

	digits := fmt.Sprintf("%d", intPart)
	var grouped strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := fmt.Sprintf("%s%s,%02d", sign, grouped.String(), fracPart)
	if withSymbol {
		return "R$ " + out
	}
	return out
}

func (m Money) currency() string {
	if m.Currency == "" {
		return DefaultCurrency
	}
	return m.Currency
}
