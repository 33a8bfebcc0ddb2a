// Package money provides fixed-precision monetary arithmetic for game math.
// All values carry exactly two fraction digits. Arithmetic rounds
// half-to-even; payout scaling that must never round up uses ScaleDown.
// Values saturate at [0, MaxAmount] instead of going negative or
// overflowing.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Precision is the number of fraction digits carried by every value.
const Precision = 2

// maxAmount is the largest representable magnitude. Anything above it
// clamps rather than overflows.
var maxAmount = decimal.RequireFromString("99999999999.99")

// Money is an immutable fixed-point monetary value.
type Money struct {
	amount decimal.Decimal
}

// Zero returns the zero value.
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Max returns the saturation ceiling.
func Max() Money {
	return Money{amount: maxAmount}
}

// clamp normalizes d to two digits (half-to-even) and saturates at
// [0, maxAmount].
func clamp(d decimal.Decimal) Money {
	d = d.RoundBank(Precision)
	if d.IsNegative() {
		return Money{amount: decimal.Zero}
	}
	if d.GreaterThan(maxAmount) {
		return Money{amount: maxAmount}
	}
	return Money{amount: d}
}

// FromDecimal builds a value from an arbitrary decimal, rounding and
// saturating as needed.
func FromDecimal(d decimal.Decimal) Money {
	return clamp(d)
}

// FromString parses a decimal string such as "0.20".
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return Money{}, fmt.Errorf("invalid money amount %q: negative", s)
	}
	if d.Exponent() < -Precision {
		return Money{}, fmt.Errorf("invalid money amount %q: more than %d fraction digits", s, Precision)
	}
	return clamp(d), nil
}

// MustFromString is FromString for static literals; it panics on bad input.
func MustFromString(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromFloat builds a value from a float, rounding half-to-even.
func FromFloat(f float64) Money {
	return clamp(decimal.NewFromFloat(f))
}

// Add returns m + other, saturating at MaxAmount.
func (m Money) Add(other Money) Money {
	return clamp(m.amount.Add(other.amount))
}

// Sub returns m - other, floored at zero. Game math never produces a
// balance-affecting value below zero.
func (m Money) Sub(other Money) Money {
	return clamp(m.amount.Sub(other.amount))
}

// MulInt returns m * n for a non-negative integer factor.
func (m Money) MulInt(n int64) Money {
	return clamp(m.amount.Mul(decimal.NewFromInt(n)))
}

// Scale returns m * factor rounded half-to-even.
func (m Money) Scale(factor decimal.Decimal) Money {
	return clamp(m.amount.Mul(factor))
}

// ScaleDown returns m * factor rounded toward zero. Used for payout
// scaling where rounding in the player's favour is not permitted.
func (m Money) ScaleDown(factor decimal.Decimal) Money {
	d := m.amount.Mul(factor).Truncate(Precision)
	if d.IsNegative() {
		return Money{amount: decimal.Zero}
	}
	if d.GreaterThan(maxAmount) {
		return Money{amount: maxAmount}
	}
	return Money{amount: d}
}

// Min returns the smaller of m and other.
func (m Money) Min(other Money) Money {
	if m.amount.GreaterThan(other.amount) {
		return other
	}
	return m
}

// Cmp compares m and other: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// IsZero reports whether the value is exactly zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive reports whether the value is strictly above zero.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Float64 returns the value as a float for display only.
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// String renders the value with exactly two fraction digits.
func (m Money) String() string {
	return m.amount.StringFixed(Precision)
}

// MarshalJSON renders the value as a decimal string, e.g. "12.30".
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// Value implements driver.Valuer so values map to NUMERIC columns.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner for NUMERIC columns.
func (m *Money) Scan(src interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("scan money: %w", err)
	}
	*m = clamp(d)
	return nil
}

// UnmarshalJSON accepts a decimal string or a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
