// Package core provides money parsing and handling utilities.
//
// Amounts are kept as exact decimals fixed to two fractional digits so that
// totals and balances never drift.
package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact amount with two fractional digits.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// NewMoney rounds d half away from zero to two decimal places.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

// MoneyFromCents builds an amount from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -2)}
}

// MustMoney parses s and panics on error. Intended for tests and constants.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseMoney converts a decimal string to Money with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs are
// allowed so callers can decide what to reject; use Validate for the ledger's
// positivity rule.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34
//	ParseMoney("12,345") -> 12.35
//	ParseMoney("1.005")  -> 1.01
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty amount", ErrValidation)
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}
	return NewMoney(d), nil
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Cents returns the amount in cents.
func (m Money) Cents() int64 { return m.d.Shift(2).IntPart() }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }

func (m Money) IsZero() bool     { return m.d.IsZero() }
func (m Money) IsPositive() bool { return m.d.IsPositive() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// Sign returns -1, 0 or +1.
func (m Money) Sign() int { return m.d.Sign() }

// Cmp compares two amounts like decimal.Decimal.Cmp.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

// Equal reports whether both amounts are numerically equal.
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

// Validate enforces the ledger rule amount > 0.
func (m Money) Validate() error {
	if !m.d.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// String renders the amount as a plain decimal with two digits.
func (m Money) String() string { return m.d.StringFixed(2) }

// MarshalJSON emits a bare JSON number, e.g. 1000.00.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: null amount", ErrValidation)
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: invalid amount %s", ErrValidation, data)
	}
	*m = NewMoney(d)
	return nil
}
