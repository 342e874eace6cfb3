// Package core provides money parsing and handling utilities.
//
// Amounts are kept as arbitrary-precision decimals so that summing many
// small values never accumulates binary floating-point error. Rounding to
// two places happens only when a value is displayed.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Money is a monetary amount with no currency attached.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MustMoney parses s and panics on failure. Intended for tests and constants.
func MustMoney(s string) Money {
	return Money{Decimal: decimal.RequireFromString(s)}
}

// Zero returns a zero amount.
func Zero() Money {
	return Money{Decimal: decimal.Zero}
}

func (m Money) Validate() error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

// Equal compares values regardless of scale, so 1.0 equals 1.00.
func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

// ParseAmount converts user input to Money.
//
// A comma followed by exactly three digits groups thousands, the way Display
// prints them. A lone comma with any other digit count is a decimal
// separator. Blank, signed, non-numeric, zero and negative input is rejected.
//
// Examples:
//
//	ParseAmount("12.34")    -> 12.34, nil
//	ParseAmount("1,000")    -> 1000, nil
//	ParseAmount("1,234.50") -> 1234.5, nil
//	ParseAmount("12,3")     -> 12.3, nil
//	ParseAmount("-1")       -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s, ok := normalizeSeparators(s)
	if !ok {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Decimal: d}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// normalizeSeparators rewrites s so that only '.' marks the decimal point.
func normalizeSeparators(s string) (string, bool) {
	if !strings.Contains(s, ",") {
		return s, true
	}
	intPart, frac, hasDot := strings.Cut(s, ".")
	if thousandsGrouped(intPart) {
		intPart = strings.ReplaceAll(intPart, ",", "")
		if hasDot {
			return intPart + "." + frac, !strings.Contains(frac, ",")
		}
		return intPart, true
	}
	if hasDot || strings.Count(s, ",") != 1 {
		return "", false
	}
	return strings.Replace(s, ",", ".", 1), true
}

// thousandsGrouped reports whether s is digits split by commas into a
// leading group of one to three digits followed by groups of exactly three.
func thousandsGrouped(s string) bool {
	groups := strings.Split(s, ",")
	if len(groups) < 2 {
		return false
	}
	for i, g := range groups {
		if !allDigits(g) {
			return false
		}
		if i == 0 && (len(g) == 0 || len(g) > 3) {
			return false
		}
		if i > 0 && len(g) != 3 {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Display formats the amount rounded half-up to two decimals with thousands
// separators, e.g. 1234.5 -> "1,234.50".
func (m Money) Display() string {
	s := m.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}
