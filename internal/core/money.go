// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer centavos so sums and balances stay exact.
// Parsing goes through shopspring/decimal and rounds half-up to the cent.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Digits beyond the second decimal place are rounded
// half away from zero. Exponents and thousands separators are rejected.
//
// Examples:
//
//	ParseAmount("199,90") -> 19990
//	ParseAmount("12.345") -> 1235
//	ParseAmount("-5")     -> -500
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) > 1 || body == "" || body == "." {
		return Money{}, ErrInvalidAmount
	}
	for _, r := range body {
		if (r < '0' || r > '9') && r != '.' {
			return Money{}, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d), nil
}

// MoneyFromDecimal rounds d to the nearest centavo.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// Decimal returns the amount in reais.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount in reais for display and charting only.
// Use cents for calculations.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// String returns the plain two-decimal form, e.g. "2724.60".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
