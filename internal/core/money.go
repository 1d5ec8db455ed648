// Package core holds the ledger's domain types and exact-decimal money helpers.
//
// Amounts are always decimal.Decimal values. They are parsed from and
// persisted as decimal text so repeated save/load cycles never drift.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount can't be negative")
)

// ParseAmount converts user or persisted text to an exact decimal.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount(" 100 ")  -> 100, nil
//	ParseAmount("-1")     -> ErrNegativeAmount
//	ParseAmount("abc")    -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount accepts zero and any positive value.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// FormatAmount renders an amount with two decimals for display. Rounding
// happens here only; stored values keep their full precision.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixedBank(2)
}

// AmountText renders an amount as exact decimal text, keeping the scale it
// was entered with ("200.50" stays "200.50"). This is the persisted form.
func AmountText(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.StringFixed(0)
}
