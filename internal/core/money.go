// Package core provides the ledger's domain types and parsing helpers.
//
// This file handles monetary input and display. Amounts arrive from forms and
// spreadsheets with either a comma or a dot decimal separator; everything is
// normalized into decimal.Decimal and only formatted back at the edges.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an amount.
//
// It accepts both dot (12.34) and comma (12,34) separators. Negative values
// are rejected; zero is allowed so callers can distinguish "unset budget"
// from invalid input. Expense amounts are additionally required to be
// positive by Expense.Validate.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two decimal places and a comma
// separator, the display convention of the ledger ("1234,56").
func FormatAmount(d decimal.Decimal) string {
	return strings.ReplaceAll(d.StringFixed(2), ".", ",")
}

// MaskCardNumber reduces a raw card number to a masked form keeping only the
// last four digits. Inputs shorter than four characters are kept verbatim;
// an already-masked number passes through unchanged.
func MaskCardNumber(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "**** ") {
		return raw
	}
	if len(raw) >= 4 {
		return "**** " + raw[len(raw)-4:]
	}
	return raw
}
