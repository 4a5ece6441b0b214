// Package core provides money parsing and handling utilities.
//
// This file contains the write-path normalization of locale-formatted
// monetary strings ("R$ 1.234,56") and helpers for rendering ledger values.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MoneyPlaces is the precision ledger values are stored with.
const MoneyPlaces = 2

// moneyFields lists the record fields that carry monetary values.
// Fields outside this list are never touched by Normalize.
var moneyFields = map[string]struct{}{
	"value":     {},
	"fee_value": {},
	"budget":    {},
	"spent":     {},
	"amount":    {},
}

// IsMoneyField reports whether field is normalized as a monetary value.
func IsMoneyField(field string) bool {
	_, ok := moneyFields[field]
	return ok
}

// Normalize converts a locale-formatted monetary string into a float64.
//
// Nil and empty strings pass through unchanged, as do numbers, non-money
// fields and anything that cannot be parsed. When the cleaned string contains
// a comma the dots are thousands separators and the last comma is the decimal
// separator. Normalize never panics and is idempotent.
//
// Examples:
//
//	Normalize("value", "R$ 1.234,56") -> 1234.56
//	Normalize("value", "1234.56")     -> 1234.56
//	Normalize("value", 10.5)          -> 10.5
//	Normalize("name", "1.234,56")     -> "1.234,56"
func Normalize(field string, raw any) any {
	if raw == nil {
		return raw
	}
	s, ok := raw.(string)
	if !ok || s == "" || !IsMoneyField(field) {
		return raw
	}

	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)

	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		i := strings.LastIndex(clean, ",")
		clean = clean[:i] + "." + clean[i+1:]
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return raw
	}
	return f
}

// PrepareRecord drops absent values (nil or empty string) and normalizes the
// remaining fields. The input map is not modified.
func PrepareRecord(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = Normalize(k, v)
	}
	return out
}

// RoundMoney rounds to the ledger precision.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount the way the firm reads it, e.g. "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	return brPrinter.Sprintf("R$ %.2f", d.InexactFloat64())
}
