// Package core holds the pure domain logic for Ledgerly: currency
// arithmetic, billing-cycle date math, and transaction validation.
//
// Everything here is side-effect free so it can be exercised directly in
// tests without a database or an HTTP server.
package core

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// Currency describes one of the supported currencies.
type Currency struct {
	Code   string
	Label  string
	Symbol string
}

// Currencies lists the supported currencies in display order.
var Currencies = []Currency{
	{Code: "USD", Label: "US Dollar ($)", Symbol: "$"},
	{Code: "GBP", Label: "British Pound (£)", Symbol: "£"},
	{Code: "EUR", Label: "Euro (€)", Symbol: "€"},
}

// DefaultCurrency is used whenever a user has no stored preference.
const DefaultCurrency = "USD"

// MaxMinorUnits caps stored amounts at 9,000,000,000,000.00 major units.
const MaxMinorUnits int64 = 900_000_000_000_000

// IsValidCurrency reports whether code names a supported currency.
func IsValidCurrency(code string) bool {
	for _, c := range Currencies {
		if c.Code == code {
			return true
		}
	}
	return false
}

// CurrencySymbol returns the symbol for code, falling back to the default
// currency's symbol for unknown codes.
func CurrencySymbol(code string) string {
	for _, c := range Currencies {
		if c.Code == code {
			return c.Symbol
		}
	}
	return CurrencySymbol(DefaultCurrency)
}

// CurrencyLabel returns the human-readable label for code.
func CurrencyLabel(code string) string {
	for _, c := range Currencies {
		if c.Code == code {
			return c.Label
		}
	}
	return CurrencyLabel(DefaultCurrency)
}

// ParseAmount converts a decimal string such as "19.99" into minor units.
//
// It accepts both dot and comma decimal separators and performs half-up
// rounding on the third decimal place. Signed input is rejected: amounts are
// always entered positive and the direction decides the sign. Zero amounts
// and amounts above MaxMinorUnits fail with ErrInvalidAmount /
// ErrAmountTooLarge.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		// The digits were already checked, so a parse failure here can
		// only mean the value does not fit in int64.
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrAmountTooLarge
		}
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrAmountTooLarge
	}
	// First two fractional digits are cents; half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	if cents > MaxMinorUnits {
		return 0, ErrAmountTooLarge
	}
	return cents, nil
}

// FormatMinorUnits renders cents in the given currency, e.g. "$1,234.56".
// A negative value keeps its minus sign in front of the symbol.
func FormatMinorUnits(cents int64, code string) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	units := cents / 100
	rem := cents % 100
	s := CurrencySymbol(code) + groupThousands(units) + "." + twoDigits(rem)
	if neg {
		return "-" + s
	}
	return s
}

// SignedDisplay renders cents with an explicit +/- prefix based on the
// transaction direction, for the calendar JSON payload.
func SignedDisplay(cents int64, direction Direction, code string) string {
	if direction == DirectionOutgo {
		return "-" + FormatMinorUnits(cents, code)
	}
	return "+" + FormatMinorUnits(cents, code)
}

// MaxAmountDisplay returns the largest accepted amount in major units,
// formatted without a currency symbol (used to hint form limits).
func MaxAmountDisplay() string {
	return groupThousands(MaxMinorUnits/100) + "." + twoDigits(MaxMinorUnits%100)
}

func groupThousands(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func twoDigits(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
