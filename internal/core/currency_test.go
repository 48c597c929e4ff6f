package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		err error
	}{
		{"1", 100, nil},
		{"19.99", 1999, nil},
		{"19,99", 1999, nil},
		{"0.01", 1, nil},
		{"1.005", 101, nil}, // half-up rounding
		{" 2.50 ", 250, nil},
		{"5000000000000.00", 500000000000000, nil}, // within cap
		{"9000000000000.00", 900000000000000, nil}, // exactly the cap
		{"9000000000000.01", 0, ErrAmountTooLarge},
		{"9999999999999999999", 0, ErrAmountTooLarge},
		{"0", 0, ErrInvalidAmount},
		{"0.00", 0, ErrInvalidAmount},
		{"-1", 0, ErrInvalidAmount},
		{"+1", 0, ErrInvalidAmount},
		{"abc", 0, ErrInvalidAmount},
		{"1.2.3", 0, ErrInvalidAmount},
		{"", 0, ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.err == nil {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, tc.err) {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.err, err)
		}
	}
}

func TestFormatMinorUnits(t *testing.T) {
	cases := []struct {
		cents int64
		code  string
		want  string
	}{
		{123456, "USD", "$1,234.56"},
		{123456, "GBP", "£1,234.56"},
		{123456, "EUR", "€1,234.56"},
		{5, "USD", "$0.05"},
		{-1999, "USD", "-$19.99"},
		{100000000, "USD", "$1,000,000.00"},
		{1999, "XXX", "$19.99"}, // unknown code degrades to USD
	}
	for _, tc := range cases {
		if got := FormatMinorUnits(tc.cents, tc.code); got != tc.want {
			t.Fatalf("FormatMinorUnits(%d, %q) = %q, want %q", tc.cents, tc.code, got, tc.want)
		}
	}
}

func TestSignedDisplay(t *testing.T) {
	if got := SignedDisplay(3000, DirectionOutgo, "USD"); got != "-$30.00" {
		t.Fatalf("outgo display = %q", got)
	}
	if got := SignedDisplay(12000, DirectionIncome, "USD"); got != "+$120.00" {
		t.Fatalf("income display = %q", got)
	}
}

func TestCurrencySymbolFallback(t *testing.T) {
	if got := CurrencySymbol("JPY"); got != "$" {
		t.Fatalf("unknown code symbol = %q, want $", got)
	}
	if got := CurrencySymbol("EUR"); got != "€" {
		t.Fatalf("EUR symbol = %q", got)
	}
}
