package services

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// RoundMoney rounds half away from zero to 2 decimal places. Pipeline stages
// keep full precision; this is only applied at display and export boundaries
// and where a rounded value becomes an input (recomputed quantities, saved
// rate build-ups).
// Non-finite values are returned unchanged.
func RoundMoney(v float64) float64 {
	if !IsFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FormatAmount renders an amount with thousands separators and exactly 2
// decimal places, e.g. 3716250 -> "3,716,250.00".
func FormatAmount(amount float64) string {
	return amountPrinter.Sprintf("%.2f", RoundMoney(amount))
}

// FormatMoney prefixes FormatAmount with the currency code.
func FormatMoney(amount float64, currency string) string {
	if currency == "" {
		return FormatAmount(amount)
	}
	return currency + " " + FormatAmount(amount)
}

// FormatPercent renders a percentage knob without trailing zeros, e.g. 15 -> "15", 7.5 -> "7.5".
func FormatPercent(pct float64) string {
	if !IsFinite(pct) {
		return fmt.Sprint(pct)
	}
	return decimal.NewFromFloat(pct).String()
}

// formatQty returns a string representation of the quantity value.
// Whole numbers are formatted without decimals; fractional values get 2 decimal places.
func formatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}

// fixed2 renders a value the way spreadsheet rows show it: 2 decimals, no grouping.
func fixed2(v float64) string {
	if !IsFinite(v) {
		return fmt.Sprint(v)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}
