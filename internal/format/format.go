// Package format renders amounts and dates the same way on documents, chat
// messages and the console.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Number formats d with thousands separators and two decimals.
func Number(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprint(number.Decimal(f, number.Scale(2)))
}

// Amount prefixes Number with the currency code when one is known.
func Amount(d decimal.Decimal, currency string) string {
	if c := strings.TrimSpace(currency); c != "" {
		return strings.ToUpper(c) + " " + Number(d)
	}

	return Number(d)
}

// Quantity drops trailing zeros: 2, 1.5, 0.25.
func Quantity(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(3)))
}

// Date formats a date as DD MMM YYYY, or "" for the zero time.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format("02 Jan 2006")
}

// ISODate formats a date as YYYY-MM-DD.
func ISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.DateOnly)
}
