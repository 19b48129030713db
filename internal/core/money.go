// Package core provides money parsing and handling utilities.
//
// This file contains the normalizer that turns locale formatted strings
// ("1234,56") into decimal amounts and renders amounts back for display.
package core

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ToNumber converts a locale decimal string to an amount.
//
// The first comma is treated as the decimal separator, matching how amounts
// are typed in the forms. Only the leading number is read; input without one
// yields zero. It never fails.
//
// Examples:
//
//	ToNumber("1234,56") -> 1234.56
//	ToNumber("12.5")    -> 12.5
//	ToNumber("")        -> 0
//	ToNumber("12abc")   -> 12
//	ToNumber("abc")     -> 0
func ToNumber(s string) decimal.Decimal {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	s = strings.TrimPrefix(s, "+")
	d, err := decimal.NewFromString(numericPrefix.FindString(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// numericPrefix is the longest leading decimal literal, so trailing text
// ("12abc", "5.000.00") is ignored.
var numericPrefix = regexp.MustCompile(`^-?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

// ToNumberAny accepts whatever a form or JSON decoder hands over:
// numbers pass through, strings go through ToNumber, anything else is zero.
func ToNumberAny(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case string:
		return ToNumber(n)
	case *string:
		if n == nil {
			return decimal.Zero
		}
		return ToNumber(*n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case int32:
		return decimal.NewFromInt(int64(n))
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	default:
		return decimal.Zero
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// FormatCurrency renders an amount as Brazilian reais, e.g. "R$ 1.234,56".
func FormatCurrency(d decimal.Decimal) string {
	return FormatCurrencyCode(d, "BRL")
}

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatCurrencyCode renders an amount with the pt-BR symbol of an ISO
// currency code and pt-BR separators, rounded half away from zero to two
// places. Unknown codes are used verbatim as the prefix.
func FormatCurrencyCode(d decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	symbol := code
	if unit, err := currency.ParseISO(code); err == nil {
		symbol = ptBR.Sprint(currency.Symbol(unit))
	}

	rounded := d.Round(2)
	digits := ptBR.Sprint(number.Decimal(rounded.Abs().InexactFloat64(), number.Scale(2)))
	if rounded.IsNegative() {
		return "-" + symbol + " " + digits
	}
	return symbol + " " + digits
}

// Cents returns the amount rounded half-up to whole cents.
func Cents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
