package ui

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// regionalIndicatorOffset maps 'A' to U+1F1E6 REGIONAL INDICATOR SYMBOL LETTER A.
const regionalIndicatorOffset = 127397

// FlagGlyph builds a flag emoji from a two-letter uppercase country code.
// Anything else yields an empty string.
func FlagGlyph(code string) string {
	if len(code) != 2 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(rune(regionalIndicatorOffset + int(c)))
	}
	return b.String()
}

type SymbolFormat int

const (
	SymbolShort SymbolFormat = iota
	SymbolLong
	SymbolNone
)

type PriceOptions struct {
	Symbol         SymbolFormat
	NoCentsIfWhole bool
}

// FormatPrice renders an amount given in minor units of currencyCode.
func FormatPrice(currencyCode string, minorUnits int64, opts PriceOptions) string {
	code := strings.ToUpper(currencyCode)

	scale := 2
	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
		code = unit.String()
	}

	sign := ""
	amount := minorUnits
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	divisor := int64(1)
	for i := 0; i < scale; i++ {
		divisor *= 10
	}
	whole, cents := amount/divisor, amount%divisor

	number := GroupDigits(whole)
	if scale > 0 && !(cents == 0 && opts.NoCentsIfWhole) {
		number = fmt.Sprintf("%s.%0*d", number, scale, cents)
	}

	return sign + symbolFor(code, opts.Symbol) + number
}

// symbolFor reads CLDR symbols. Short symbols are the English narrow forms;
// long symbols are printed without a locale, which selects root forms such
// as US$.
func symbolFor(code string, format SymbolFormat) string {
	if format == SymbolNone {
		return ""
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code + " "
	}
	if format == SymbolLong {
		return fmt.Sprint(currency.Symbol(unit))
	}
	return message.NewPrinter(language.English).Sprint(currency.NarrowSymbol(unit))
}

// GroupDigits formats n with English thousands separators.
func GroupDigits(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
