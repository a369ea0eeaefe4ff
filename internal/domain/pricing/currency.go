package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency layout: pt-BR locale, BRL, matching Intl.NumberFormat output.
const (
	currencySymbol    = "R$"
	currencySpace     = "\u00a0"
	groupSeparator    = "."
	decimalSeparator  = ","
	fractionDigits    = 2
	groupSize         = 3
	notANumber        = "NaN"
	infinity          = "∞"
	negativeSignGlyph = "-"
)

// FormatCurrency renders amount as Brazilian reais, e.g. "R$\u00a01.234,56"
// (with a no-break space after the symbol). Rounding is half away from zero
// on the shortest decimal form of amount. The sign follows amount, so tiny
// negatives render as "-R$\u00a00,00". NaN renders as "R$\u00a0NaN" and the
// infinities as "R$\u00a0∞" and "-R$\u00a0∞".
func FormatCurrency(amount float64) string {
	switch {
	case math.IsNaN(amount):
		return currencySymbol + currencySpace + notANumber
	case math.IsInf(amount, 1):
		return currencySymbol + currencySpace + infinity
	case math.IsInf(amount, -1):
		return negativeSignGlyph + currencySymbol + currencySpace + infinity
	}

	sign := ""
	if math.Signbit(amount) {
		sign = negativeSignGlyph
		amount = -amount
	}
	rounded := decimal.NewFromFloat(amount).Round(fractionDigits)
	whole, frac, _ := strings.Cut(rounded.StringFixed(fractionDigits), ".")
	return sign + currencySymbol + currencySpace + groupThousands(whole) + decimalSeparator + frac
}

// RoundCents rounds amount to two decimals the same way FormatCurrency does.
func RoundCents(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return amount
	}
	return decimal.NewFromFloat(amount).Round(fractionDigits).InexactFloat64()
}

func groupThousands(digits string) string {
	if len(digits) <= groupSize {
		return digits
	}
	var b strings.Builder
	b.Grow(len(digits) + len(digits)/groupSize)
	head := len(digits) % groupSize
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += groupSize {
		if b.Len() > 0 {
			b.WriteString(groupSeparator)
		}
		b.WriteString(digits[i : i+groupSize])
	}
	return b.String()
}
