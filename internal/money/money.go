// Package money wraps shopspring/decimal with the rounding and formatting
// rules used throughout invoice generation. Amounts carry 2 decimal places,
// rounded half away from zero; quantities and rates are rendered fixed-width
// with trailing zeros trimmed.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// Hundred is decimal 100, the divisor for percentage rates
var Hundred = decimal.NewFromInt(100)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FromPtr dereferences an optional decimal, reporting whether it was present.
func FromPtr(p *decimal.Decimal) (decimal.Decimal, bool) {
	if p == nil {
		return Zero, false
	}
	return *p, true
}

// Mul multiplies two decimals and rounds to 2 places
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return Round2(a.Mul(b))
}

// Div divides a by b and rounds to 2 places; division by zero yields zero
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return Zero
	}
	return Round2(a.Div(b))
}

// Tax computes rate% of amount, rounded to 2 places
func Tax(amount, ratePercent decimal.Decimal) decimal.Decimal {
	if ratePercent.IsZero() {
		return Zero
	}
	return Round2(amount.Mul(ratePercent).Div(Hundred))
}

// Currency uppercases and validates a 3-letter currency code, defaulting to
// EUR. Both the XML builder and the visual PDF layer render through this so
// the two document halves always agree.
func Currency(s string) string {
	c := strings.ToUpper(strings.TrimSpace(s))
	if currencyPattern.MatchString(c) {
		return c
	}
	return "EUR"
}

// FormatAmount renders an amount with exactly 2 decimal places.
func FormatAmount(d decimal.Decimal) string {
	return Round2(d).StringFixed(2)
}

// FormatQuantity renders a quantity with up to 4 decimal places, trailing
// zeros trimmed ("2.5000" -> "2.5", "1.0000" -> "1").
func FormatQuantity(d decimal.Decimal) string {
	return trimZeros(d.StringFixed(4))
}

// FormatRate renders a VAT rate with up to 2 decimal places, trailing zeros
// trimmed ("19.00" -> "19").
func FormatRate(d decimal.Decimal) string {
	return trimZeros(d.StringFixed(2))
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
