// Package money holds the fixed-point helpers shared by cart, order and payment code.
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round rounds to currency precision (2 decimals, half away from zero).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns amount * pct / 100 rounded to currency precision.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(pct).Div(hundred))
}

// MinorUnits converts a price into integer cents. The amount is rounded first
// so 19.999 never truncates to 1999.
func MinorUnits(d decimal.Decimal) int64 {
	return Round(d).Mul(hundred).IntPart()
}

// Parse reads a decimal string such as "199.90".
func Parse(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
