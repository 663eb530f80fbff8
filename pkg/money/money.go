// Package money holds the single rounding rule used wherever an amount leaves
// exact arithmetic: persistence, receipts and payment links.
package money

import (
	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits amounts are stored and shown with.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Round rounds half away from zero to two places. Amounts in this system are
// never negative, so this is round-half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Format renders d with exactly two decimals, e.g. "236.00".
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Percent returns amount * rate / 100 without rounding.
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// HasAtMostPlaces reports whether d carries no more than n fractional digits.
func HasAtMostPlaces(d decimal.Decimal, n int32) bool {
	return d.Equal(d.Truncate(n))
}
