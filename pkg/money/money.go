// Package money holds the decimal conventions shared by every pricing
// component: how currency amounts and rates are compared and rounded.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Rounding precision applied once at the result boundary.
const (
	CurrencyPlaces int32 = 2
	RatePlaces     int32 = 4
)

// Common constants.
var (
	Hundred = decimal.NewFromInt(100)
	One     = decimal.NewFromInt(1)
)

// RoundCurrency rounds an amount to cents, half away from zero.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// RoundRate rounds a rate or ratio to four decimal places.
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RatePlaces)
}

// Min returns the smallest of the given values.
func Min(first decimal.Decimal, rest ...decimal.Decimal) decimal.Decimal {
	return decimal.Min(first, rest...)
}

// Max returns the largest of the given values.
func Max(first decimal.Decimal, rest ...decimal.Decimal) decimal.Decimal {
	return decimal.Max(first, rest...)
}

// Clamp bounds v to the closed interval [lo, hi]. When lo > hi the bounds are
// swapped rather than producing an empty interval.
func Clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if lo.GreaterThan(hi) {
		lo, hi = hi, lo
	}
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

// FloorZero returns d, or zero when d is negative. The boolean reports
// whether the value was clamped.
func FloorZero(d decimal.Decimal) (decimal.Decimal, bool) {
	if d.IsNegative() {
		return decimal.Zero, true
	}
	return d, false
}

// FormatUSD renders an amount as a dollar string, for example "$320,000.00".
func FormatUSD(d decimal.Decimal) string {
	s := RoundCurrency(d).Abs().StringFixed(CurrencyPlaces)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if d.IsNegative() && !RoundCurrency(d).IsZero() {
		sign = "-"
	}
	return sign + "$" + b.String() + "." + frac
}
