// Package money wraps shopspring/decimal with the conventions used for
// currency amounts: two decimal places, integer minor units at the store
// boundary, rounding half away from zero.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places kept for stored amounts.
const Places = 2

// Zero is the zero amount.
var Zero = decimal.Zero

// Parse parses a decimal string such as "1250.50".
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// MustParse is Parse for literals known to be valid. It panics otherwise.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// FromMinor converts integer minor units (paisa, cents) to a decimal amount.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -Places)
}

// ToMinor rounds d to Places and returns it as integer minor units.
func ToMinor(d decimal.Decimal) int64 {
	return d.Shift(Places).Round(0).IntPart()
}

// Round rounds d to Places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Sum adds all amounts. The sum of no amounts is zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
