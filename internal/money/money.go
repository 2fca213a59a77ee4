// Package money converts between the integer minor units stored in Postgres
// and the decimal amounts used on the JSON and gateway boundaries. Amounts
// never live as floats anywhere in the system.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// String renders cents as a two-decimal amount, e.g. 2550 -> "25.50".
func String(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// ParseCents parses a decimal amount like "10.00" into cents. Amounts with
// more than two decimal places or negative values are rejected.
func ParseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid amount %q: negative", s)
	}
	c := d.Mul(decimal.New(100, 0))
	if !c.IsInteger() {
		return 0, fmt.Errorf("invalid amount %q: more than two decimal places", s)
	}
	return c.IntPart(), nil
}
