package cart

import "fmt"

// TotalCents sums quantity × unit price over the lines. An empty cart totals
// zero. A line whose product is unknown fails the whole computation instead
// of being priced at zero.
func TotalCents(lines []PricedLine) (int64, error) {
	var total int64
	for _, l := range lines {
		if !l.Known {
			return 0, fmt.Errorf("%w: %s", ErrProductUnknown, l.ProductID)
		}
		total += l.PriceCents * int64(l.Quantity)
	}
	return total, nil
}
