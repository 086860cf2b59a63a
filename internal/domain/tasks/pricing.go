package tasks

import "github.com/shopspring/decimal"

// DetectPriceChange returns the history row for moving from current to
// requested. Equal prices (by value, so 25 and 25.00 match) need no row.
func DetectPriceChange(current decimal.Decimal, requested *decimal.Decimal) (PriceChange, bool) {
	if requested == nil || requested.Equal(current) {
		return PriceChange{}, false
	}
	return PriceChange{OldPrice: current, NewPrice: *requested}, true
}
