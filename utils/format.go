package utils

import (
	"github.com/dustin/go-humanize"
)

// FormatCOP renders an amount the way Colombian pesos are shown in the shop:
// dot thousands separator, no decimals ("$150.000"). Fractions are rounded
// half up to whole pesos, so $12.50 shows as $13.
func FormatCOP(amount float64) string {
	return "$" + humanize.FormatFloat("#.###,", amount)
}
