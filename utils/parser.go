package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// leadingIntRegex matches an optionally signed run of digits at the start of a string.
	leadingIntRegex = regexp.MustCompile(`^[+-]?\d+`)
	// leadingFloatRegex matches the longest decimal number at the start of a string ("12.5kg" -> "12.5").
	leadingFloatRegex = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

	priceCleaner = strings.NewReplacer("$", "", ",", "")
)

// ParsePrice cleans a spreadsheet price cell and converts it to a float64.
//
// "$" and "," are dropped. A single "." followed by more than two characters
// is a thousands separator ("$150.000" -> 150000), while two or fewer trailing
// digits stay decimals ("1.23" -> 1.23). Anything unparseable is 0.
func ParsePrice(priceStr string) float64 {
	cleaned := priceCleaner.Replace(priceStr)

	if parts := strings.Split(cleaned, "."); len(parts) == 2 && len(parts[1]) > 2 {
		cleaned = parts[0] + parts[1]
	}

	price, ok := ParseLeadingFloat(cleaned)
	if !ok || price < 0 {
		return 0
	}
	return price
}

// ParseLeadingInt reads the integer prefix of s, ignoring leading whitespace and
// any trailing garbage ("12 units" -> 12). ok is false when s has no integer prefix.
func ParseLeadingInt(s string) (n int, ok bool) {
	match := leadingIntRegex.FindString(strings.TrimLeft(s, " \t\r\n"))
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseLeadingFloat reads the decimal prefix of s the same way ParseLeadingInt does.
func ParseLeadingFloat(s string) (float64, bool) {
	match := leadingFloatRegex.FindString(strings.TrimLeft(s, " \t\r\n"))
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
