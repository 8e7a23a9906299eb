package utils

import (
	"regexp"
	"sort"
	"strings"
)

// UniqueSorted returns the distinct non-empty values of slice in ascending order.
func UniqueSorted(slice []string) []string {
	seen := make(map[string]bool)
	unique := []string{}
	for _, entry := range slice {
		if entry == "" || seen[entry] {
			continue
		}
		seen[entry] = true
		unique = append(unique, entry)
	}
	sort.Strings(unique)
	return unique
}

// slugRegex matches any character that is NOT a letter, a number, or a hyphen.
var slugRegex = regexp.MustCompile(`[^\p{L}\p{N}-]+`)

// whitespaceRegex collapses runs of spaces so "Carolina  Herrera" slugs to one hyphen.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// CreateSlug builds a stable identifier from a display label ("Paco Rabanne" -> "paco-rabanne").
func CreateSlug(label string) string {
	slug := whitespaceRegex.ReplaceAllString(strings.TrimSpace(label), "-")
	slug = slugRegex.ReplaceAllString(slug, "")
	return strings.ToLower(slug)
}
