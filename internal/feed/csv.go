package feed

import (
	"strings"

	"dmparfum/internal/models"
	"dmparfum/utils"
)

// minFields is the shortest row that still describes a product.
const minFields = 6

// Column positions in the sheet.
const (
	colID = iota
	colName
	colBrand
	colPrice
	colCategory
	colDescription
	colImage
	colStock
	colWhatsApp
	colInstagram
)

// SplitLine splits one CSV line on commas outside double quotes. A quote
// only toggles the quoted state and is dropped; there is no escaped-quote
// form, so a stray quote swallows the commas after it. Fields are trimmed.
func SplitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}

// ParseCSV parses a whole export. The first line is the header. Short rows
// are skipped, as are rows whose numeric stock is zero or negative.
func ParseCSV(text string, defaults RowDefaults) []models.Product {
	lines := strings.Split(text, "\n")
	products := []models.Product{}

	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		product, ok := ParseRow(SplitLine(line), i, defaults)
		if !ok || !product.Stock.Listed() {
			continue
		}
		products = append(products, product)
	}
	return products
}

// ParseRow builds a Product from split fields. row is the line position used
// when the id cell is unreadable. ok is false for rows with fewer than six fields.
func ParseRow(fields []string, row int, defaults RowDefaults) (product models.Product, ok bool) {
	if len(fields) < minFields {
		return models.Product{}, false
	}

	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	orDefault := func(i int, fallback string) string {
		if v := field(i); v != "" {
			return v
		}
		return fallback
	}

	id, idOK := utils.ParseLeadingInt(field(colID))
	if !idOK || id == 0 {
		id = row
	}

	stock := models.UnknownStock()
	if units, unitsOK := utils.ParseLeadingInt(field(colStock)); unitsOK {
		stock = models.Units(units)
	}

	return models.Product{
		ID:          id,
		Name:        orDefault(colName, defaults.Name),
		Brand:       orDefault(colBrand, defaults.Brand),
		Price:       utils.ParsePrice(field(colPrice)),
		Category:    normalizeCategory(field(colCategory)),
		Description: orDefault(colDescription, defaults.Description),
		Image:       orDefault(colImage, defaults.Image),
		Stock:       stock,
		WhatsApp:    orDefault(colWhatsApp, defaults.WhatsApp),
		Instagram:   orDefault(colInstagram, defaults.Instagram),
	}, true
}

func normalizeCategory(raw string) string {
	switch c := strings.ToLower(strings.TrimSpace(raw)); c {
	case models.CategoryMasculino, models.CategoryFemenino, models.CategoryUnisex:
		return c
	default:
		return models.CategoryUnisex
	}
}
