package catalog

import (
	"sort"
	"strings"

	"dmparfum/internal/models"
	"dmparfum/utils"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ViewStatus tells the renderer which empty state, if any, to show.
type ViewStatus int

const (
	StatusOK ViewStatus = iota
	// StatusNoMatches: the catalog has products but none pass the filters.
	StatusNoMatches
	// StatusEmptyCatalog: nothing was loaded at all.
	StatusEmptyCatalog
)

func (s ViewStatus) String() string {
	switch s {
	case StatusNoMatches:
		return "no matches for current filters"
	case StatusEmptyCatalog:
		return "catalog unavailable"
	default:
		return "ok"
	}
}

// Status classifies a computed view against the catalog it came from.
func Status(all, view []models.Product) ViewStatus {
	switch {
	case len(all) == 0:
		return StatusEmptyCatalog
	case len(view) == 0:
		return StatusNoMatches
	default:
		return StatusOK
	}
}

// ParseBound reads a price bound control. Empty or non-numeric input means no bound.
func ParseBound(input string) *float64 {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}
	v, ok := utils.ParseLeadingFloat(trimmed)
	if !ok {
		return nil
	}
	return &v
}

// ComputeView filters and sorts products according to fs. It never modifies
// products; the result is a fresh slice.
func ComputeView(products []models.Product, fs models.FilterState) []models.Product {
	var brands map[string]bool
	if len(fs.SelectedBrands) > 0 {
		brands = make(map[string]bool, len(fs.SelectedBrands))
		for _, b := range fs.SelectedBrands {
			brands[b] = true
		}
	}
	query := strings.ToLower(strings.TrimSpace(fs.SearchText))

	result := make([]models.Product, 0, len(products))
	for _, p := range products {
		if fs.Category != "" && fs.Category != models.CategoryAll && p.Category != fs.Category {
			continue
		}
		if brands != nil && !brands[p.Brand] {
			continue
		}
		if fs.StockOnly && !p.Stock.InStock() {
			continue
		}
		if fs.PriceMin != nil && p.Price < *fs.PriceMin {
			continue
		}
		if fs.PriceMax != nil && p.Price > *fs.PriceMax {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		result = append(result, p)
	}

	sortProducts(result, fs.SortKey)
	return result
}

// sortProducts orders in place. Relevance keeps feed order; every other key
// is stable so equal prices or names keep it too.
func sortProducts(products []models.Product, key models.SortKey) {
	switch key {
	case models.SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case models.SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case models.SortNameAsc, models.SortNameDesc:
		c := collate.New(language.Spanish)
		desc := key == models.SortNameDesc
		sort.SliceStable(products, func(i, j int) bool {
			cmp := c.CompareString(products[i].Name, products[j].Name)
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
}
