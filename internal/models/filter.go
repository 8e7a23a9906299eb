package models

// SortKey selects the ordering of a catalog view.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
)

// Valid reports whether k is one of the known sort keys.
func (k SortKey) Valid() bool {
	switch k {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

// FilterState holds every user-controlled input of the catalog view.
// A nil PriceMin or PriceMax means the bound is absent.
type FilterState struct {
	Category       string   `json:"category"`
	SelectedBrands []string `json:"selectedBrands"`
	StockOnly      bool     `json:"stockOnly"`
	PriceMin       *float64 `json:"priceMin,omitempty"`
	PriceMax       *float64 `json:"priceMax,omitempty"`
	SearchText     string   `json:"searchText"`
	SortKey        SortKey  `json:"sortKey"`
}

// DefaultFilterState is the identity filter applied on page load.
func DefaultFilterState() FilterState {
	return FilterState{
		Category: CategoryAll,
		SortKey:  SortRelevance,
	}
}

// Clone returns a deep copy so callers can hand state across goroutines.
func (f FilterState) Clone() FilterState {
	out := f
	if f.SelectedBrands != nil {
		out.SelectedBrands = append([]string(nil), f.SelectedBrands...)
	}
	if f.PriceMin != nil {
		v := *f.PriceMin
		out.PriceMin = &v
	}
	if f.PriceMax != nil {
		v := *f.PriceMax
		out.PriceMax = &v
	}
	return out
}
