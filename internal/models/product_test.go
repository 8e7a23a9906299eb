package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockPredicates(t *testing.T) {
	testCases := []struct {
		name    string
		stock   Stock
		listed  bool
		inStock bool
		low     bool
		label   string
	}{
		{"Plenty", Units(10), true, true, false, "Disponible (10)"},
		{"Last Units", Units(3), true, true, true, "Disponible (3)"},
		{"Zero", Units(0), false, false, false, NoStockLabel},
		{"Negative", Units(-1), false, false, false, NoStockLabel},
		{"Sentinel", UnknownStock(), true, false, false, NoStockLabel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.listed, tc.stock.Listed())
			assert.Equal(t, tc.inStock, tc.stock.InStock())
			assert.Equal(t, tc.inStock, tc.stock.Purchasable())
			assert.Equal(t, tc.low, tc.stock.Low())
			assert.Equal(t, tc.label, tc.stock.String())
		})
	}
}

func TestStockJSON(t *testing.T) {
	data, err := json.Marshal([]Stock{Units(4), UnknownStock()})
	require.NoError(t, err)
	assert.JSONEq(t, `[4, "Sin stock"]`, string(data))

	var back []Stock
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Stock{Units(4), UnknownStock()}, back)

	var bad Stock
	assert.Error(t, json.Unmarshal([]byte(`{}`), &bad))
}

func TestFilterStateClone(t *testing.T) {
	min := 100.0
	f := DefaultFilterState()
	f.SelectedBrands = []string{"Dior"}
	f.PriceMin = &min

	c := f.Clone()
	c.SelectedBrands[0] = "Chanel"
	*c.PriceMin = 5

	assert.Equal(t, "Dior", f.SelectedBrands[0])
	assert.Equal(t, 100.0, *f.PriceMin)
	assert.True(t, f.SortKey.Valid())
	assert.False(t, SortKey("random").Valid())
}
