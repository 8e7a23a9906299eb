package catalog

import (
	"dmparfum/internal/models"
	"dmparfum/utils"
)

// DefaultFeaturedCount is how many products the home carousel shows.
const DefaultFeaturedCount = 12

// Brand is one entry of the brand filter list.
type Brand struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Brands lists the distinct brands of the catalog in sorted order.
func Brands(products []models.Product) []Brand {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Brand)
	}
	unique := utils.UniqueSorted(names)

	brands := make([]Brand, 0, len(unique))
	for _, name := range unique {
		brands = append(brands, Brand{Name: name, Slug: utils.CreateSlug(name)})
	}
	return brands
}

// Featured picks the first n listed products in feed order.
func Featured(products []models.Product, n int) []models.Product {
	if n <= 0 {
		n = DefaultFeaturedCount
	}
	featured := make([]models.Product, 0, n)
	for _, p := range products {
		if len(featured) == n {
			break
		}
		if p.Stock.Listed() {
			featured = append(featured, p)
		}
	}
	return featured
}
