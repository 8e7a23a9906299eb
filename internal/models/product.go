package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// NoStockLabel is the sentinel shown when the stock cell cannot be read as a number.
const NoStockLabel = "Sin stock"

// Category values accepted from the feed.
const (
	CategoryMasculino = "masculino"
	CategoryFemenino  = "femenino"
	CategoryUnisex    = "unisex"
	// CategoryAll is only meaningful in a FilterState.
	CategoryAll = "all"
)

// Product is one catalog row after normalization. It is never mutated after parsing.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Stock       Stock   `json:"stock"`
	WhatsApp    string  `json:"whatsapp"`
	Instagram   string  `json:"instagram"`
}

// Stock is either a unit count or the "no stock available" sentinel.
type Stock struct {
	Units   int
	Unknown bool
}

// Units returns a numeric stock value.
func Units(n int) Stock { return Stock{Units: n} }

// UnknownStock returns the sentinel.
func UnknownStock() Stock { return Stock{Unknown: true} }

// Listed reports whether a product with this stock belongs in the working catalog:
// a positive count or the sentinel. Zero and negative counts are dropped.
func (s Stock) Listed() bool {
	return s.Unknown || s.Units > 0
}

// InStock is true only for a positive numeric count.
func (s Stock) InStock() bool {
	return !s.Unknown && s.Units > 0
}

// Purchasable mirrors InStock; the sentinel is shown but cannot be added to a cart.
func (s Stock) Purchasable() bool {
	return s.InStock()
}

// Low flags the "last units" badge (1 to 3 units left).
func (s Stock) Low() bool {
	return !s.Unknown && s.Units > 0 && s.Units <= 3
}

func (s Stock) String() string {
	if s.InStock() {
		return fmt.Sprintf("Disponible (%d)", s.Units)
	}
	return NoStockLabel
}

// MarshalJSON writes the count as a number and the sentinel as its label.
func (s Stock) MarshalJSON() ([]byte, error) {
	if s.Unknown {
		return json.Marshal(NoStockLabel)
	}
	return []byte(strconv.Itoa(s.Units)), nil
}

// UnmarshalJSON accepts either form written by MarshalJSON.
func (s *Stock) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Units(n)
		return nil
	}
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("stock must be a number or a label: %w", err)
	}
	*s = UnknownStock()
	return nil
}

// CartLine is one product entry in the cart. Lines are unique by ID.
type CartLine struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Brand    string    `json:"brand"`
	Price    float64   `json:"price"`
	Image    string    `json:"image"`
	Category string    `json:"category"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

// Subtotal is price times quantity.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}
