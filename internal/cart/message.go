package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dmparfum/internal/models"
	"dmparfum/utils"
)

// EmptyCartMessage replaces the order summary when there is nothing to order.
const EmptyCartMessage = "Tu carrito está vacío"

// ErrInvalidImport rejects documents that are not a cart export.
var ErrInvalidImport = errors.New("invalid cart export")

// OrderMessage renders the cart as the text sent to the shop over WhatsApp.
func (c *Cart) OrderMessage(shopName string) string {
	lines := c.Lines()
	if len(lines) == 0 {
		return EmptyCartMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🛍️ *PEDIDO %s*\n\n", strings.ToUpper(shopName))
	b.WriteString("Hola! Me gustaría realizar el siguiente pedido:\n\n")

	for i, l := range lines {
		fmt.Fprintf(&b, "%d. *%s* - %s\n", i+1, l.Name, l.Brand)
		fmt.Fprintf(&b, "   Cantidad: %d\n", l.Quantity)
		fmt.Fprintf(&b, "   Precio unitario: %s\n", utils.FormatCOP(l.Price))
		fmt.Fprintf(&b, "   Subtotal: %s\n\n", utils.FormatCOP(l.Subtotal()))
	}

	fmt.Fprintf(&b, "💰 *TOTAL: %s*\n\n", utils.FormatCOP(total(lines)))
	b.WriteString("📦 Envío: Gratis\n")
	b.WriteString("📍 Dirección de entrega: [Por confirmar]\n\n")
	fmt.Fprintf(&b, "¡Gracias por elegir %s! 🌟", shopName)
	return b.String()
}

// Export is the document written by Cart.Export.
type Export struct {
	Items      []models.CartLine `json:"items"`
	Total      float64           `json:"total"`
	Count      int               `json:"count"`
	ExportedAt time.Time         `json:"exportedAt"`
}

// Export serializes the cart with its totals.
func (c *Cart) Export() ([]byte, error) {
	lines := c.Lines()
	if lines == nil {
		lines = []models.CartLine{}
	}
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return json.MarshalIndent(Export{
		Items:      lines,
		Total:      total(lines),
		Count:      count,
		ExportedAt: c.now().UTC(),
	}, "", "  ")
}

// ExportFileName is the suggested name for an export taken at t.
func ExportFileName(t time.Time) string {
	return "dm_parfum_cart_" + t.Format("2006-01-02") + ".json"
}

// Import replaces the cart with the items of an export document. Totals in
// the document are ignored; they are derived from the items.
func (c *Cart) Import(data []byte) error {
	var doc struct {
		Items *[]models.CartLine `json:"items"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if doc.Items == nil {
		return fmt.Errorf("%w: missing items", ErrInvalidImport)
	}

	seen := make(map[int]bool, len(*doc.Items))
	for _, l := range *doc.Items {
		if l.Quantity < 1 {
			return fmt.Errorf("%w: item %d has quantity %d", ErrInvalidImport, l.ID, l.Quantity)
		}
		if seen[l.ID] {
			return fmt.Errorf("%w: duplicate item %d", ErrInvalidImport, l.ID)
		}
		seen[l.ID] = true
	}

	items := *doc.Items
	return c.mutate(func([]models.CartLine) ([]models.CartLine, error) {
		return items, nil
	})
}
