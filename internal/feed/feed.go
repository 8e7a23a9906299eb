// Package feed turns the spreadsheet export that backs the shop into Products.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"dmparfum/internal/models"
)

var (
	// ErrUnavailable covers network failures and non-2xx responses.
	ErrUnavailable = errors.New("feed unavailable")
	// ErrMalformed means the feed was fetched but no row survived parsing.
	ErrMalformed = errors.New("feed malformed")
)

// Export formats understood by the sheet endpoint.
const (
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// Source defines the basic behavior for anything that can produce the catalog.
// Product order is feed order; sources never sort.
type Source interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
}

// SheetURL builds the public export URL of one sheet of a spreadsheet.
func SheetURL(sheetID, sheetName, format string) string {
	if format == "" {
		format = FormatCSV
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:%s&sheet=%s",
		url.PathEscape(sheetID), format, url.QueryEscape(sheetName))
}

// RowDefaults are the values substituted for empty cells.
type RowDefaults struct {
	Name        string
	Brand       string
	Description string
	Image       string
	WhatsApp    string
	Instagram   string
}

// DefaultRowDefaults returns the shop's stock placeholders.
func DefaultRowDefaults() RowDefaults {
	return RowDefaults{
		Name:        "Sin nombre",
		Brand:       "Sin marca",
		Description: "Sin descripción",
		Image:       "https://via.placeholder.com/300x400/8B4513/FFFFFF?text=Sin+Imagen",
		WhatsApp:    "+573001234567",
		Instagram:   "https://www.instagram.com/dm.parfum_/",
	}
}

// parsePayload dispatches on the export format and applies the zero-row rule.
func parsePayload(format, payload string, defaults RowDefaults) ([]models.Product, error) {
	var (
		products []models.Product
		err      error
	)
	switch format {
	case FormatHTML:
		products, err = ParseHTMLTable(payload, defaults)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	case FormatCSV, "":
		products = ParseCSV(payload, defaults)
	default:
		return nil, fmt.Errorf("unknown feed format %q", format)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no product rows", ErrMalformed)
	}
	return products, nil
}
