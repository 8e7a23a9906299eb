package feed

import (
	"errors"
	"strings"

	"dmparfum/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTMLTable reads the first table of an HTML export. The first row is
// the header; every other row goes through the same rules as a CSV line.
func ParseHTMLTable(htmlContent string, defaults RowDefaults) ([]models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.New("no table in document")
	}

	products := []models.Product{}
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		var fields []string
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			fields = append(fields, strings.TrimSpace(cell.Text()))
		})
		if len(fields) == 0 {
			return
		}
		product, ok := ParseRow(fields, i, defaults)
		if !ok || !product.Stock.Listed() {
			return
		}
		products = append(products, product)
	})
	return products, nil
}
