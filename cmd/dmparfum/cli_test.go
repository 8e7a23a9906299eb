package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dmparfum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedCSV = `"id","nombre","marca","precio","categoria","descripcion","imagen","stock"
"1","Sauvage","Dior","$150,000","masculino","","","5"
"2","Olympea","Paco Rabanne","$120,000","femenino","","","2"
"3","CK One","Calvin Klein","$80,000","unisex","","","consultar"
"4","Agotado","Dior","$10,000","unisex","","","0"
`

// setup writes a config pointing at a local feed and a file store.
func setup(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedCSV))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	body := fmt.Sprintf(`feed:
  url: %s
store:
  driver: file
  path: %s
log:
  level: error
`, srv.URL, filepath.Join(dir, "store"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	application = nil
	outputJSON = false
	orderAsLink = false
	filterCategory = models.CategoryAll
	filterBrands = nil
	filterInStock = false
	filterSearch = ""
	filterSort = string(models.SortRelevance)
	filterMin, filterMax = "", ""
	featuredCount = 12
	defer func() {
		if application != nil {
			application.Close()
			application = nil
		}
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCatalogCmd(t *testing.T) {
	cfgFile := setup(t)

	out, err := execute(t, "catalog", "-c", cfgFile, "--json", "--sort", "price-asc")
	require.NoError(t, err)
	var view []models.Product
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	ids := make([]int, 0, len(view))
	for _, p := range view {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int{3, 2, 1}, ids)

	out, err = execute(t, "catalog", "-c", cfgFile, "--sort", "relevance", "--search", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "no matches for current filters")

	_, err = execute(t, "catalog", "-c", cfgFile, "--sort", "cheapest")
	assert.Error(t, err)

	out, err = execute(t, "catalog", "-c", cfgFile, "--json", "--brand", "Dior", "--in-stock")
	require.NoError(t, err)
	view = nil
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view, 1)
	assert.Equal(t, 1, view[0].ID)

	out, err = execute(t, "catalog", "-c", cfgFile, "--json")
	require.NoError(t, err)
	view = nil
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Len(t, view, 3, "filters from the previous run do not stick")
}

func TestBrandsAndFeaturedCmd(t *testing.T) {
	cfgFile := setup(t)

	out, err := execute(t, "brands", "-c", cfgFile)
	require.NoError(t, err)
	assert.Equal(t, "calvin-klein\tCalvin Klein\ndior\tDior\npaco-rabanne\tPaco Rabanne\n", out)

	out, err = execute(t, "featured", "-c", cfgFile, "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Sauvage")
	assert.Contains(t, out, "Olympea")
	assert.NotContains(t, out, "CK One")
	assert.Contains(t, out, "2 products")
}

func TestCartCmdFlow(t *testing.T) {
	cfgFile := setup(t)

	out, err := execute(t, "cart", "show", "-c", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Tu carrito está vacío")

	_, err = execute(t, "cart", "order", "--link", "-c", cfgFile)
	assert.Error(t, err)

	for _, id := range []string{"1", "1", "2"} {
		_, err = execute(t, "cart", "add", id, "-c", cfgFile)
		require.NoError(t, err)
	}
	_, err = execute(t, "cart", "add", "3", "-c", cfgFile)
	assert.Error(t, err, "sentinel stock cannot be bought")

	out, err = execute(t, "cart", "show", "-c", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "3 unidades, total $420.000")

	out, err = execute(t, "cart", "order", "--link", "-c", cfgFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "https://wa.me/541162634332?text="))

	out, err = execute(t, "cart", "order", "-c", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "💰 *TOTAL: $420.000*")

	_, err = execute(t, "cart", "set", "1", "0", "-c", cfgFile)
	assert.Error(t, err)
	_, err = execute(t, "cart", "remove", "9", "-c", cfgFile)
	assert.Error(t, err)

	export := filepath.Join(t.TempDir(), "cart.json")
	_, err = execute(t, "cart", "export", export, "-c", cfgFile)
	require.NoError(t, err)

	_, err = execute(t, "cart", "clear", "-c", cfgFile)
	require.NoError(t, err)
	out, err = execute(t, "cart", "-c", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Tu carrito está vacío")

	out, err = execute(t, "cart", "import", export, "-c", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "3 unidades")

	out, err = execute(t, "cart", "remove", "2", "-c", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Olympea eliminado del carrito")
}

func TestContactCmd(t *testing.T) {
	cfgFile := setup(t)

	out, err := execute(t, "contact", "-c", cfgFile, "--name", "Ana", "--email", "ana@example.com", "--message", "Hola")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/541162634332?text=Hola!%20Soy%20Ana%20(ana%40example.com).%20Hola\n", out)
}

func TestBrowseCmd(t *testing.T) {
	cfgFile := setup(t)

	rootCmd.SetIn(strings.NewReader(":cat femenino\nsauv\n"))
	defer rootCmd.SetIn(nil)

	out, err := execute(t, "browse", "-c", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Olympea")
	assert.Contains(t, out, "no matches for current filters")
}
