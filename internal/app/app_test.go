package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dmparfum/internal/catalog"
	"dmparfum/internal/feed"
	"dmparfum/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const feedCSV = `"id","nombre","marca","precio","categoria","descripcion","imagen","stock"
"1","Sauvage","Dior","$150,000","masculino","Fresco","","5"
"2","Olympea","Paco Rabanne","$120,000","femenino","","","0"
"3","CK One","Calvin Klein","$80,000","unisex","","","consultar"
`

func testConfig(t *testing.T, feedURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Feed.URL = feedURL
	cfg.Store.Driver = "memory"
	cfg.Store.Path = ""
	return cfg
}

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedCSV))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAppLoadAndOrder(t *testing.T) {
	srv := feedServer(t)
	a, err := New(testConfig(t, srv.URL), nil)
	require.NoError(t, err)
	defer a.Close()

	snap := a.LoadCatalog(context.Background())
	require.False(t, snap.Degraded)
	require.Len(t, snap.Products, 2)
	assert.Equal(t, "https://via.placeholder.com/300x400/8B4513/FFFFFF?text=Sin+Imagen", snap.Products[0].Image)

	_, err = a.OrderLink()
	assert.ErrorIs(t, err, ErrEmptyCart)

	p, err := a.AddToCart(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Sauvage", p.Name)

	_, err = a.AddToCart(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotPurchasable)
	_, err = a.AddToCart(context.Background(), 2)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	link, err := a.OrderLink()
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/541162634332", u.Path)
	assert.Contains(t, u.Query().Get("text"), "*TOTAL: $150.000*")
}

func TestAppAddToCartLoadsCatalogOnDemand(t *testing.T) {
	srv := feedServer(t)
	a, err := New(testConfig(t, srv.URL), nil)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.AddToCart(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Cart.Count())
}

func TestAppFallsBackToBackup(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	defer dead.Close()

	backup := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(backup, []byte(`[
  {"id": 7, "name": "Libre", "brand": "YSL", "price": 99000, "category": "femenino", "stock": 2},
  {"id": 8, "name": "Agotado", "brand": "YSL", "price": 1, "category": "femenino", "stock": 0},
  {"id": 9, "name": "Consultar", "brand": "YSL", "price": 1, "category": "unisex", "stock": "Sin stock"}
]`), 0o644))

	cfg := testConfig(t, dead.URL)
	cfg.Feed.BackupFile = backup
	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	snap := a.LoadCatalog(context.Background())
	assert.True(t, snap.Degraded)
	assert.Error(t, snap.Err)
	assert.Equal(t, []int{7, 9}, []int{snap.Products[0].ID, snap.Products[1].ID})
	assert.Equal(t, catalog.StatusOK, catalog.Status(snap.Products, snap.Products))
}

func TestLoadBackup(t *testing.T) {
	products, err := LoadBackup("")
	require.NoError(t, err)
	assert.Nil(t, products)

	_, err = LoadBackup(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"id": 1}`), 0o644))
	_, err = LoadBackup(bad)
	assert.Error(t, err)
}

func TestContactLink(t *testing.T) {
	a, err := New(testConfig(t, "http://127.0.0.1:1/unused"), nil)
	require.NoError(t, err)
	defer a.Close()

	link, err := a.ContactLink("Ana", "ana@example.com", "Hola")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/541162634332?text="))

	_, err = a.ContactLink("", "ana@example.com", "Hola")
	assert.Error(t, err)
}

func TestNewSourcePicksFetcher(t *testing.T) {
	cfg := testConfig(t, "http://example.invalid/feed")
	assert.IsType(t, &feed.SheetSource{}, NewSource(cfg, nil))
	cfg.Feed.Fetcher = "browser"
	assert.IsType(t, &feed.BrowserSource{}, NewSource(cfg, nil))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, "http://example.invalid/feed")
	cfg.Store.Driver = "redis"
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = NewLogger("loud", false)
	assert.Error(t, err)
}
