// Package app wires configuration, logging, storage, the product feed, the
// catalog and the cart into one storefront instance.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"dmparfum/internal/cart"
	"dmparfum/internal/catalog"
	"dmparfum/internal/feed"
	"dmparfum/internal/models"
	"dmparfum/internal/store"
	"dmparfum/internal/whatsapp"
	"dmparfum/pkg/config"

	"go.uber.org/zap"
)

var (
	ErrUnknownProduct = errors.New("product not in catalog")
	ErrNotPurchasable = errors.New("product is out of stock")
	ErrEmptyCart      = errors.New("cart is empty")
)

// App is the main application structure holding all dependencies.
type App struct {
	Config  *config.Config
	Log     *zap.Logger
	Store   store.Backend
	Catalog *catalog.Catalog
	Cart    *cart.Cart
}

// New opens the store, restores the cart and prepares an unloaded catalog.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	backend, err := store.Open(store.Options{
		Driver:       cfg.Store.Driver,
		Path:         cfg.Store.Path,
		PollInterval: cfg.Store.PollInterval,
		Logger:       logger.Named("store"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	backup, err := LoadBackup(cfg.Feed.BackupFile)
	if err != nil {
		backend.Close()
		return nil, err
	}

	c, err := cart.New(backend,
		cart.WithMaxIdle(cfg.Cart.MaxIdle),
		cart.WithLogger(logger.Named("cart")))
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to restore cart: %w", err)
	}

	return &App{
		Config:  cfg,
		Log:     logger,
		Store:   backend,
		Catalog: catalog.New(NewSource(cfg, logger.Named("feed")), backup, logger.Named("catalog")),
		Cart:    c,
	}, nil
}

// NewSource picks the feed fetcher named in the config.
func NewSource(cfg *config.Config, logger *zap.Logger) feed.Source {
	defaults := feed.DefaultRowDefaults()
	defaults.Image = cfg.Shop.PlaceholderImage
	defaults.WhatsApp = cfg.Shop.DefaultWhatsApp
	defaults.Instagram = cfg.Shop.DefaultInstagram

	opts := feed.SheetOptions{
		URL:       cfg.FeedURL(),
		Format:    cfg.Feed.Format,
		Defaults:  defaults,
		Timeout:   cfg.Feed.Timeout,
		UserAgent: cfg.Feed.UserAgent,
		Logger:    logger,
	}
	if cfg.Feed.Fetcher == "browser" {
		return feed.NewBrowserSource(opts, cfg.Feed.Headless)
	}
	return feed.NewSheetSource(opts)
}

// LoadBackup reads the fallback product list. An empty path means no backup.
func LoadBackup(path string) ([]models.Product, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading backup products: %w", err)
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("error parsing backup products: %w", err)
	}
	listed := products[:0]
	for _, p := range products {
		if p.Stock.Listed() {
			listed = append(listed, p)
		}
	}
	return listed, nil
}

// NewLogger builds the production logger at level; verbose forces debug.
func NewLogger(level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if verbose {
		level = "debug"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = lvl
	return zcfg.Build()
}

// LoadCatalog fetches the feed. A degraded snapshot is still usable, so the
// feed error is only logged here and reported through Snapshot.Err.
func (a *App) LoadCatalog(ctx context.Context) *catalog.Snapshot {
	snap, err := a.Catalog.Load(ctx)
	if err != nil {
		a.Log.Warn("product feed unavailable", zap.Error(err), zap.Bool("degraded", snap.Degraded))
	}
	return snap
}

// AddToCart adds one unit of the catalog product with the given id.
func (a *App) AddToCart(ctx context.Context, id int) (models.Product, error) {
	if len(a.Catalog.Products()) == 0 {
		a.LoadCatalog(ctx)
	}
	p, ok := a.Catalog.Product(id)
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %d", ErrUnknownProduct, id)
	}
	if !p.Stock.Purchasable() {
		return p, fmt.Errorf("%w: %s", ErrNotPurchasable, p.Name)
	}
	if err := a.Cart.AddItem(p); err != nil {
		return p, err
	}
	return p, nil
}

// OrderLink is the WhatsApp link carrying the current order.
func (a *App) OrderLink() (string, error) {
	if a.Cart.Count() == 0 {
		return "", ErrEmptyCart
	}
	return whatsapp.Link(a.Config.Shop.OrderPhone, a.Cart.OrderMessage(a.Config.Shop.Name)), nil
}

// ContactLink is the WhatsApp link for a contact form submission.
func (a *App) ContactLink(name, email, message string) (string, error) {
	text, err := whatsapp.ContactMessage(name, email, message)
	if err != nil {
		return "", err
	}
	return whatsapp.Link(a.Config.Shop.ContactPhone, text), nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
