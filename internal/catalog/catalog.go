// Package catalog holds the working catalog and derives filtered views from it.
package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"dmparfum/internal/feed"
	"dmparfum/internal/models"

	"go.uber.org/zap"
)

// Snapshot is one complete load of the catalog. Snapshots are replaced
// wholesale and never modified.
type Snapshot struct {
	Products []models.Product
	LoadedAt time.Time
	// Degraded is set when the feed failed and Products is the backup list.
	Degraded bool
	Err      error
}

// Catalog owns the current snapshot. Readers always see a complete snapshot,
// either the previous one or the new one.
type Catalog struct {
	source  feed.Source
	backup  []models.Product
	log     *zap.Logger
	now     func() time.Time
	current atomic.Pointer[Snapshot]
}

// New creates a Catalog reading from source. backup is served when a load fails.
func New(source feed.Source, backup []models.Product, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{
		source: source,
		backup: backup,
		log:    logger,
		now:    time.Now,
	}
	c.current.Store(&Snapshot{})
	return c
}

// Current returns the latest snapshot; before the first load it is empty.
func (c *Catalog) Current() *Snapshot {
	return c.current.Load()
}

// Products is shorthand for Current().Products.
func (c *Catalog) Products() []models.Product {
	return c.Current().Products
}

// Load fetches the feed and swaps in the result. On failure the backup list
// is swapped in instead, the snapshot is marked degraded, and the feed error
// is returned so the caller can surface it and offer Refresh.
func (c *Catalog) Load(ctx context.Context) (*Snapshot, error) {
	products, err := c.source.FetchProducts(ctx)
	if err == nil && len(products) == 0 {
		err = feed.ErrMalformed
	}

	snap := &Snapshot{LoadedAt: c.now()}
	if err != nil {
		snap.Products = append([]models.Product(nil), c.backup...)
		snap.Degraded = true
		snap.Err = err
		c.log.Warn("catalog load failed, using backup list",
			zap.Error(err), zap.Int("backup_products", len(snap.Products)))
	} else {
		snap.Products = products
		c.log.Info("catalog loaded", zap.Int("products", len(products)))
	}

	c.current.Store(snap)
	return snap, err
}

// Refresh is the manual re-fetch trigger. Each call is an independent request.
func (c *Catalog) Refresh(ctx context.Context) (*Snapshot, error) {
	return c.Load(ctx)
}

// Product finds a product of the current snapshot by id.
func (c *Catalog) Product(id int) (models.Product, bool) {
	for _, p := range c.Products() {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
