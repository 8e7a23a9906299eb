// Package cart is the shopping cart persisted to the local store.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"dmparfum/internal/models"
	"dmparfum/internal/store"

	"go.uber.org/zap"
)

// Storage keys shared by every tab.
const (
	StorageKey      = "dm_parfum_cart"
	LastActivityKey = "cart_last_activity"
)

// DefaultMaxIdle is how long a cart survives without the shop being opened.
const DefaultMaxIdle = 7 * 24 * time.Hour

var (
	// ErrStoreWrite wraps a failed persist; the cart is left as last stored.
	ErrStoreWrite      = errors.New("cart store write failed")
	ErrInvalidIndex    = errors.New("cart index out of range")
	ErrInvalidQuantity = errors.New("cart quantity must be positive")
)

// Option customizes a Cart.
type Option func(*Cart)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cart) { c.now = now }
}

// WithMaxIdle overrides DefaultMaxIdle.
func WithMaxIdle(d time.Duration) Option {
	return func(c *Cart) { c.maxIdle = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cart) { c.log = logger }
}

// Cart keeps an in-memory copy of the stored lines. Every mutation re-reads
// the store first, so edits made by other tabs are not overwritten with stale
// data, then writes the full collection back.
type Cart struct {
	mu      sync.Mutex
	store   store.Store
	log     *zap.Logger
	now     func() time.Time
	maxIdle time.Duration
	lines   []models.CartLine
}

// New loads the cart from st and applies the inactivity expiry: a missing or
// too old last-activity stamp empties the cart. The stamp is then refreshed.
func New(st store.Store, opts ...Option) (*Cart, error) {
	c := &Cart{
		store:   st,
		log:     zap.NewNop(),
		now:     time.Now,
		maxIdle: DefaultMaxIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cart) init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines, err := c.read()
	if err != nil {
		return err
	}
	c.lines = lines

	now := c.now()
	if c.expired(now) {
		if len(lines) > 0 {
			c.log.Info("cart expired after inactivity", zap.Int("lines", len(lines)))
		}
		if err := c.write(nil); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreWrite, err)
		}
		c.lines = nil
	} else if _, ok, _ := c.store.Get(StorageKey); !ok {
		if err := c.write(nil); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreWrite, err)
		}
	}

	stamp := strconv.FormatInt(now.UnixMilli(), 10)
	if err := c.store.Set(LastActivityKey, stamp); err != nil {
		c.log.Warn("could not refresh cart activity stamp", zap.Error(err))
	}
	return nil
}

func (c *Cart) expired(now time.Time) bool {
	raw, ok, err := c.store.Get(LastActivityKey)
	if err != nil || !ok {
		return true
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true
	}
	return now.Sub(time.UnixMilli(ms)) > c.maxIdle
}

// read loads the stored collection. Unreadable JSON counts as an empty cart.
func (c *Cart) read() ([]models.CartLine, error) {
	raw, ok, err := c.store.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var lines []models.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		c.log.Warn("stored cart is corrupt, starting empty", zap.Error(err))
		return nil, nil
	}
	return lines, nil
}

func (c *Cart) write(lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return c.store.Set(StorageKey, string(data))
}

// mutate applies fn to a fresh copy of the stored lines and persists the
// result. Nothing changes when fn or the write fails.
func (c *Cart) mutate(fn func([]models.CartLine) ([]models.CartLine, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.read()
	if err != nil {
		return err
	}
	c.lines = current

	next, err := fn(append([]models.CartLine(nil), current...))
	if err != nil {
		return err
	}
	if err := c.write(next); err != nil {
		c.log.Error("cart write failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	c.lines = next
	return nil
}

// AddItem adds one unit of p, creating the line on first add.
func (c *Cart) AddItem(p models.Product) error {
	err := c.mutate(func(lines []models.CartLine) ([]models.CartLine, error) {
		for i := range lines {
			if lines[i].ID == p.ID {
				lines[i].Quantity++
				return lines, nil
			}
		}
		return append(lines, models.CartLine{
			ID:       p.ID,
			Name:     p.Name,
			Brand:    p.Brand,
			Price:    p.Price,
			Image:    p.Image,
			Category: p.Category,
			Quantity: 1,
			AddedAt:  c.now().UTC(),
		}), nil
	})
	if err == nil {
		c.log.Debug("product added to cart", zap.Int("id", p.ID))
	}
	return err
}

// RemoveItem deletes the line at index and returns it.
func (c *Cart) RemoveItem(index int) (models.CartLine, error) {
	var removed models.CartLine
	err := c.mutate(func(lines []models.CartLine) ([]models.CartLine, error) {
		if index < 0 || index >= len(lines) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
		}
		removed = lines[index]
		return append(lines[:index], lines[index+1:]...), nil
	})
	return removed, err
}

// SetQuantity replaces the quantity of the line at index.
func (c *Cart) SetQuantity(index, quantity int) error {
	return c.mutate(func(lines []models.CartLine) ([]models.CartLine, error) {
		if index < 0 || index >= len(lines) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
		}
		if quantity <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
		}
		lines[index].Quantity = quantity
		return lines, nil
	})
}

// Clear empties the cart.
func (c *Cart) Clear() error {
	return c.mutate(func([]models.CartLine) ([]models.CartLine, error) {
		return nil, nil
	})
}

// Reload replaces the in-memory copy with what is stored, e.g. after
// another tab changed it.
func (c *Cart) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines, err := c.read()
	if err != nil {
		return err
	}
	c.lines = lines
	return nil
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartLine(nil), c.lines...)
}

// Count is the total number of units.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total is the sum of price times quantity.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return total(c.lines)
}

func total(lines []models.CartLine) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Subtotal()
	}
	return sum
}

func (c *Cart) Contains(id int) bool {
	return c.QuantityOf(id) > 0
}

func (c *Cart) QuantityOf(id int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lines {
		if l.ID == id {
			return l.Quantity
		}
	}
	return 0
}

// Watch reloads the cart whenever another tab rewrites it and reports the
// new unit count. The returned function stops watching.
func (c *Cart) Watch(n store.Notifier, onChange func(count int)) func() {
	return n.Subscribe(func(ev store.Event) {
		if ev.Key != StorageKey {
			return
		}
		if err := c.Reload(); err != nil {
			c.log.Warn("cart reload after remote change failed", zap.Error(err))
			return
		}
		if onChange != nil {
			onChange(c.Count())
		}
	})
}
