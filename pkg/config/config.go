package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"dmparfum/internal/feed"

	"gopkg.in/yaml.v3"
)

// FeedConfig locates the product spreadsheet and says how to fetch it.
type FeedConfig struct {
	SheetID    string        `yaml:"sheet_id"`
	URL        string        `yaml:"url"` // replaces the export URL built from SheetID and SheetName
	SheetName  string        `yaml:"sheet_name"`
	Format     string        `yaml:"format"`
	Fetcher    string        `yaml:"fetcher"`
	Timeout    time.Duration `yaml:"timeout"`
	Headless   bool          `yaml:"headless"`
	UserAgent  string        `yaml:"user_agent"`
	BackupFile string        `yaml:"backup_file"`
}

// StoreConfig selects the local key-value backend.
type StoreConfig struct {
	Driver       string        `yaml:"driver"`
	Path         string        `yaml:"path"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// ShopConfig holds the storefront identity and contact routing.
type ShopConfig struct {
	Name             string `yaml:"name"`
	OrderPhone       string `yaml:"order_phone"`
	ContactPhone     string `yaml:"contact_phone"`
	DefaultWhatsApp  string `yaml:"default_whatsapp"`
	DefaultInstagram string `yaml:"default_instagram"`
	PlaceholderImage string `yaml:"placeholder_image"`
}

// CartConfig holds cart persistence settings.
type CartConfig struct {
	MaxIdle time.Duration `yaml:"max_idle"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Config is the complete structure for the config.yml file.
type Config struct {
	Feed  FeedConfig  `yaml:"feed"`
	Store StoreConfig `yaml:"store"`
	Shop  ShopConfig  `yaml:"shop"`
	Cart  CartConfig  `yaml:"cart"`
	Log   LogConfig   `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			SheetID:   "148b-GN5OsSWdBTv7_r-M8jBVqHdGE2Wxu98IvB74L4c",
			SheetName: "web",
			Format:    "csv",
			Fetcher:   "http",
			Timeout:   15 * time.Second,
			Headless:  true,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		},
		Store: StoreConfig{
			Driver:       "sqlite",
			Path:         "dmparfum.db",
			PollInterval: 500 * time.Millisecond,
		},
		Shop: ShopConfig{
			Name:             "Dm Parfum",
			OrderPhone:       "541162634332",
			ContactPhone:     "541162634332",
			DefaultWhatsApp:  "+573001234567",
			DefaultInstagram: "https://www.instagram.com/dm.parfum_/",
			PlaceholderImage: "https://via.placeholder.com/300x400/8B4513/FFFFFF?text=Sin+Imagen",
		},
		Cart: CartConfig{
			MaxIdle: 7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig overlays the YAML file at path on Default. A missing file is
// not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown enum values and unusable durations.
func (c *Config) Validate() error {
	if !oneOf(c.Feed.Format, "csv", "html") {
		return fmt.Errorf("feed.format: unknown value %q", c.Feed.Format)
	}
	if !oneOf(c.Feed.Fetcher, "http", "browser") {
		return fmt.Errorf("feed.fetcher: unknown value %q", c.Feed.Fetcher)
	}
	if c.Feed.SheetID == "" && c.Feed.URL == "" {
		return errors.New("feed.sheet_id or feed.url is required")
	}
	if !oneOf(c.Store.Driver, "sqlite", "file", "memory") {
		return fmt.Errorf("store.driver: unknown value %q", c.Store.Driver)
	}
	if c.Store.Driver != "memory" && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for driver %q", c.Store.Driver)
	}
	if !oneOf(c.Log.Level, "debug", "info", "warn", "error") {
		return fmt.Errorf("log.level: unknown value %q", c.Log.Level)
	}
	if c.Cart.MaxIdle <= 0 {
		return errors.New("cart.max_idle must be positive")
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// FeedURL is the export URL the feed is fetched from.
func (c *Config) FeedURL() string {
	if c.Feed.URL != "" {
		return c.Feed.URL
	}
	return feed.SheetURL(c.Feed.SheetID, c.Feed.SheetName, c.Feed.Format)
}
