package feed

import (
	"context"
	"fmt"
	"time"

	"dmparfum/internal/models"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

// BrowserSource loads the export in a headless Chrome page. It is the
// fallback for networks where the sheet endpoint refuses plain HTTP clients.
type BrowserSource struct {
	URL      string
	Format   string
	Defaults RowDefaults
	Headless bool
	Timeout  time.Duration

	log *zap.Logger
	// launch starts a browser and returns its control URL and a release
	// func that stops it. nil means launchChrome.
	launch func() (controlURL string, release func(), err error)
}

// NewBrowserSource creates a browser-backed source.
func NewBrowserSource(opts SheetOptions, headless bool) *BrowserSource {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserSource{
		URL:      opts.URL,
		Format:   opts.Format,
		Defaults: opts.Defaults,
		Headless: headless,
		Timeout:  timeout,
		log:      logger,
	}
}

// FetchProducts launches a browser for the duration of one fetch.
func (b *BrowserSource) FetchProducts(ctx context.Context) ([]models.Product, error) {
	b.log.Debug("launching browser for feed", zap.String("url", b.URL))

	launch := b.launch
	if launch == nil {
		launch = b.launchChrome
	}
	u, release, err := launch()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to launch browser: %v", ErrUnavailable, err)
	}
	// Runs after browser.Close, and also when Connect fails.
	defer release()

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: failed to connect browser: %v", ErrUnavailable, err)
	}
	defer browser.Close()

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open page: %v", ErrUnavailable, err)
	}
	defer page.Close()

	if err := page.Timeout(b.Timeout).Navigate(b.URL); err != nil {
		return nil, fmt.Errorf("%w: failed to load %s: %v", ErrUnavailable, b.URL, err)
	}
	if err := page.Timeout(b.Timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: page did not finish loading: %v", ErrUnavailable, err)
	}

	var payload string
	if b.Format == FormatHTML {
		payload, err = page.HTML()
	} else {
		// Chrome shows text/csv responses as plain text inside the body.
		var body *rod.Element
		body, err = page.Element("body")
		if err == nil {
			payload, err = body.Text()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: could not read page content: %v", ErrUnavailable, err)
	}

	products, err := parsePayload(b.Format, payload, b.Defaults)
	if err != nil {
		return nil, err
	}
	b.log.Info("feed parsed via browser", zap.Int("products", len(products)))
	return products, nil
}

func (b *BrowserSource) launchChrome() (string, func(), error) {
	l := launcher.New().Headless(b.Headless)
	u, err := l.Launch()
	if err != nil {
		return "", nil, err
	}
	return u, func() {
		l.Kill()
		l.Cleanup()
	}, nil
}
