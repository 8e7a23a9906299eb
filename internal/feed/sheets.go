package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"dmparfum/internal/models"

	"go.uber.org/zap"
)

// SheetOptions configures a SheetSource.
type SheetOptions struct {
	URL       string
	Format    string
	Defaults  RowDefaults
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
}

// SheetSource fetches the export with a plain HTTP GET.
type SheetSource struct {
	URL        string
	Format     string
	Defaults   RowDefaults
	UserAgent  string
	HttpClient *http.Client

	log *zap.Logger
}

// NewSheetSource creates a source for the given export URL.
func NewSheetSource(opts SheetOptions) *SheetSource {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetSource{
		URL:        opts.URL,
		Format:     opts.Format,
		Defaults:   opts.Defaults,
		UserAgent:  opts.UserAgent,
		HttpClient: &http.Client{Timeout: timeout},
		log:        logger,
	}
}

// FetchProducts downloads and parses the sheet.
func (s *SheetSource) FetchProducts(ctx context.Context) ([]models.Product, error) {
	body, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	products, err := parsePayload(s.Format, body, s.Defaults)
	if err != nil {
		return nil, err
	}
	s.log.Info("feed parsed", zap.String("url", s.URL), zap.Int("products", len(products)))
	return products, nil
}

func (s *SheetSource) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := s.HttpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: received non-2xx status code: %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: could not read response body: %v", ErrUnavailable, err)
	}
	return string(body), nil
}
