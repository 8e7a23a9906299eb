package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrowserSourceReleasesBrowserWhenConnectFails(t *testing.T) {
	// A control URL nobody listens on.
	srv := httptest.NewServer(http.NotFoundHandler())
	deadURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	released := 0
	src := NewBrowserSource(SheetOptions{URL: "http://example.invalid/feed"}, true)
	src.launch = func() (string, func(), error) {
		return deadURL, func() { released++ }, nil
	}

	_, err := src.FetchProducts(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, released)
}

func TestBrowserSourceLaunchFailure(t *testing.T) {
	src := NewBrowserSource(SheetOptions{URL: "http://example.invalid/feed"}, true)
	src.launch = func() (string, func(), error) {
		return "", nil, errors.New("no chrome")
	}

	_, err := src.FetchProducts(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "no chrome")
}
