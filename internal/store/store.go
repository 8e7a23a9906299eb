// Package store is the browser-local key/value storage the cart persists to,
// plus the change notifications other "tabs" (processes or in-process views)
// use to re-read it.
package store

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrQuotaExceeded is returned by a Set that would grow the store past its limit.
var ErrQuotaExceeded = errors.New("store quota exceeded")

// Store is a string key/value store with single-value atomic writes.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Event announces that key was changed by someone other than the subscriber.
type Event struct {
	Key    string
	Source string
}

// Notifier delivers change events written elsewhere. The returned function unsubscribes.
type Notifier interface {
	Subscribe(fn func(Event)) (cancel func())
}

// Backend is a Store that can also notify about foreign writes.
type Backend interface {
	Store
	Notifier
	Close() error
}

// Options configures Open.
type Options struct {
	Driver       string
	Path         string
	PollInterval time.Duration
	Logger       *zap.Logger
}

// Open builds the backend named by opts.Driver.
func Open(opts Options) (Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	switch opts.Driver {
	case "sqlite":
		return OpenSQLite(opts.Path, opts.PollInterval, logger)
	case "file":
		return OpenDir(opts.Path, logger)
	case "memory", "":
		return NewShared(0).Tab(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
