package store

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Dir stores one file per key inside a directory. Any process sharing the
// directory sees the same data; fsnotify reports their writes.
type Dir struct {
	dir string
	log *zap.Logger

	mu      sync.Mutex
	known   map[string]string // last value seen or written per key
	subs    map[int]func(Event)
	nextID  int
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// OpenDir creates dir if needed.
func OpenDir(dir string, logger *zap.Logger) (*Dir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dir{
		dir:   dir,
		log:   logger,
		known: make(map[string]string),
		subs:  make(map[int]func(Event)),
	}, nil
}

func (d *Dir) path(key string) string {
	return filepath.Join(d.dir, url.PathEscape(key))
}

func (d *Dir) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(d.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes to a hidden temp file and renames it over the key so readers
// never observe a partial value.
func (d *Dir) Set(key, value string) error {
	tmp, err := os.CreateTemp(d.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := os.Rename(tmp.Name(), d.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	d.known[key] = value
	return nil
}

func (d *Dir) Remove(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := os.Remove(d.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	delete(d.known, key)
	return nil
}

// Subscribe starts watching the directory on first use.
func (d *Dir) Subscribe(fn func(Event)) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	if d.watcher == nil {
		if err := d.startLocked(); err != nil {
			d.log.Warn("store dir watch failed", zap.String("dir", d.dir), zap.Error(err))
		}
	}
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

func (d *Dir) startLocked() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(d.dir); err != nil {
		watcher.Close()
		return err
	}

	// Prime known values so pre-existing files do not look like fresh changes.
	entries, _ := os.ReadDir(d.dir)
	for _, e := range entries {
		if key, ok := keyFromName(e.Name()); ok {
			if _, seen := d.known[key]; !seen {
				if data, err := os.ReadFile(filepath.Join(d.dir, e.Name())); err == nil {
					d.known[key] = string(data)
				}
			}
		}
	}

	d.watcher = watcher
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	go d.run(watcher, d.stopCh, d.doneCh)
	d.log.Debug("store dir: watching", zap.String("dir", d.dir))
	return nil
}

// Close stops the watcher, if any.
func (d *Dir) Close() error {
	d.mu.Lock()
	watcher := d.watcher
	d.watcher = nil
	d.mu.Unlock()

	if watcher == nil {
		return nil
	}
	close(d.stopCh)
	<-d.doneCh
	return watcher.Close()
}

func (d *Dir) run(watcher *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	for {
		select {
		case <-stopCh:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			d.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			d.log.Warn("store dir watcher error", zap.Error(err))
		}
	}
}

func (d *Dir) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	key, ok := keyFromName(filepath.Base(event.Name))
	if !ok {
		return
	}

	d.mu.Lock()
	data, err := os.ReadFile(d.path(key))
	old, had := d.known[key]
	var changed bool
	switch {
	case err == nil:
		changed = !had || old != string(data)
		d.known[key] = string(data)
	case errors.Is(err, fs.ErrNotExist):
		changed = had
		delete(d.known, key)
	default:
		d.log.Warn("store dir: failed to read changed key", zap.String("key", key), zap.Error(err))
	}
	subs := make([]func(Event), 0, len(d.subs))
	for _, fn := range d.subs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(Event{Key: key, Source: event.Name})
	}
}

// keyFromName maps a file name back to its key, skipping temp files.
func keyFromName(name string) (string, bool) {
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	key, err := url.PathUnescape(name)
	if err != nil {
		return "", false
	}
	return key, true
}
