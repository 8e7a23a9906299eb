package store

import (
	"sync"

	"github.com/google/uuid"
)

// Shared is an in-memory store shared by several tabs. Writes through one Tab
// notify every other Tab, never the writer itself.
type Shared struct {
	mu     sync.Mutex
	data   map[string]string
	quota  int
	subs   map[int]subscription
	nextID int
}

type subscription struct {
	tab string
	fn  func(Event)
}

// NewShared creates an empty store. quota caps the summed length of keys and
// values in bytes; zero means unlimited.
func NewShared(quota int) *Shared {
	return &Shared{
		data:  make(map[string]string),
		quota: quota,
		subs:  make(map[int]subscription),
	}
}

// Tab returns a new view onto s with its own identity.
func (s *Shared) Tab() *Tab {
	return &Tab{shared: s, id: uuid.NewString()}
}

func (s *Shared) sizeWith(key, value string) int {
	size := 0
	for k, v := range s.data {
		if k == key {
			continue
		}
		size += len(k) + len(v)
	}
	return size + len(key) + len(value)
}

func (s *Shared) publish(ev Event) {
	s.mu.Lock()
	var targets []func(Event)
	for _, sub := range s.subs {
		if sub.tab != ev.Source {
			targets = append(targets, sub.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range targets {
		fn(ev)
	}
}

// Tab is one participant in a Shared store.
type Tab struct {
	shared *Shared
	id     string
}

// ID identifies the tab in emitted events.
func (t *Tab) ID() string { return t.id }

func (t *Tab) Get(key string) (string, bool, error) {
	t.shared.mu.Lock()
	defer t.shared.mu.Unlock()
	v, ok := t.shared.data[key]
	return v, ok, nil
}

func (t *Tab) Set(key, value string) error {
	s := t.shared
	s.mu.Lock()
	if s.quota > 0 && s.sizeWith(key, value) > s.quota {
		s.mu.Unlock()
		return ErrQuotaExceeded
	}
	old, existed := s.data[key]
	s.data[key] = value
	s.mu.Unlock()

	if !existed || old != value {
		s.publish(Event{Key: key, Source: t.id})
	}
	return nil
}

func (t *Tab) Remove(key string) error {
	s := t.shared
	s.mu.Lock()
	_, existed := s.data[key]
	delete(s.data, key)
	s.mu.Unlock()

	if existed {
		s.publish(Event{Key: key, Source: t.id})
	}
	return nil
}

// Subscribe registers fn for writes made by other tabs. fn runs synchronously
// on the writer's goroutine.
func (t *Tab) Subscribe(fn func(Event)) func() {
	s := t.shared
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = subscription{tab: t.id, fn: fn}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close is a no-op; it lets a Tab satisfy Backend.
func (t *Tab) Close() error { return nil }
