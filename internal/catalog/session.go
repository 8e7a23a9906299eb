package catalog

import (
	"fmt"
	"sync"
	"time"

	"dmparfum/internal/models"
	"dmparfum/utils"
)

// DefaultSearchDelay is the quiet period after the last keystroke before the
// view is recomputed.
const DefaultSearchDelay = 200 * time.Millisecond

// RenderFunc receives every recomputed view. Calls never overlap, so it
// need not be safe for concurrent use.
type RenderFunc func(view []models.Product, status ViewStatus)

// Session is the filter state of one catalog page. Every control change
// recomputes the view from the catalog's current snapshot and renders it.
type Session struct {
	mu      sync.Mutex
	catalog *Catalog
	state   models.FilterState
	search  *utils.Debouncer

	// renderMu serializes render calls from controls and the search timer.
	renderMu sync.Mutex
	render   RenderFunc
}

// NewSession starts from the default (identity) filter.
func NewSession(c *Catalog, render RenderFunc, searchDelay time.Duration) *Session {
	if searchDelay <= 0 {
		searchDelay = DefaultSearchDelay
	}
	if render == nil {
		render = func([]models.Product, ViewStatus) {}
	}
	return &Session{
		catalog: c,
		state:   models.DefaultFilterState(),
		render:  render,
		search:  utils.NewDebouncer(searchDelay),
	}
}

// State returns a copy of the current filter state.
func (s *Session) State() models.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// View computes the view for the current state without rendering.
func (s *Session) View() ([]models.Product, ViewStatus) {
	all := s.catalog.Products()
	view := ComputeView(all, s.State())
	return view, Status(all, view)
}

// Refresh recomputes and renders immediately.
func (s *Session) Refresh() {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	view, status := s.View()
	s.render(view, status)
}

func (s *Session) update(fn func(*models.FilterState)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
	s.Refresh()
}

func (s *Session) SetCategory(category string) {
	s.update(func(f *models.FilterState) { f.Category = category })
}

// ToggleBrand adds brand to the selection, or removes it if already selected.
func (s *Session) ToggleBrand(brand string) {
	s.update(func(f *models.FilterState) {
		for i, b := range f.SelectedBrands {
			if b == brand {
				f.SelectedBrands = append(f.SelectedBrands[:i:i], f.SelectedBrands[i+1:]...)
				return
			}
		}
		f.SelectedBrands = append(f.SelectedBrands, brand)
	})
}

func (s *Session) SetStockOnly(on bool) {
	s.update(func(f *models.FilterState) { f.StockOnly = on })
}

// SetPriceMin takes the raw control text; see ParseBound.
func (s *Session) SetPriceMin(input string) {
	s.update(func(f *models.FilterState) { f.PriceMin = ParseBound(input) })
}

func (s *Session) SetPriceMax(input string) {
	s.update(func(f *models.FilterState) { f.PriceMax = ParseBound(input) })
}

func (s *Session) SetSort(key models.SortKey) error {
	if !key.Valid() {
		return fmt.Errorf("unknown sort key %q", key)
	}
	s.update(func(f *models.FilterState) { f.SortKey = key })
	return nil
}

// Search records the query and recomputes once typing pauses.
func (s *Session) Search(text string) {
	s.mu.Lock()
	s.state.SearchText = text
	s.mu.Unlock()
	s.search.Trigger(s.Refresh)
}

// Flush renders a pending search right away instead of waiting for the delay.
func (s *Session) Flush() {
	if !s.search.Pending() {
		return
	}
	s.search.Cancel()
	s.Refresh()
}

// Reset drops any pending search and returns to the default filter.
func (s *Session) Reset() {
	s.search.Cancel()
	s.update(func(f *models.FilterState) { *f = models.DefaultFilterState() })
}
