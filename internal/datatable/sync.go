package datatable

import "time"

// syncBridge decouples rapid local changes from host notifications.
// Pagination and sorting pass straight through; search and filters each
// go through their own trailing debouncer, so there is no ordering between
// the two.
type syncBridge struct {
	cb      Callbacks
	search  *Debouncer[string]
	filters *Debouncer[map[string]FilterValue]
}

func newSyncBridge(cb Callbacks, wait time.Duration) *syncBridge {
	b := &syncBridge{cb: cb}
	b.search = NewDebouncer(wait, func(v string) {
		if b.cb.OnSearchChange != nil {
			b.cb.OnSearchChange(v)
		}
	})
	b.filters = NewDebouncer(wait, func(v map[string]FilterValue) {
		if b.cb.OnFiltersChange != nil {
			b.cb.OnFiltersChange(v)
		}
	})
	return b
}

func (b *syncBridge) pagination(p PaginationState) {
	if b.cb.OnPaginationChange != nil {
		b.cb.OnPaginationChange(p)
	}
}

func (b *syncBridge) sorting(s []Sort) {
	if b.cb.OnSortingChange == nil {
		return
	}
	out := make([]Sort, len(s))
	copy(out, s)
	b.cb.OnSortingChange(out)
}

func (b *syncBridge) searchChanged(v string) {
	if b.cb.OnSearchChange != nil {
		b.search.Call(v)
	}
}

func (b *syncBridge) filtersChanged(filters []ColumnFilter) {
	if b.cb.OnFiltersChange == nil {
		return
	}
	m := make(map[string]FilterValue, len(filters))
	for _, f := range filters {
		m[f.ID] = f.Value
	}
	b.filters.Call(m)
}

func (b *syncBridge) pending() bool {
	return b.search.Pending() || b.filters.Pending()
}

func (b *syncBridge) flush() {
	b.search.Flush()
	b.filters.Flush()
}

func (b *syncBridge) close() {
	b.search.Cancel()
	b.filters.Cancel()
}
