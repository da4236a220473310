package datatable

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Options configures a Table.
type Options[T any] struct {
	Data       []T
	Columns    []Column[T]
	Pagination *Pagination

	// Modes decides, per concern, whether rows are computed locally or the
	// host owns the computation and only receives notifications.
	Modes     Modes
	Callbacks Callbacks
	Features  Features
	Export    *ExportOptions

	// GetRowID derives a stable row ID. Defaults to the row index.
	GetRowID func(row T, index int) string

	// Debounce is the search and filter notification window.
	Debounce time.Duration
}

// Table is the state controller of a data table. It owns the local view
// state, computes the row model for managed concerns and notifies the host
// of changes. A Table is safe for concurrent use; callbacks are never
// invoked while its lock is held.
type Table[T any] struct {
	mu       sync.Mutex
	data     []T
	rows     []Row[T]
	cols     []*Column[T]
	server   *Pagination
	modes    Modes
	features Features
	export   *ExportOptions
	getID    func(T, int) string
	state    State
	bridge   *syncBridge
}

// New builds a Table from opts. The initial page cursor is derived from
// the host descriptor: index current_page-1, size per_page.
func New[T any](opts Options[T]) *Table[T] {
	cols := make([]*Column[T], len(opts.Columns))
	for i := range opts.Columns {
		c := opts.Columns[i]
		cols[i] = &c
	}

	t := &Table[T]{
		data:     opts.Data,
		cols:     cols,
		server:   opts.Pagination,
		modes:    opts.Modes,
		features: opts.Features,
		export:   opts.Export,
		getID:    opts.GetRowID,
		state: State{
			RowSelection:     make(map[string]bool),
			ColumnVisibility: make(map[string]bool),
			Pagination:       InitialPagination(opts.Pagination),
		},
		bridge: newSyncBridge(opts.Callbacks, opts.Debounce),
	}
	t.rows = coreRows(opts.Data, opts.GetRowID)
	return t
}

// InitialPagination derives the zero-based cursor from a host descriptor.
func InitialPagination(p *Pagination) PaginationState {
	state := PaginationState{PageIndex: 0, PageSize: DefaultPageSize}
	if p == nil {
		return state
	}
	if p.CurrentPage > 0 {
		state.PageIndex = p.CurrentPage - 1
	}
	if p.PerPage > 0 {
		state.PageSize = p.PerPage
	}
	return state
}

// Close cancels pending debounced notifications.
func (t *Table[T]) Close() {
	t.bridge.close()
}

// FlushSync delivers pending debounced notifications immediately.
func (t *Table[T]) FlushSync() {
	t.bridge.flush()
}

// SyncPending reports whether a debounced notification is outstanding.
func (t *Table[T]) SyncPending() bool {
	return t.bridge.pending()
}

// Modes returns the per-concern computation switch.
func (t *Table[T]) Modes() Modes {
	return t.modes
}

// State returns a copy of the local view state.
func (t *Table[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.clone()
}

// RestoreState replaces the local view state without notifying the host.
func (t *Table[T]) RestoreState(s State) {
	s = s.clone()
	normalizeFilters(s.ColumnFilters)
	if s.Pagination.PageSize <= 0 {
		s.Pagination.PageSize = DefaultPageSize
	}
	if s.Pagination.PageIndex < 0 {
		s.Pagination.PageIndex = 0
	}

	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// SetData replaces the rows and host descriptor, typically after the host
// has answered a notification. With delegated pagination the cursor follows
// the descriptor. No notification is sent.
func (t *Table[T]) SetData(data []T, p *Pagination) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data = data
	t.rows = coreRows(data, t.getID)
	t.server = p
	if p != nil && t.modes.Pagination == Delegated {
		t.state.Pagination = InitialPagination(p)
	}
}

// ---------------------------------------------------------------------------
// Pagination
// ---------------------------------------------------------------------------

// PageCount returns the number of pages, or UnknownPageCount when
// pagination is delegated and the host gave no last page.
func (t *Table[T]) PageCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pageCountLocked()
}

func (t *Table[T]) pageCountLocked() int {
	if t.modes.Pagination == Delegated {
		if t.server != nil && t.server.LastPage > 0 {
			return t.server.LastPage
		}
		return UnknownPageCount
	}
	n := len(t.prePaginationRowsLocked())
	size := t.state.Pagination.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return (n + size - 1) / size
}

// CanPreviousPage reports whether a previous page exists.
func (t *Table[T]) CanPreviousPage() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Pagination.PageIndex > 0
}

// CanNextPage reports whether a next page exists. An unknown page count
// always allows moving forward.
func (t *Table[T]) CanNextPage() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return canNext(t.state.Pagination.PageIndex, t.pageCountLocked())
}

func canNext(index, count int) bool {
	switch count {
	case UnknownPageCount:
		return true
	case 0:
		return false
	}
	return index < count-1
}

// SetPagination replaces the page cursor.
func (t *Table[T]) SetPagination(p PaginationState) {
	t.mu.Lock()
	changed := t.setPaginationLocked(p)
	cur := t.state.Pagination
	t.mu.Unlock()

	if changed {
		t.bridge.pagination(cur)
	}
}

// SetPageIndex moves to a zero-based page, clamped to the known page range.
func (t *Table[T]) SetPageIndex(index int) {
	t.mu.Lock()
	p := t.state.Pagination
	p.PageIndex = index
	changed := t.setPaginationLocked(p)
	cur := t.state.Pagination
	t.mu.Unlock()

	if changed {
		t.bridge.pagination(cur)
	}
}

// SetPageSize changes the page size, keeping the first visible row on screen.
func (t *Table[T]) SetPageSize(size int) {
	if size <= 0 {
		return
	}

	t.mu.Lock()
	p := t.state.Pagination
	top := p.PageIndex * p.PageSize
	p.PageSize = size
	p.PageIndex = top / size
	changed := t.setPaginationLocked(p)
	cur := t.state.Pagination
	t.mu.Unlock()

	if changed {
		t.bridge.pagination(cur)
	}
}

// FirstPage moves to the first page.
func (t *Table[T]) FirstPage() { t.SetPageIndex(0) }

// PreviousPage moves back one page.
func (t *Table[T]) PreviousPage() {
	t.mu.Lock()
	idx := t.state.Pagination.PageIndex
	t.mu.Unlock()
	t.SetPageIndex(idx - 1)
}

// NextPage moves forward one page.
func (t *Table[T]) NextPage() {
	t.mu.Lock()
	idx := t.state.Pagination.PageIndex
	t.mu.Unlock()
	t.SetPageIndex(idx + 1)
}

// LastPage moves to the last known page. It is a no-op when the page count
// is unknown.
func (t *Table[T]) LastPage() {
	t.mu.Lock()
	count := t.pageCountLocked()
	t.mu.Unlock()
	if count > 0 {
		t.SetPageIndex(count - 1)
	}
}

func (t *Table[T]) setPaginationLocked(p PaginationState) bool {
	if p.PageSize <= 0 {
		p.PageSize = t.state.Pagination.PageSize
	}
	if count := t.pageCountWithSizeLocked(p.PageSize); count > 0 && p.PageIndex > count-1 {
		p.PageIndex = count - 1
	}
	if p.PageIndex < 0 {
		p.PageIndex = 0
	}
	if p == t.state.Pagination {
		return false
	}
	t.state.Pagination = p
	return true
}

// pageCountWithSizeLocked is the page count the table would have at size.
// A delegated descriptor only knows its own page size, so for any other
// size the count is derived from the host's total.
func (t *Table[T]) pageCountWithSizeLocked(size int) int {
	if t.modes.Pagination == Delegated {
		if s := t.server; s != nil && s.LastPage > 0 && s.PerPage > 0 && size != s.PerPage {
			return (s.Total + size - 1) / size
		}
		return t.pageCountLocked()
	}
	saved := t.state.Pagination.PageSize
	t.state.Pagination.PageSize = size
	count := t.pageCountLocked()
	t.state.Pagination.PageSize = saved
	return count
}

// resetPageIndexLocked rewinds to the first page after a filter or sort
// change when pagination is managed locally.
func (t *Table[T]) resetPageIndexLocked() bool {
	if t.modes.Pagination != Managed || t.state.Pagination.PageIndex == 0 {
		return false
	}
	t.state.Pagination.PageIndex = 0
	return true
}

// ---------------------------------------------------------------------------
// Sorting
// ---------------------------------------------------------------------------

// SetSorting replaces the sort list. Entries for columns that cannot be
// sorted are dropped.
func (t *Table[T]) SetSorting(sorting []Sort) {
	t.mu.Lock()
	valid := make([]Sort, 0, len(sorting))
	for _, s := range sorting {
		if c := findColumn(t.cols, s.ID); c != nil && canSort(t.features, c) {
			valid = append(valid, s)
		}
	}
	if slices.Equal(valid, t.state.Sorting) {
		t.mu.Unlock()
		return
	}
	t.state.Sorting = valid
	reset := t.resetPageIndexLocked()
	cur := t.state.Pagination
	t.mu.Unlock()

	if reset {
		t.bridge.pagination(cur)
	}
	t.bridge.sorting(valid)
}

// ToggleSorting cycles a column through ascending, descending and unsorted.
// Toggling replaces any sort on another column.
func (t *Table[T]) ToggleSorting(columnID string) {
	t.mu.Lock()
	var next []Sort
	switch sortDirection(t.state.Sorting, columnID) {
	case "":
		next = []Sort{{ID: columnID}}
	case "asc":
		next = []Sort{{ID: columnID, Desc: true}}
	default:
		next = []Sort{}
	}
	t.mu.Unlock()

	t.SetSorting(next)
}

func sortDirection(sorting []Sort, columnID string) string {
	if len(sorting) == 0 || sorting[0].ID != columnID {
		return ""
	}
	if sorting[0].Desc {
		return "desc"
	}
	return "asc"
}

// ---------------------------------------------------------------------------
// Search and filters
// ---------------------------------------------------------------------------

// SetGlobalFilter updates the search text. The host is notified after the
// debounce window. Without the search feature the call is ignored.
func (t *Table[T]) SetGlobalFilter(v string) {
	t.mu.Lock()
	if !t.features.Search || v == t.state.GlobalFilter {
		t.mu.Unlock()
		return
	}
	t.state.GlobalFilter = v
	reset := t.resetPageIndexLocked()
	cur := t.state.Pagination
	t.mu.Unlock()

	if reset {
		t.bridge.pagination(cur)
	}
	t.bridge.searchChanged(v)
}

// SetColumnFilter sets a column's filter value. Empty select, text and
// date-range values remove the filter; an empty multi-select list is kept
// as an empty list.
func (t *Table[T]) SetColumnFilter(columnID string, v FilterValue) error {
	t.mu.Lock()
	if !t.features.Filters {
		t.mu.Unlock()
		return nil
	}
	col := findColumn(t.cols, columnID)
	if col == nil || !canFilter(t.features, col) {
		t.mu.Unlock()
		return fmt.Errorf("column %q cannot be filtered", columnID)
	}
	if v.Kind == FilterMultiSelect && v.List == nil {
		v.List = []string{}
	}

	filters := slices.Clone(t.state.ColumnFilters)
	idx := slices.IndexFunc(filters, func(f ColumnFilter) bool { return f.ID == columnID })
	remove := v.IsEmpty() && v.Kind != FilterMultiSelect
	switch {
	case remove && idx < 0:
		t.mu.Unlock()
		return nil
	case remove:
		filters = slices.Delete(filters, idx, idx+1)
	case idx >= 0:
		if filterValuesEqual(filters[idx].Value, v) {
			t.mu.Unlock()
			return nil
		}
		filters[idx].Value = v
	default:
		filters = append(filters, ColumnFilter{ID: columnID, Value: v})
	}

	t.state.ColumnFilters = filters
	reset := t.resetPageIndexLocked()
	cur := t.state.Pagination
	t.mu.Unlock()

	if reset {
		t.bridge.pagination(cur)
	}
	t.bridge.filtersChanged(filters)
	return nil
}

// ClearColumnFilter removes a column's filter entirely.
func (t *Table[T]) ClearColumnFilter(columnID string) {
	t.mu.Lock()
	idx := slices.IndexFunc(t.state.ColumnFilters, func(f ColumnFilter) bool { return f.ID == columnID })
	if idx < 0 {
		t.mu.Unlock()
		return
	}
	filters := slices.Delete(slices.Clone(t.state.ColumnFilters), idx, idx+1)
	t.state.ColumnFilters = filters
	reset := t.resetPageIndexLocked()
	cur := t.state.Pagination
	t.mu.Unlock()

	if reset {
		t.bridge.pagination(cur)
	}
	t.bridge.filtersChanged(filters)
}

// ColumnFilterValue returns the current filter value of a column.
func (t *Table[T]) ColumnFilterValue(columnID string) (FilterValue, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return lookupFilter(t.state.ColumnFilters, columnID)
}

func lookupFilter(filters []ColumnFilter, id string) (FilterValue, bool) {
	for _, f := range filters {
		if f.ID == id {
			return f.Value, true
		}
	}
	return FilterValue{}, false
}

func filterValuesEqual(a, b FilterValue) bool {
	if a.Kind != b.Kind || a.Scalar != b.Scalar || !slices.Equal(a.List, b.List) {
		return false
	}
	return timePtrEqual(a.Range.From, b.Range.From) && timePtrEqual(a.Range.To, b.Range.To)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// ---------------------------------------------------------------------------
// Row selection
// ---------------------------------------------------------------------------

// ToggleRowSelected sets one row's selection flag.
func (t *Table[T]) ToggleRowSelected(rowID string, selected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.features.RowSelection {
		return
	}
	if !slices.ContainsFunc(t.rows, func(r Row[T]) bool { return r.ID == rowID }) {
		return
	}
	if selected {
		t.state.RowSelection[rowID] = true
	} else {
		delete(t.state.RowSelection, rowID)
	}
}

// ToggleAllRowsSelected sets every row's selection flag to selected.
func (t *Table[T]) ToggleAllRowsSelected(selected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.features.RowSelection {
		return
	}
	sel := make(map[string]bool, len(t.rows))
	if selected {
		for _, r := range t.rows {
			sel[r.ID] = true
		}
	}
	t.state.RowSelection = sel
}

// IsAllRowsSelected reports whether there are rows and all are selected.
func (t *Table[T]) IsAllRowsSelected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return allSelected(t.rows, t.state.RowSelection)
}

// IsRowSelected reports one row's selection flag.
func (t *Table[T]) IsRowSelected(rowID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.RowSelection[rowID]
}

// SelectedRows returns the selected rows in data order.
func (t *Table[T]) SelectedRows() []Row[T] {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Row[T]
	for _, r := range t.rows {
		if t.state.RowSelection[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

func allSelected[T any](rows []Row[T], sel map[string]bool) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		if !sel[r.ID] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Column visibility
// ---------------------------------------------------------------------------

// SetColumnVisibility shows or hides a hideable column.
func (t *Table[T]) SetColumnVisibility(columnID string, visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.features.ColumnVisibility {
		return
	}
	col := findColumn(t.cols, columnID)
	if col == nil || !canHide(col) {
		return
	}
	if visible {
		delete(t.state.ColumnVisibility, columnID)
	} else {
		t.state.ColumnVisibility[columnID] = false
	}
}

// IsColumnVisible reports whether a column is shown.
func (t *Table[T]) IsColumnVisible(columnID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return isVisible(t.state.ColumnVisibility, columnID)
}

func isVisible(vis map[string]bool, id string) bool {
	v, ok := vis[id]
	return !ok || v
}

// ---------------------------------------------------------------------------
// Row model
// ---------------------------------------------------------------------------

// prePaginationRowsLocked returns the filtered and sorted rows for managed
// concerns.
func (t *Table[T]) prePaginationRowsLocked() []Row[T] {
	rows := t.rows
	if t.modes.Filtering == Managed {
		global := ""
		if t.features.Search {
			global = t.state.GlobalFilter
		}
		var filters []ColumnFilter
		if t.features.Filters {
			filters = t.state.ColumnFilters
		}
		rows = filterRows(rows, t.cols, global, filters)
	}
	if t.modes.Sorting == Managed && t.features.Sorting {
		rows = sortRows(rows, t.cols, t.state.Sorting)
	}
	return rows
}

// RowModel returns the rows to display.
func (t *Table[T]) RowModel() []Row[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rowModelLocked()
}

func (t *Table[T]) rowModelLocked() []Row[T] {
	rows := t.prePaginationRowsLocked()
	if t.modes.Pagination == Managed && t.features.Pagination {
		rows = paginateRows(rows, t.state.Pagination)
	}
	return slices.Clone(rows)
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// Export hands the chosen format to the host export function. Concurrent
// exports are independent; there is no retry or cancellation beyond ctx.
func (t *Table[T]) Export(ctx context.Context, format ExportFormat) error {
	if _, err := ParseExportFormat(string(format)); err != nil {
		return fmt.Errorf("export %q: %w", format, err)
	}

	t.mu.Lock()
	opts := t.export
	enabled := t.features.Export
	t.mu.Unlock()

	if !enabled || opts == nil || opts.OnExport == nil {
		return ErrExportDisabled
	}
	return opts.OnExport(ctx, format)
}

// ---------------------------------------------------------------------------
// Capabilities
// ---------------------------------------------------------------------------

func canSort[T any](f Features, c *Column[T]) bool {
	return f.Sorting && c.ID != SelectColumnID && c.Accessor != nil && !c.DisableSorting
}

func canHide[T any](c *Column[T]) bool {
	return c.ID != SelectColumnID && !c.DisableHiding
}

func canFilter[T any](f Features, c *Column[T]) bool {
	return f.Filters && c.ID != SelectColumnID && c.Accessor != nil
}

// IsSomeRowsSelected reports whether at least one but not every row is selected.
func (t *Table[T]) IsSomeRowsSelected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return someSelected(t.rows, t.state.RowSelection)
}

func someSelected[T any](rows []Row[T], sel map[string]bool) bool {
	n := 0
	for _, r := range rows {
		if sel[r.ID] {
			n++
		}
	}
	return n > 0 && n < len(rows)
}

// VisibleColumns returns the columns currently shown, in declaration order.
func (t *Table[T]) VisibleColumns() []*Column[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return visibleColumns(t.cols, t.state.ColumnVisibility)
}

func visibleColumns[T any](cols []*Column[T], vis map[string]bool) []*Column[T] {
	out := make([]*Column[T], 0, len(cols))
	for _, c := range cols {
		if isVisible(vis, c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// Snapshot captures everything a render pass needs under a single lock.
func (t *Table[T]) Snapshot() View[T] {
	loading := t.bridge.pending()

	t.mu.Lock()
	defer t.mu.Unlock()

	return View[T]{
		Columns:      t.cols,
		Rows:         t.rowModelLocked(),
		RowCount:     len(t.prePaginationRowsLocked()),
		State:        t.state.clone(),
		Modes:        t.modes,
		Features:     t.features,
		Server:       t.server,
		Export:       t.export,
		PageCount:    t.pageCountLocked(),
		AllSelected:  allSelected(t.rows, t.state.RowSelection),
		SomeSelected: someSelected(t.rows, t.state.RowSelection),
		SyncPending:  loading,
	}
}
