package datatable

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// View is an immutable snapshot of a table taken for one render pass.
type View[T any] struct {
	Columns []*Column[T]
	Rows    []Row[T]

	// RowCount is the number of rows before local pagination.
	RowCount int

	State    State
	Modes    Modes
	Features Features
	Server   *Pagination
	Export   *ExportOptions

	PageCount    int
	AllSelected  bool
	SomeSelected bool

	// SyncPending is set while a debounced notification is outstanding.
	SyncPending bool
}

// VisibleColumns returns the shown columns in declaration order.
func (v *View[T]) VisibleColumns() []*Column[T] {
	return visibleColumns(v.Columns, v.State.ColumnVisibility)
}

// HideableColumns returns the columns listed in the visibility menu.
func (v *View[T]) HideableColumns() []*Column[T] {
	var out []*Column[T]
	for _, c := range v.Columns {
		if canHide(c) {
			out = append(out, c)
		}
	}
	return out
}

// FilterableColumns returns the columns that declare a filter control.
func (v *View[T]) FilterableColumns() []*Column[T] {
	if !v.Features.Filters {
		return nil
	}
	var out []*Column[T]
	for _, c := range v.Columns {
		if c.Filter != nil && canFilter(v.Features, c) {
			out = append(out, c)
		}
	}
	return out
}

func (v *View[T]) IsVisible(columnID string) bool {
	return isVisible(v.State.ColumnVisibility, columnID)
}

func (v *View[T]) IsSelected(rowID string) bool {
	return v.State.RowSelection[rowID]
}

func (v *View[T]) CanSort(c *Column[T]) bool {
	return canSort(v.Features, c)
}

// SortDirection returns "asc", "desc" or "" for a column.
func (v *View[T]) SortDirection(columnID string) string {
	return sortDirection(v.State.Sorting, columnID)
}

// FilterValue returns the column's filter value, or a zero value of the
// column's declared kind.
func (v *View[T]) FilterValue(c *Column[T]) FilterValue {
	if fv, ok := lookupFilter(v.State.ColumnFilters, c.ID); ok {
		return fv
	}
	if c.Filter != nil {
		return FilterValue{Kind: c.Filter.Kind}
	}
	return FilterValue{}
}

func (v *View[T]) CanPreviousPage() bool {
	return v.State.Pagination.PageIndex > 0
}

func (v *View[T]) CanNextPage() bool {
	return canNext(v.State.Pagination.PageIndex, v.PageCount)
}

// Empty reports whether the visible row model has no rows.
func (v *View[T]) Empty() bool {
	return len(v.Rows) == 0
}

// ColumnTitle turns a column ID into a menu label, e.g. "createdAt" to
// "Created At".
func ColumnTitle(id string) string {
	var b strings.Builder
	for i, r := range id {
		switch {
		case r == '_' || r == '-':
			b.WriteByte(' ')
			continue
		case i > 0 && r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return cases.Title(language.English, cases.NoLower).String(b.String())
}
