package datatable

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// maxSkeletonRows caps the placeholder rows shown while loading.
const maxSkeletonRows = 25

// skeletonRows scales the loading placeholder with the requested page size.
func skeletonRows(pageSize int) int {
	switch {
	case pageSize <= 0:
		return 5
	case pageSize > maxSkeletonRows:
		return maxSkeletonRows
	}
	return pageSize
}

// Content renders, in priority order: the error state, the loading
// placeholder when there are no rows, the empty state, or the table.
func Content[T any](v *View[T], p Props[T]) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		loading := p.Loading

		switch {
		case p.Error != nil:
			h.raw(`<div class="dt-state dt-error" role="alert">`)
			if p.ErrorState != nil {
				h.component(p.ErrorState(p.Error))
			} else {
				h.raw(`<p class="dt-state-title">Something went wrong</p><p class="dt-state-detail">`)
				h.text(p.Error.Error())
				h.raw(`</p>`)
			}
			h.raw(`</div>`)

		case v.Empty() && loading:
			h.raw(`<div class="dt-content dt-loading">`)
			renderTable(h, v, p, true)
			h.raw(`</div>`)

		case v.Empty():
			h.raw(`<div class="dt-state dt-empty">`)
			if p.EmptyState != nil {
				h.component(p.EmptyState())
			} else {
				h.raw(`<p class="dt-state-title">No results found.</p>`)
			}
			h.raw(`</div>`)

		default:
			h.raw(`<div class="dt-content">`)
			renderTable(h, v, p, loading)
			h.raw(`</div>`)
		}
		return h.err
	})
}

func renderTable[T any](h *htmlWriter, v *View[T], p Props[T], loading bool) {
	cols := v.VisibleColumns()

	h.raw(`<table class="dt-table"><thead><tr>`)
	for _, c := range cols {
		renderHeaderCell(h, v, p, c)
	}
	if p.RowActions != nil {
		h.raw(`<th class="dt-actions"><span class="sr-only">Actions</span></th>`)
	}
	h.raw(`</tr></thead><tbody>`)

	if loading {
		for i, n := 0, skeletonRows(v.State.Pagination.PageSize); i < n; i++ {
			h.raw(`<tr class="dt-skeleton">`)
			for range cols {
				h.raw(`<td><div class="dt-skeleton-bar"></div></td>`)
			}
			if p.RowActions != nil {
				h.raw(`<td></td>`)
			}
			h.raw(`</tr>`)
		}
	} else {
		for _, row := range v.Rows {
			renderRow(h, v, p, cols, row)
		}
	}

	h.raw(`</tbody></table>`)
}

func renderHeaderCell[T any](h *htmlWriter, v *View[T], p Props[T], c *Column[T]) {
	h.raw(`<th`)
	h.attr("data-column", c.ID)

	if c.ID == SelectColumnID {
		h.raw(`><input type="checkbox" class="dt-select-all" aria-label="Select all" hx-trigger="change"`)
		h.flag("checked", v.AllSelected)
		if v.SomeSelected {
			h.raw(` data-indeterminate="true"`)
		}
		h.post(p.EventsURL, eventVals("select_all", "selected", boolString(!v.AllSelected)))
		h.raw(`></th>`)
		return
	}

	if !v.CanSort(c) {
		h.raw(`>`)
		renderHeaderLabel(h, v, c)
		h.raw(`</th>`)
		return
	}

	dir := v.SortDirection(c.ID)
	switch dir {
	case "asc":
		h.raw(` aria-sort="ascending"`)
	case "desc":
		h.raw(` aria-sort="descending"`)
	}
	h.raw(`><button type="button" class="dt-sort"`)
	h.post(p.EventsURL, eventVals("sort", "column", c.ID))
	h.raw(`>`)
	renderHeaderLabel(h, v, c)
	h.raw(`<span class="dt-sort-indicator" aria-hidden="true">`)
	switch dir {
	case "asc":
		h.raw(`&#9650;`)
	case "desc":
		h.raw(`&#9660;`)
	default:
		h.raw(`&#8645;`)
	}
	h.raw(`</span></button></th>`)
}

func renderHeaderLabel[T any](h *htmlWriter, v *View[T], c *Column[T]) {
	if c.HeaderAs != nil {
		h.component(c.HeaderAs(HeaderContext[T]{Column: c, View: v}))
		return
	}
	h.text(c.Header)
}

func renderRow[T any](h *htmlWriter, v *View[T], p Props[T], cols []*Column[T], row Row[T]) {
	selected := v.IsSelected(row.ID)

	h.raw(`<tr`)
	h.attr("data-row-id", row.ID)
	if selected {
		h.raw(` data-state="selected"`)
	}
	h.raw(`>`)

	for _, c := range cols {
		h.raw(`<td>`)
		switch {
		case c.ID == SelectColumnID:
			h.raw(`<input type="checkbox" class="dt-select-row" aria-label="Select row" hx-trigger="change"`)
			h.flag("checked", selected)
			h.post(p.EventsURL, eventVals("select_row", "row", row.ID, "selected", boolString(!selected)))
			h.raw(`>`)
		case c.Cell != nil:
			h.component(c.Cell(CellContext[T]{Row: row, Column: c, Value: c.value(row.Original)}))
		default:
			h.text(stringify(c.value(row.Original)))
		}
		h.raw(`</td>`)
	}

	if p.RowActions != nil {
		h.raw(`<td class="dt-actions">`)
		h.component(p.RowActions(row))
		h.raw(`</td>`)
	}
	h.raw(`</tr>`)
}
