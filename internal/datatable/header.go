package datatable

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Header renders the search input, toolbar slot, export menu,
// column-visibility menu and the filter row.
func Header[T any](v *View[T], p Props[T]) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)

		h.raw(`<div class="dt-header"><div class="dt-toolbar"><div class="dt-toolbar-start">`)
		if v.Features.Search {
			renderSearch(h, p, v.State.GlobalFilter)
		}
		if p.Toolbar != nil {
			h.component(p.Toolbar())
		}
		h.raw(`</div><div class="dt-toolbar-end">`)
		if v.Features.Export {
			h.component(Export(v, p))
		}
		if v.Features.ColumnVisibility {
			renderColumnMenu(h, v, p)
		}
		h.raw(`</div></div>`)

		if cols := v.FilterableColumns(); len(cols) > 0 {
			h.raw(`<div class="dt-filters">`)
			for _, c := range cols {
				h.component(Filter(v, p, c))
			}
			h.raw(`</div>`)
		}

		h.raw(`</div>`)
		return h.err
	})
}

// renderSearch keeps the input across swaps with hx-preserve so typing is
// never interrupted by a re-render.
func renderSearch[T any](h *htmlWriter, p Props[T], current string) {
	h.raw(`<input type="search" class="dt-search" name="value" placeholder="Search..." aria-label="Search"`)
	if p.ID != "" {
		h.attr("id", p.ID+"-search")
		h.raw(` hx-preserve="true"`)
	}
	h.attr("value", current)
	h.raw(` hx-trigger="input changed, search" hx-sync="this:replace"`)
	h.post(p.EventsURL, eventVals("search"))
	h.raw(`>`)
}

func renderColumnMenu[T any](h *htmlWriter, v *View[T], p Props[T]) {
	h.raw(`<details class="dt-menu dt-columns"><summary>Columns</summary><div class="dt-menu-items">`)
	for _, c := range v.HideableColumns() {
		visible := v.IsVisible(c.ID)
		h.raw(`<label class="dt-menu-item"><input type="checkbox" hx-trigger="change"`)
		h.flag("checked", visible)
		h.post(p.EventsURL, eventVals("column_visibility", "column", c.ID, "visible", boolString(!visible)))
		h.raw(`> `)
		h.text(ColumnTitle(c.ID))
		h.raw(`</label>`)
	}
	h.raw(`</div></details>`)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
