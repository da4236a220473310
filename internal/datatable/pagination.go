package datatable

import (
	"context"
	"fmt"
	"html"
	"io"
	"slices"
	"strconv"

	"github.com/a-h/templ"
)

// Footer renders the pagination controls: a row summary, page-size
// selector, first/previous/next/last buttons and the host's page links.
func Footer[T any](v *View[T], p Props[T]) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		ps := v.State.Pagination

		h.raw(`<div class="dt-pagination"><div class="dt-pagination-summary">`)
		if v.Features.RowSelection {
			h.raw(`<span class="dt-selection-count">`)
			h.text(fmt.Sprintf("%d of %d row(s) selected.", len(v.State.RowSelection), v.RowCount))
			h.raw(`</span> `)
		}
		h.raw(`<span class="dt-range">`)
		h.text(summary(v))
		h.raw(`</span></div><div class="dt-pagination-controls">`)

		h.raw(`<label class="dt-page-size">Rows per page <select name="value" hx-trigger="change"`)
		h.post(p.EventsURL, eventVals("page_size"))
		h.raw(`>`)
		for _, n := range pageSizeChoices(ps.PageSize) {
			h.raw(`<option`)
			h.attr("value", itoa(n))
			h.flag("selected", n == ps.PageSize)
			h.raw(`>`)
			h.text(itoa(n))
			h.raw(`</option>`)
		}
		h.raw(`</select></label>`)

		h.raw(`<span class="dt-page-of">`)
		if v.PageCount == UnknownPageCount {
			h.text(fmt.Sprintf("Page %d", ps.PageIndex+1))
		} else {
			h.text(fmt.Sprintf("Page %d of %d", ps.PageIndex+1, max(v.PageCount, 1)))
		}
		h.raw(`</span>`)

		canPrev, canNext := v.CanPreviousPage(), v.CanNextPage()
		navButton(h, p.EventsURL, "first", "Go to first page", "&laquo;", canPrev)
		navButton(h, p.EventsURL, "prev", "Go to previous page", "&lsaquo;", canPrev)
		if v.Server != nil {
			renderPageLinks(h, p.EventsURL, v.Server.Links)
		}
		navButton(h, p.EventsURL, "next", "Go to next page", "&rsaquo;", canNext)
		navButton(h, p.EventsURL, "last", "Go to last page", "&raquo;", canNext && v.PageCount != UnknownPageCount)

		h.raw(`</div></div>`)
		return h.err
	})
}

func navButton(h *htmlWriter, url, event, label, glyph string, enabled bool) {
	h.raw(`<button type="button" class="dt-page-nav"`)
	h.attr("data-nav", event)
	h.attr("aria-label", label)
	h.flag("disabled", !enabled)
	h.post(url, eventVals(event))
	h.raw(`>` + glyph + `</button>`)
}

// renderPageLinks renders the numbered links of the host descriptor. The
// previous and next links are covered by the navigation buttons; labels
// that are not page numbers render as plain separators.
func renderPageLinks(h *htmlWriter, url string, links []PageLink) {
	if len(links) == 0 {
		return
	}
	h.raw(`<span class="dt-page-links">`)
	for _, l := range links {
		n, err := strconv.Atoi(l.Label)
		if err != nil {
			if l.URL == nil && !isPrevNextLabel(l.Label) {
				h.raw(`<span class="dt-page-gap">`)
				h.text(html.UnescapeString(l.Label))
				h.raw(`</span>`)
			}
			continue
		}
		h.raw(`<button type="button" class="dt-page-link"`)
		if l.Active {
			h.raw(` aria-current="page" disabled`)
		}
		h.post(url, eventVals("page", "value", itoa(n-1)))
		h.raw(`>`)
		h.text(l.Label)
		h.raw(`</button>`)
	}
	h.raw(`</span>`)
}

func isPrevNextLabel(label string) bool {
	return label == PrevLinkLabel || label == NextLinkLabel
}

// PrevLinkLabel and NextLinkLabel are the labels of the first and last
// entries of a page-link list.
const (
	PrevLinkLabel = "&laquo; Previous"
	NextLinkLabel = "Next &raquo;"
)

// summary describes the visible row range.
func summary[T any](v *View[T]) string {
	if s := v.Server; s != nil && v.Modes.Pagination == Delegated {
		if s.Total == 0 {
			return "No results"
		}
		return fmt.Sprintf("Showing %d to %d of %d results", s.From, s.To, s.Total)
	}
	if v.RowCount == 0 {
		return "No results"
	}
	ps := v.State.Pagination
	from := ps.PageIndex*ps.PageSize + 1
	to := min(from+len(v.Rows)-1, v.RowCount)
	return fmt.Sprintf("Showing %d to %d of %d results", from, to, v.RowCount)
}

// pageSizeChoices returns the selector options, including a current size
// that is not one of the defaults.
func pageSizeChoices(current int) []int {
	out := slices.Clone(PageSizeOptions)
	if current <= 0 || slices.Contains(out, current) {
		return out
	}
	for i, n := range out {
		if current < n {
			return slices.Insert(out, i, current)
		}
	}
	return append(out, current)
}
