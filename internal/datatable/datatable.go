package datatable

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Props carries the per-render inputs of the composite component that are
// not part of the table state: endpoints, host flags and render slots.
type Props[T any] struct {
	// ID is the DOM id of the table root; fragments replace it in place.
	ID string

	// EventsURL receives table events as form posts.
	EventsURL string

	// RefreshURL re-renders the table. When set, the root reloads itself on
	// the "refresh" server-sent event.
	RefreshURL string

	// StateToken restores the view state if the server session expired.
	StateToken string

	Loading bool
	Error   error

	RowActions func(Row[T]) templ.Component
	Toolbar    func() templ.Component
	EmptyState func() templ.Component
	ErrorState func(error) templ.Component
}

// DataTable composes the header, content and, when enabled, the pagination
// footer. Header, Content, Footer, Filter and Export can also be used on
// their own to lay out a custom table.
func DataTable[T any](v *View[T], p Props[T]) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)

		h.raw(`<div class="dt" hx-target="this" hx-swap="outerHTML" hx-sync="this:replace"`)
		if p.ID != "" {
			h.attr("id", p.ID)
		}
		if p.RefreshURL != "" {
			h.attr("hx-get", p.RefreshURL)
			h.raw(` hx-trigger="sse:refresh"`)
		}
		if p.StateToken != "" {
			h.vals(map[string]string{"state": p.StateToken})
		}
		if v.SyncPending || p.Loading {
			h.raw(` aria-busy="true"`)
		}
		h.raw(`>`)

		h.component(Header(v, p))
		h.component(Content(v, p))
		if v.Features.Pagination {
			h.component(Footer(v, p))
		}

		h.raw(`</div>`)
		return h.err
	})
}
