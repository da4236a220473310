package datatable

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Export renders the export menu offering CSV, Excel and PDF. Nothing is
// rendered when the table has no export configuration.
func Export[T any](v *View[T], p Props[T]) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if v.Export == nil {
			return nil
		}
		h := newHTMLWriter(ctx, w)

		h.raw(`<details class="dt-menu dt-export"><summary>Export</summary><div class="dt-menu-items">`)
		for _, f := range ExportFormats {
			h.raw(`<button type="button" class="dt-menu-item"`)
			h.attr("data-format", string(f))
			h.post(p.EventsURL, eventVals("export", "format", string(f)))
			h.raw(`>`)
			h.text("Export as " + f.Label())
			h.raw(`</button>`)
		}
		h.raw(`</div></details>`)
		return h.err
	})
}
