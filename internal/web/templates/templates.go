// Package templates holds the page-level components of the demo: the
// layout, the users page and the slots the users table plugs into the
// generic data table.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Script sources loaded by the layout. The CSP in the web server allows
// exactly this origin.
const (
	ScriptOrigin = "https://unpkg.com"
	HTMXScript   = ScriptOrigin + "/htmx.org@2.0.4/dist/htmx.min.js"
	SSEScript    = ScriptOrigin + "/htmx-ext-sse@2.2.2/sse.js"
)

// writer tracks the first write error so components can emit markup
// without checking every call.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) printf(format string, args ...any) {
	if w.err == nil {
		_, w.err = fmt.Fprintf(w.w, format, args...)
	}
}

// esc escapes text and attribute values.
func esc(s string) string {
	return templ.EscapeString(s)
}

func (w *writer) render(ctx context.Context, c templ.Component) {
	if w.err == nil && c != nil {
		w.err = c.Render(ctx, w.w)
	}
}

// Text renders s as escaped text.
func Text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, esc(s))
		return err
	})
}

// Capitalized renders s in a span styled like the role and status cells.
func Capitalized(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<span class="capitalize">%s</span>`, esc(s))
		return err
	})
}
