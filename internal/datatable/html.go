package datatable

import (
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and remembers the first error, so render
// functions can write freely and check once at the end.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newHTMLWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// text writes escaped text.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with the value escaped.
func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// flag writes a boolean attribute when on.
func (h *htmlWriter) flag(name string, on bool) {
	if on {
		h.raw(" " + name)
	}
}

// vals writes an hx-vals attribute carrying the given parameters.
func (h *htmlWriter) vals(params map[string]string) {
	b, err := json.Marshal(params)
	if err != nil {
		h.err = err
		return
	}
	h.attr("hx-vals", string(b))
}

// component renders a child component inline.
func (h *htmlWriter) component(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

// eventVals returns the hx-vals payload of a table event.
func eventVals(event string, kv ...string) map[string]string {
	m := map[string]string{"event": event}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

func itoa(n int) string { return strconv.Itoa(n) }

// post writes the attributes of an element that posts a table event.
func (h *htmlWriter) post(url string, vals map[string]string) {
	h.attr("hx-post", url)
	h.vals(vals)
}
