package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Page wraps body in the HTML document shell.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		pw := &writer{w: w}
		pw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		pw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		pw.printf(`<title>%s</title>`, esc(title))
		pw.raw(`<link rel="stylesheet" href="/static/datatable.css">`)
		pw.printf(`<script src="%s"></script>`, esc(HTMXScript))
		pw.printf(`<script src="%s"></script>`, esc(SSEScript))
		pw.raw(`</head><body><main class="container">`)
		pw.render(ctx, body)
		pw.raw(`</main></body></html>`)
		return pw.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		pw := &writer{w: w}
		pw.raw(`<div class="alert alert-error" role="alert">`)
		pw.printf(`<p class="alert-message">%s</p>`, esc(message))
		if action != "" {
			pw.printf(`<p class="alert-action">%s</p>`, esc(action))
		}
		if code != "" {
			pw.printf(`<p class="alert-code">Code: %s</p>`, esc(code))
		}
		pw.raw(`</div>`)
		return pw.err
	})
}
