package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// UsersPageProps are the inputs of the users page.
type UsersPageProps struct {
	// StreamURL is the server-sent event stream the table refreshes from.
	StreamURL string
	Table     templ.Component
}

// UsersPage is the body of the users page.
func UsersPage(p UsersPageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		pw := &writer{w: w}
		pw.raw(`<div class="stack">`)
		pw.raw(`<div><h1 class="page-title">Users</h1>`)
		pw.raw(`<p class="muted">Manage your application users</p></div>`)
		pw.raw(`<div id="table-alerts" aria-live="polite"></div>`)
		pw.printf(`<div hx-ext="sse" sse-connect="%s">`, esc(p.StreamURL))
		pw.render(ctx, p.Table)
		pw.raw(`</div></div>`)
		return pw.err
	})
}

// UserRowActions is the per-row actions menu. deleteURL answers with the
// re-rendered table.
func UserRowActions(userID int64, deleteURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		id := strconv.FormatInt(userID, 10)
		pw := &writer{w: w}
		pw.raw(`<details class="dt-menu dt-row-actions">`)
		pw.raw(`<summary class="btn btn-ghost btn-icon" aria-label="Actions">&hellip;<span class="sr-only">Actions</span></summary>`)
		pw.raw(`<div class="dt-menu-content">`)
		pw.printf(`<a class="dt-menu-item" href="/users/%s/edit">Edit</a>`, id)
		pw.printf(`<button type="button" class="dt-menu-item text-destructive" hx-delete="%s"`, esc(deleteURL))
		pw.raw(` hx-confirm="Are you sure you want to delete this user?">Delete</button>`)
		pw.raw(`</div></details>`)
		return pw.err
	})
}

// UsersToolbar is the toolbar slot of the users table.
func UsersToolbar() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<a class="btn btn-primary" href="/users/create">Add User</a>`)
		return err
	})
}
