// Package datatable is a server-rendered data table built from templ
// components and htmx attributes.
//
// A Table holds the view state of one table instance (selection, column
// visibility, filters, sorting, search text and the page cursor). Each of
// pagination, sorting and filtering is either Managed, computed locally
// from the rows given to the table, or Delegated to the host, which is
// notified through Callbacks and answers with SetData. Pagination and
// sorting notifications are immediate; search and filter notifications
// are debounced.
//
// Rendering works from a View snapshot:
//
//	v := table.Snapshot()
//	datatable.DataTable(&v, props).Render(ctx, w)
//
// The rendered controls post events that ApplyEvent decodes back into
// table operations.
package datatable
