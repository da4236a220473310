package web

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/datatable/internal/core"
	"github.com/JonMunkholm/datatable/internal/datatable"
	"github.com/JonMunkholm/datatable/internal/logging"
	"github.com/JonMunkholm/datatable/internal/web/templates"
)

// usersPath is the page the users table lives on; page-link URLs in the
// descriptor point here.
const usersPath = "/users"

// Filterable column IDs of the users table.
const (
	colRole      = "role"
	colStatus    = "status"
	colCreatedAt = "createdAt"
)

var titleCaser = cases.Title(language.English)

// userColumns declares the users table: a selection column, then name,
// email, role, status and creation date.
func userColumns() []datatable.Column[core.User] {
	return []datatable.Column[core.User]{
		{
			ID:             datatable.SelectColumnID,
			DisableSorting: true,
			DisableHiding:  true,
		},
		{
			ID:       "name",
			Header:   "Name",
			Accessor: func(u core.User) any { return u.Name },
		},
		{
			ID:       "email",
			Header:   "Email",
			Accessor: func(u core.User) any { return u.Email },
		},
		{
			ID:       colRole,
			Header:   "Role",
			Accessor: func(u core.User) any { return u.Role },
			Cell: func(c datatable.CellContext[core.User]) templ.Component {
				return templates.Capitalized(titleCaser.String(c.Row.Original.Role))
			},
			Filter: &datatable.FilterDescriptor{
				Kind:    datatable.FilterSelect,
				Options: filterOptions(core.RoleOptions),
			},
		},
		{
			ID:       colStatus,
			Header:   "Status",
			Accessor: func(u core.User) any { return u.Status },
			Cell: func(c datatable.CellContext[core.User]) templ.Component {
				return templates.Capitalized(titleCaser.String(c.Row.Original.Status))
			},
			Filter: &datatable.FilterDescriptor{
				Kind:    datatable.FilterMultiSelect,
				Options: filterOptions(core.StatusOptions),
			},
		},
		{
			ID:       colCreatedAt,
			Header:   "Created At",
			Accessor: func(u core.User) any { return u.CreatedAt },
			Cell: func(c datatable.CellContext[core.User]) templ.Component {
				return templates.Text(c.Row.Original.CreatedAt.Format(core.DisplayDateLayout))
			},
			Filter: &datatable.FilterDescriptor{Kind: datatable.FilterDateRange},
		},
	}
}

func filterOptions(opts []core.Option) []datatable.FilterOption {
	out := make([]datatable.FilterOption, len(opts))
	for i, o := range opts {
		out[i] = datatable.FilterOption{Label: o.Label, Value: o.Value}
	}
	return out
}

func userRowID(u core.User, _ int) string {
	return strconv.FormatInt(u.ID, 10)
}

// newUsersSession builds and registers a users table for q. The table
// starts from st, so a session restored from a state token keeps its
// selection and hidden columns. The first page is loaded before returning.
func (s *Server) newUsersSession(ctx context.Context, q core.UserQuery, st datatable.State) (*usersSession, error) {
	sess := &usersSession{
		id:    uuid.NewString(),
		query: q,
		list: func(ctx context.Context, q core.UserQuery) (*core.UserPage, error) {
			return s.service.ListUsers(ctx, q, usersPath)
		},
		timeout: s.cfg.Table.SyncTimeout,
	}

	sess.table = datatable.New(datatable.Options[core.User]{
		Columns:   userColumns(),
		Modes:     datatable.AllDelegated,
		Callbacks: sess.callbacks(),
		Features: datatable.Features{
			RowSelection:     true,
			ColumnVisibility: true,
			Sorting:          true,
			Filters:          true,
			Search:           true,
			Pagination:       true,
			Export:           true,
		},
		Export: &datatable.ExportOptions{
			Type:     datatable.ExportCSV,
			Filename: "users-export",
			OnExport: s.exportUsers(sess),
		},
		GetRowID: userRowID,
		Debounce: s.cfg.Table.Debounce,
	})
	sess.table.RestoreState(st)

	if err := sess.reload(ctx); err != nil {
		sess.close()
		return nil, err
	}
	s.sessions.add(sess)
	return sess, nil
}

// callbacks turn table changes into host query changes. Pagination and
// sorting arrive on the request goroutine, so the re-rendered fragment
// already carries the new page. Search and filters arrive from debounce
// timers; listeners are told to refresh once the page is loaded.
func (s *usersSession) callbacks() datatable.Callbacks {
	return datatable.Callbacks{
		OnPaginationChange: func(p datatable.PaginationState) {
			s.updateQuery(func(q *core.UserQuery) {
				q.Page = p.PageIndex + 1
				q.PerPage = p.PageSize
			})
			s.sync("pagination")
		},
		OnSortingChange: func(sorting []datatable.Sort) {
			s.updateQuery(func(q *core.UserQuery) {
				q.Sort = sortSpec(sorting)
			})
			s.sync("sorting")
		},
		OnSearchChange: func(v string) {
			s.updateQuery(func(q *core.UserQuery) {
				q.Search = strings.TrimSpace(v)
				q.Page = 1
			})
			s.sync("search")
			s.notify()
		},
		OnFiltersChange: func(filters map[string]datatable.FilterValue) {
			s.updateQuery(func(q *core.UserQuery) {
				applyFilters(q, filters)
				q.Page = 1
			})
			s.sync("filters")
			s.notify()
		},
	}
}

// sync reloads outside any request. Failures are kept for the next render.
func (s *usersSession) sync(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.reload(ctx); err != nil {
		logging.FromContext(ctx).Error("table sync failed",
			"session", s.id,
			"reason", reason,
			"error", err,
		)
	}
}

// reload loads the page for the current query and hands it to the table.
func (s *usersSession) reload(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	page, err := s.list(ctx, s.Query())

	s.mu.Lock()
	s.loadErr = err
	if err == nil {
		s.query = page.Query
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	s.table.SetData(page.Users, &page.Pagination)
	return nil
}

type downloadIDKey struct{}

// withDownloadID names the download an export started from ctx parks as.
func withDownloadID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, downloadIDKey{}, id)
}

// exportUsers fetches the export from the export endpoint and parks it for
// download under the ID carried by ctx. A failed export is logged and leaves
// no download behind.
func (s *Server) exportUsers(sess *usersSession) datatable.ExportFunc {
	return func(ctx context.Context, format datatable.ExportFormat) error {
		id, _ := ctx.Value(downloadIDKey{}).(string)
		if id == "" {
			id = uuid.NewString()
		}

		data, err := s.exporter.Fetch(ctx, format, sess.Query())
		if err != nil {
			logging.FromContext(ctx).Error("export failed",
				"session", sess.id,
				"format", format,
				"error", err,
			)
			return nil
		}
		sess.parkDownload(&Download{
			ID:          id,
			Name:        core.ExportFileName(format),
			ContentType: core.ExportContentType(format),
			Data:        data,
			Created:     time.Now(),
		})
		return nil
	}
}

func sortSpec(sorting []datatable.Sort) *core.SortSpec {
	if len(sorting) == 0 {
		return nil
	}
	return &core.SortSpec{Column: sorting[0].ID, Desc: sorting[0].Desc}
}

// applyFilters replaces q's column filters with filters. Missing or empty
// values clear the corresponding constraint.
func applyFilters(q *core.UserQuery, filters map[string]datatable.FilterValue) {
	q.Role = ""
	q.Statuses = nil
	q.CreatedFrom, q.CreatedTo = nil, nil

	if v, ok := filters[colRole]; ok {
		q.Role = v.Scalar
	}
	if v, ok := filters[colStatus]; ok && len(v.List) > 0 {
		q.Statuses = append([]string(nil), v.List...)
	}
	if v, ok := filters[colCreatedAt]; ok {
		q.CreatedFrom, q.CreatedTo = v.Range.From, v.Range.To
	}
}

// stateFromQuery is the table view state matching a URL query.
func stateFromQuery(q core.UserQuery) datatable.State {
	st := datatable.State{
		GlobalFilter: q.Search,
		Pagination: datatable.PaginationState{
			PageIndex: max(q.Page-1, 0),
			PageSize:  q.PerPage,
		},
	}
	if q.Sort != nil {
		st.Sorting = []datatable.Sort{{ID: q.Sort.Column, Desc: q.Sort.Desc}}
	}
	if q.Role != "" {
		st.ColumnFilters = append(st.ColumnFilters, datatable.ColumnFilter{ID: colRole, Value: datatable.SelectValue(q.Role)})
	}
	if len(q.Statuses) > 0 {
		st.ColumnFilters = append(st.ColumnFilters, datatable.ColumnFilter{ID: colStatus, Value: datatable.MultiValue(q.Statuses)})
	}
	if q.CreatedFrom != nil || q.CreatedTo != nil {
		st.ColumnFilters = append(st.ColumnFilters, datatable.ColumnFilter{ID: colCreatedAt, Value: datatable.RangeValue(q.CreatedFrom, q.CreatedTo)})
	}
	return st
}

// queryFromState is the host query a view state asks for. The sort column
// is validated the same way URL parameters are.
func queryFromState(st datatable.State) (core.UserQuery, error) {
	q := core.UserQuery{
		Page:    st.Pagination.PageIndex + 1,
		PerPage: st.Pagination.PageSize,
		Search:  st.GlobalFilter,
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = core.DefaultPerPage
	}
	q.PerPage = min(q.PerPage, core.MaxPerPage)

	if s := sortSpec(st.Sorting); s != nil {
		sort, err := core.ParseSort(s.String())
		if err != nil {
			return core.UserQuery{}, err
		}
		q.Sort = sort
	}

	filters := make(map[string]datatable.FilterValue, len(st.ColumnFilters))
	for _, f := range st.ColumnFilters {
		filters[f.ID] = f.Value
	}
	applyFilters(&q, filters)
	return q, nil
}
