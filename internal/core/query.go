package core

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/datatable/internal/schema"
)

// DateLayout is the wire format of date query parameters.
const DateLayout = "2006-01-02"

// Query paging bounds.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Query parameter names.
const (
	ParamPage        = "page"
	ParamPerPage     = "per_page"
	ParamSort        = "sort"
	ParamSearch      = "search"
	ParamRole        = "role"
	ParamStatus      = "status"
	ParamCreatedFrom = "createdAt[from]"
	ParamCreatedTo   = "createdAt[to]"
)

// SortSpec orders results by one column.
type SortSpec struct {
	Column string
	Desc   bool
}

// String renders the sort as "<column>:<asc|desc>".
func (s SortSpec) String() string {
	if s.Desc {
		return s.Column + ":desc"
	}
	return s.Column + ":asc"
}

// ParseSort parses "<column>:<asc|desc>". A bare column sorts ascending.
func ParseSort(s string) (*SortSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	col, dir, _ := strings.Cut(s, ":")
	if f, ok := schema.Lookup(schema.UserFields, col); !ok || !f.Sortable {
		return nil, fmt.Errorf("invalid sort column: %q", col)
	}
	switch strings.ToLower(dir) {
	case "", "asc":
		return &SortSpec{Column: col}, nil
	case "desc":
		return &SortSpec{Column: col, Desc: true}, nil
	}
	return nil, fmt.Errorf("invalid sort direction: %q", dir)
}

// UserQuery selects a page of users.
type UserQuery struct {
	Page    int
	PerPage int
	Sort    *SortSpec
	Search  string

	Role        string
	Statuses    []string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ParseUserQuery reads a query from URL parameters. Paging values are
// clamped rather than rejected; malformed sort and date values are errors.
func ParseUserQuery(v url.Values) (UserQuery, error) {
	q := UserQuery{
		Page:    1,
		PerPage: DefaultPerPage,
		Search:  strings.TrimSpace(v.Get(ParamSearch)),
		Role:    strings.TrimSpace(v.Get(ParamRole)),
	}

	if n, err := strconv.Atoi(v.Get(ParamPage)); err == nil && n > 0 {
		q.Page = n
	}
	if n, err := strconv.Atoi(v.Get(ParamPerPage)); err == nil && n > 0 {
		q.PerPage = min(n, MaxPerPage)
	}

	sort, err := ParseSort(v.Get(ParamSort))
	if err != nil {
		return UserQuery{}, err
	}
	q.Sort = sort

	for _, raw := range v[ParamStatus] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" && !slices.Contains(q.Statuses, s) {
				q.Statuses = append(q.Statuses, s)
			}
		}
	}

	if q.CreatedFrom, err = parseDate(v.Get(ParamCreatedFrom)); err != nil {
		return UserQuery{}, err
	}
	if q.CreatedTo, err = parseDate(v.Get(ParamCreatedTo)); err != nil {
		return UserQuery{}, err
	}
	return q, nil
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return &t, nil
}

// Values encodes the query as URL parameters, omitting empty values.
func (q UserQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set(ParamPage, strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set(ParamPerPage, strconv.Itoa(q.PerPage))
	}
	if q.Sort != nil {
		v.Set(ParamSort, q.Sort.String())
	}
	if q.Search != "" {
		v.Set(ParamSearch, q.Search)
	}
	if q.Role != "" {
		v.Set(ParamRole, q.Role)
	}
	for _, s := range q.Statuses {
		v.Add(ParamStatus, s)
	}
	if q.CreatedFrom != nil {
		v.Set(ParamCreatedFrom, q.CreatedFrom.Format(DateLayout))
	}
	if q.CreatedTo != nil {
		v.Set(ParamCreatedTo, q.CreatedTo.Format(DateLayout))
	}
	return v
}

// Encode returns the query string form of Values.
func (q UserQuery) Encode() string {
	return q.Values().Encode()
}

// WithPage returns a copy of q at page n.
func (q UserQuery) WithPage(n int) UserQuery {
	q.Page = n
	return q
}

// Offset is the number of rows skipped before the current page.
func (q UserQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// HasFilters reports whether any row constraint is set.
func (q UserQuery) HasFilters() bool {
	return q.Search != "" || q.Role != "" || len(q.Statuses) > 0 || q.CreatedFrom != nil || q.CreatedTo != nil
}

// Matches reports whether u satisfies the search text and filters.
func (q UserQuery) Matches(u User) bool {
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(u.Name), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) &&
			!strings.Contains(strings.ToLower(u.Role), needle) {
			return false
		}
	}
	if q.Role != "" && !strings.EqualFold(u.Role, q.Role) {
		return false
	}
	if len(q.Statuses) > 0 && !slices.ContainsFunc(q.Statuses, func(s string) bool { return strings.EqualFold(s, u.Status) }) {
		return false
	}
	day := truncateDay(u.CreatedAt)
	if q.CreatedFrom != nil && day.Before(truncateDay(*q.CreatedFrom)) {
		return false
	}
	if q.CreatedTo != nil && day.After(truncateDay(*q.CreatedTo)) {
		return false
	}
	return true
}

// Compare orders two users by the query's sort, falling back to ID.
func (q UserQuery) Compare(a, b User) int {
	c := 0
	if q.Sort != nil {
		switch q.Sort.Column {
		case "name":
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case "email":
			c = strings.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email))
		case "role":
			c = strings.Compare(strings.ToLower(a.Role), strings.ToLower(b.Role))
		case "status":
			c = strings.Compare(a.Status, b.Status)
		case "createdAt":
			c = a.CreatedAt.Compare(b.CreatedAt)
		case "id":
			c = cmp.Compare(a.ID, b.ID)
		}
		if q.Sort.Desc {
			c = -c
		}
	}
	if c == 0 {
		c = cmp.Compare(a.ID, b.ID)
	}
	return c
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
