package datatable

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// dayLayout is the wire format for date filter bounds and date-like strings.
const dayLayout = "2006-01-02"

// coreRows wraps data in rows, assigning IDs.
func coreRows[T any](data []T, getID func(T, int) string) []Row[T] {
	rows := make([]Row[T], len(data))
	for i, d := range data {
		id := strconv.Itoa(i)
		if getID != nil {
			id = getID(d, i)
		}
		rows[i] = Row[T]{ID: id, Index: i, Original: d}
	}
	return rows
}

// filterRows applies the global search and column filters.
func filterRows[T any](rows []Row[T], cols []*Column[T], global string, filters []ColumnFilter) []Row[T] {
	global = strings.ToLower(strings.TrimSpace(global))

	type active struct {
		col *Column[T]
		val FilterValue
	}
	var actives []active
	for _, f := range filters {
		if f.Value.IsEmpty() {
			continue
		}
		col := findColumn(cols, f.ID)
		if col == nil || col.Accessor == nil {
			continue
		}
		actives = append(actives, active{col: col, val: f.Value})
	}

	if global == "" && len(actives) == 0 {
		return rows
	}

	out := make([]Row[T], 0, len(rows))
	for _, row := range rows {
		if global != "" && !matchesGlobal(row.Original, cols, global) {
			continue
		}
		ok := true
		for _, a := range actives {
			if !matchesFilter(a.col.value(row.Original), a.val) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, row)
		}
	}
	return out
}

func matchesGlobal[T any](d T, cols []*Column[T], needle string) bool {
	for _, c := range cols {
		if c.Accessor == nil || c.ID == SelectColumnID {
			continue
		}
		if strings.Contains(strings.ToLower(stringify(c.Accessor(d))), needle) {
			return true
		}
	}
	return false
}

func matchesFilter(v any, f FilterValue) bool {
	switch f.Kind {
	case FilterSelect:
		return strings.EqualFold(stringify(v), f.Scalar)
	case FilterMultiSelect:
		s := stringify(v)
		for _, want := range f.List {
			if strings.EqualFold(s, want) {
				return true
			}
		}
		return false
	case FilterDateRange:
		t, ok := asTime(v)
		if !ok {
			return false
		}
		day := truncateDay(t)
		if f.Range.From != nil && day.Before(truncateDay(*f.Range.From)) {
			return false
		}
		if f.Range.To != nil && day.After(truncateDay(*f.Range.To)) {
			return false
		}
		return true
	default:
		return strings.Contains(strings.ToLower(stringify(v)), strings.ToLower(strings.TrimSpace(f.Scalar)))
	}
}

// sortRows returns a stably sorted copy of rows. Only the first sort entry
// with a sortable column is used.
func sortRows[T any](rows []Row[T], cols []*Column[T], sorting []Sort) []Row[T] {
	if len(sorting) == 0 {
		return rows
	}
	s := sorting[0]
	col := findColumn(cols, s.ID)
	if col == nil || col.Accessor == nil {
		return rows
	}

	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b Row[T]) int {
		c := compareValues(col.value(a.Original), col.value(b.Original))
		if s.Desc {
			return -c
		}
		return c
	})
	return out
}

// paginateRows returns the slice of rows for the page cursor.
func paginateRows[T any](rows []Row[T], p PaginationState) []Row[T] {
	size := p.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	start := p.PageIndex * size
	if start < 0 || start >= len(rows) {
		return []Row[T]{}
	}
	end := min(start+size, len(rows))
	return rows[start:end]
}

// compareValues orders two accessor values. Values of different kinds fall
// back to string comparison.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}

	return strings.Compare(strings.ToLower(stringify(a)), strings.ToLower(stringify(b)))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		if len(t) >= len(dayLayout) {
			if parsed, err := time.Parse(dayLayout, t[:len(dayLayout)]); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// stringify renders an accessor value as plain text.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(dayLayout)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func findColumn[T any](cols []*Column[T], id string) *Column[T] {
	for _, c := range cols {
		if c.ID == id {
			return c
		}
	}
	return nil
}
