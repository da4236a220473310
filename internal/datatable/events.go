package datatable

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Event names posted by the rendered controls in the "event" field.
const (
	EventPage             = "page"
	EventPageSize         = "page_size"
	EventFirst            = "first"
	EventPrev             = "prev"
	EventNext             = "next"
	EventLast             = "last"
	EventSort             = "sort"
	EventSearch           = "search"
	EventFilter           = "filter"
	EventSelectRow        = "select_row"
	EventSelectAll        = "select_all"
	EventColumnVisibility = "column_visibility"
	EventExport           = "export"
)

// ErrInvalidEvent is returned when a known event carries malformed fields.
var ErrInvalidEvent = errors.New("invalid table event")

// ApplyEvent decodes a posted control event and applies it to the table.
// Export events are not applied here; the host runs them with Export so it
// can decide what to answer.
func (t *Table[T]) ApplyEvent(form url.Values) error {
	event := form.Get("event")

	switch event {
	case EventPage:
		n, err := intField(form, "value")
		if err != nil {
			return err
		}
		t.SetPageIndex(n)
	case EventPageSize:
		n, err := intField(form, "value")
		if err != nil {
			return err
		}
		if n <= 0 {
			return fmt.Errorf("%w: page size %d", ErrInvalidEvent, n)
		}
		t.SetPageSize(n)
	case EventFirst:
		t.FirstPage()
	case EventPrev:
		t.PreviousPage()
	case EventNext:
		t.NextPage()
	case EventLast:
		t.LastPage()
	case EventSort:
		col := form.Get("column")
		if col == "" {
			return fmt.Errorf("%w: sort without column", ErrInvalidEvent)
		}
		t.ToggleSorting(col)
	case EventSearch:
		t.SetGlobalFilter(form.Get("value"))
	case EventFilter:
		return t.applyFilterEvent(form)
	case EventSelectRow:
		sel, err := boolField(form, "selected")
		if err != nil {
			return err
		}
		t.ToggleRowSelected(form.Get("row"), sel)
	case EventSelectAll:
		sel, err := boolField(form, "selected")
		if err != nil {
			return err
		}
		t.ToggleAllRowsSelected(sel)
	case EventColumnVisibility:
		vis, err := boolField(form, "visible")
		if err != nil {
			return err
		}
		t.SetColumnVisibility(form.Get("column"), vis)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	return nil
}

func (t *Table[T]) applyFilterEvent(form url.Values) error {
	id := form.Get("column")
	col := findColumn(t.cols, id)
	if col == nil || col.Filter == nil {
		return fmt.Errorf("%w: column %q has no filter", ErrInvalidEvent, id)
	}

	var v FilterValue
	switch col.Filter.Kind {
	case FilterSelect:
		v = SelectValue(form.Get("value"))
	case FilterText:
		v = TextValue(form.Get("value"))
	case FilterMultiSelect:
		v = MultiValue(ParseMultiSelect(strings.Join(form["value"], ",")))
	case FilterDateRange:
		from, err := ParseDay(form.Get("from"))
		if err != nil {
			return fmt.Errorf("%w: from: %v", ErrInvalidEvent, err)
		}
		to, err := ParseDay(form.Get("to"))
		if err != nil {
			return fmt.Errorf("%w: to: %v", ErrInvalidEvent, err)
		}
		v = RangeValue(from, to)
	default:
		return fmt.Errorf("%w: filter kind %q", ErrInvalidEvent, col.Filter.Kind)
	}
	return t.SetColumnFilter(id, v)
}

func intField(form url.Values, key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(form.Get(key)))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidEvent, key, err)
	}
	return n, nil
}

func boolField(form url.Values, key string) (bool, error) {
	b, err := strconv.ParseBool(form.Get(key))
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrInvalidEvent, key, err)
	}
	return b, nil
}
