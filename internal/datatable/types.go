package datatable

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// SelectColumnID is the reserved column ID that renders row selection checkboxes.
const SelectColumnID = "select"

// UnknownPageCount is reported by PageCount when pagination is delegated and
// the host did not say how many pages exist.
const UnknownPageCount = -1

// DefaultPageSize is used when the host supplies no per-page value.
const DefaultPageSize = 10

// DefaultDebounce is the quiescence window for search and filter notifications.
const DefaultDebounce = 300 * time.Millisecond

// PageSizeOptions are the choices offered by the pagination footer.
var PageSizeOptions = []int{10, 20, 30, 40, 50}

var (
	// ErrUnknownEvent is returned by ApplyEvent for an unrecognized event name.
	ErrUnknownEvent = errors.New("unknown table event")

	// ErrUnsupportedFormat is returned by Export for a format outside csv/excel/pdf.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrExportDisabled is returned by Export when no export capability is configured.
	ErrExportDisabled = errors.New("export not configured")
)

// FilterKind selects the control rendered for a column filter.
type FilterKind string

const (
	FilterSelect      FilterKind = "select"
	FilterMultiSelect FilterKind = "multi-select"
	FilterDateRange   FilterKind = "date-range"
	FilterText        FilterKind = "text"
)

// FilterOption is one choice of a select or multi-select filter.
type FilterOption struct {
	Label string
	Value string
}

// FilterDescriptor declares how a column is filtered.
type FilterDescriptor struct {
	Kind    FilterKind
	Options []FilterOption
}

// DateRange is an inclusive pair of optional day bounds.
type DateRange struct {
	From *time.Time `msgpack:"f,omitempty"`
	To   *time.Time `msgpack:"t,omitempty"`
}

// FilterValue is a per-column filter value. Which field is meaningful
// depends on Kind: Scalar for select and text, List for multi-select,
// Range for date-range.
type FilterValue struct {
	Kind   FilterKind `msgpack:"k"`
	Scalar string     `msgpack:"s,omitempty"`
	List   []string   `msgpack:"l"`
	Range  DateRange  `msgpack:"r,omitempty"`
}

// SelectValue builds a single-choice filter value.
func SelectValue(v string) FilterValue {
	return FilterValue{Kind: FilterSelect, Scalar: v}
}

// TextValue builds a free-text filter value.
func TextValue(v string) FilterValue {
	return FilterValue{Kind: FilterText, Scalar: v}
}

// MultiValue builds a multi-choice filter value. A nil list becomes an
// empty, non-nil list so a cleared selection stays distinguishable from
// an absent filter.
func MultiValue(vs []string) FilterValue {
	list := make([]string, 0, len(vs))
	list = append(list, vs...)
	return FilterValue{Kind: FilterMultiSelect, List: list}
}

// RangeValue builds a date-range filter value.
func RangeValue(from, to *time.Time) FilterValue {
	return FilterValue{Kind: FilterDateRange, Range: DateRange{From: from, To: to}}
}

// IsEmpty reports whether the value places no constraint on rows.
func (v FilterValue) IsEmpty() bool {
	switch v.Kind {
	case FilterMultiSelect:
		return len(v.List) == 0
	case FilterDateRange:
		return v.Range.From == nil && v.Range.To == nil
	default:
		return strings.TrimSpace(v.Scalar) == ""
	}
}

// Row is one record of the core row model.
type Row[T any] struct {
	ID       string
	Index    int
	Original T
}

// HeaderContext is passed to a column's custom header renderer.
type HeaderContext[T any] struct {
	Column *Column[T]
	View   *View[T]
}

// CellContext is passed to a column's custom cell renderer.
type CellContext[T any] struct {
	Row    Row[T]
	Column *Column[T]
	Value  any
}

// Column declares one column of the table.
type Column[T any] struct {
	ID     string
	Header string

	// Accessor extracts the cell value. Columns without one cannot be
	// sorted, filtered or searched.
	Accessor func(T) any

	HeaderAs func(HeaderContext[T]) templ.Component
	Cell     func(CellContext[T]) templ.Component

	DisableSorting bool
	DisableHiding  bool
	Filter         *FilterDescriptor
}

// value returns the accessor value for a row, or nil without an accessor.
func (c *Column[T]) value(row T) any {
	if c.Accessor == nil {
		return nil
	}
	return c.Accessor(row)
}

// PageLink is one entry of the host's page-link list. URL is nil for
// disabled links.
type PageLink struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// Pagination is the host-provided page descriptor. Page numbers are
// one-based. LastPage is zero when the host does not know the page count.
type Pagination struct {
	CurrentPage  int        `json:"current_page"`
	FirstPageURL string     `json:"first_page_url"`
	From         int        `json:"from"`
	LastPage     int        `json:"last_page,omitempty"`
	LastPageURL  string     `json:"last_page_url"`
	Links        []PageLink `json:"links"`
	NextPageURL  *string    `json:"next_page_url"`
	Path         string     `json:"path"`
	PerPage      int        `json:"per_page"`
	PrevPageURL  *string    `json:"prev_page_url"`
	To           int        `json:"to"`
	Total        int        `json:"total"`
}

// PaginationState is the zero-based page cursor.
type PaginationState struct {
	PageIndex int `msgpack:"i"`
	PageSize  int `msgpack:"s"`
}

// Sort orders rows by one column. Only the first entry of a sort list is
// produced by the header toggles.
type Sort struct {
	ID   string `msgpack:"id"`
	Desc bool   `msgpack:"d"`
}

// ColumnFilter pairs a column ID with its filter value.
type ColumnFilter struct {
	ID    string      `msgpack:"id"`
	Value FilterValue `msgpack:"v"`
}

// State is the local view state owned by a table.
type State struct {
	RowSelection     map[string]bool `msgpack:"rs,omitempty"`
	ColumnVisibility map[string]bool `msgpack:"cv,omitempty"`
	ColumnFilters    []ColumnFilter  `msgpack:"cf,omitempty"`
	Sorting          []Sort          `msgpack:"so,omitempty"`
	GlobalFilter     string          `msgpack:"gf,omitempty"`
	Pagination       PaginationState `msgpack:"pg"`
}

// normalizeFilters restores the empty list of cleared multi-select values,
// which serialization may have turned into nil.
func normalizeFilters(filters []ColumnFilter) {
	for i := range filters {
		if filters[i].Value.Kind == FilterMultiSelect && filters[i].Value.List == nil {
			filters[i].Value.List = []string{}
		}
	}
}

func (s State) clone() State {
	out := State{
		RowSelection:     make(map[string]bool, len(s.RowSelection)),
		ColumnVisibility: make(map[string]bool, len(s.ColumnVisibility)),
		ColumnFilters:    make([]ColumnFilter, len(s.ColumnFilters)),
		Sorting:          make([]Sort, len(s.Sorting)),
		GlobalFilter:     s.GlobalFilter,
		Pagination:       s.Pagination,
	}
	for k, v := range s.RowSelection {
		out.RowSelection[k] = v
	}
	for k, v := range s.ColumnVisibility {
		out.ColumnVisibility[k] = v
	}
	copy(out.ColumnFilters, s.ColumnFilters)
	copy(out.Sorting, s.Sorting)
	return out
}

// Mode says who computes a concern: the table (Managed) or the host (Delegated).
type Mode int

const (
	Managed Mode = iota
	Delegated
)

func (m Mode) String() string {
	if m == Delegated {
		return "delegated"
	}
	return "managed"
}

// Modes holds the per-concern computation switch. Filtering covers both the
// global search and column filters.
type Modes struct {
	Pagination Mode
	Sorting    Mode
	Filtering  Mode
}

// AllDelegated is the mode set for a fully server-driven table.
var AllDelegated = Modes{Pagination: Delegated, Sorting: Delegated, Filtering: Delegated}

// Features are the feature-enable flags of the composite component.
type Features struct {
	RowSelection     bool
	ColumnVisibility bool
	Sorting          bool
	Filters          bool
	Search           bool
	Pagination       bool
	Export           bool
}

// DefaultFeatures enables sorting and pagination, the two features that are
// on unless turned off.
func DefaultFeatures() Features {
	return Features{Sorting: true, Pagination: true}
}

// Callbacks are the optional change notifications delivered to the host.
type Callbacks struct {
	OnPaginationChange func(PaginationState)
	OnSortingChange    func([]Sort)
	OnSearchChange     func(string)
	OnFiltersChange    func(map[string]FilterValue)
}

// ExportFormat names an export file type.
type ExportFormat string

const (
	ExportCSV   ExportFormat = "csv"
	ExportExcel ExportFormat = "excel"
	ExportPDF   ExportFormat = "pdf"
)

// ExportFormats lists the formats offered by the export menu, in order.
var ExportFormats = []ExportFormat{ExportCSV, ExportExcel, ExportPDF}

// Label is the menu text for the format.
func (f ExportFormat) Label() string {
	switch f {
	case ExportCSV:
		return "CSV"
	case ExportExcel:
		return "Excel"
	case ExportPDF:
		return "PDF"
	}
	return string(f)
}

// ParseExportFormat validates a format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	for _, f := range ExportFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", ErrUnsupportedFormat
}

// ExportFunc performs an export for the chosen format.
type ExportFunc func(ctx context.Context, format ExportFormat) error

// ExportOptions configures the export menu.
type ExportOptions struct {
	// Type is the host's preferred default format.
	Type     ExportFormat
	Filename string
	OnExport ExportFunc
}
