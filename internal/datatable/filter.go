package datatable

import (
	"context"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// rangeLabelLayout formats date-range bounds in the filter label.
const rangeLabelLayout = "01/02/2006"

// Filter renders the control matching a column's filter kind. A column
// without a filter descriptor, or with an unknown kind, renders nothing.
func Filter[T any](v *View[T], p Props[T], c *Column[T]) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if c == nil || c.Filter == nil {
			return nil
		}
		h := newHTMLWriter(ctx, w)
		value := v.FilterValue(c)

		switch c.Filter.Kind {
		case FilterSelect:
			renderSelectFilter(h, p.EventsURL, c.ID, c.Filter.Options, value.Scalar)
		case FilterMultiSelect:
			renderMultiSelectFilter(h, p.EventsURL, c.ID, c.Filter.Options, value.List)
		case FilterDateRange:
			renderDateRangeFilter(h, p.EventsURL, c.ID, value.Range)
		case FilterText:
			renderTextFilter(h, p.EventsURL, c.ID, value.Scalar)
		}
		return h.err
	})
}

func renderSelectFilter(h *htmlWriter, url, id string, opts []FilterOption, current string) {
	h.raw(`<select class="dt-filter dt-filter-select" name="value" hx-trigger="change"`)
	h.attr("aria-label", "Filter "+id)
	h.post(url, eventVals("filter", "column", id))
	h.raw(`>`)

	h.raw(`<option value=""`)
	h.flag("selected", current == "")
	h.raw(`>All</option>`)
	for _, o := range opts {
		h.raw(`<option`)
		h.attr("value", o.Value)
		h.flag("selected", current != "" && o.Value == current)
		h.raw(`>`)
		h.text(o.Label)
		h.raw(`</option>`)
	}
	h.raw(`</select>`)
}

// renderMultiSelectFilter renders a checkbox group inside its own form, so
// every checked option is submitted together. Unchecking all options
// submits no value, which clears the filter to an empty list.
func renderMultiSelectFilter(h *htmlWriter, url, id string, opts []FilterOption, current []string) {
	h.raw(`<form class="dt-filter dt-filter-multi" hx-trigger="change"`)
	h.post(url, eventVals("filter", "column", id))
	h.raw(`><fieldset><legend>`)
	h.text("Filter " + id)
	h.raw(`</legend>`)
	for _, o := range opts {
		h.raw(`<label><input type="checkbox" name="value"`)
		h.attr("value", o.Value)
		h.flag("checked", slices.Contains(current, o.Value))
		h.raw(`> `)
		h.text(o.Label)
		h.raw(`</label>`)
	}
	h.raw(`</fieldset></form>`)
}

func renderDateRangeFilter(h *htmlWriter, url, id string, r DateRange) {
	h.raw(`<form class="dt-filter dt-filter-date-range" hx-trigger="change"`)
	h.post(url, eventVals("filter", "column", id))
	h.raw(`><span class="dt-filter-label">`)
	h.text(DateRangeLabel(id, r))
	h.raw(`</span><input type="date" name="from" aria-label="From"`)
	h.attr("value", formatDay(r.From))
	h.raw(`><input type="date" name="to" aria-label="To"`)
	h.attr("value", formatDay(r.To))
	h.raw(`></form>`)
}

func renderTextFilter(h *htmlWriter, url, id, current string) {
	h.raw(`<input type="text" class="dt-filter dt-filter-text" name="value" hx-trigger="change"`)
	h.attr("placeholder", "Filter "+id)
	h.attr("value", current)
	h.post(url, eventVals("filter", "column", id))
	h.raw(`>`)
}

// DateRangeLabel renders "start – end", only the start when the range is
// open-ended, or a placeholder when unset.
func DateRangeLabel(columnID string, r DateRange) string {
	switch {
	case r.From == nil:
		return "Filter " + columnID
	case r.To == nil:
		return r.From.Format(rangeLabelLayout)
	default:
		return r.From.Format(rangeLabelLayout) + " – " + r.To.Format(rangeLabelLayout)
	}
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dayLayout)
}

// ParseMultiSelect splits a comma-joined selection. The empty string yields
// an empty, non-nil list.
func ParseMultiSelect(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseDay parses a YYYY-MM-DD bound. The empty string yields nil.
func ParseDay(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
