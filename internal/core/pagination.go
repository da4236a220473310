package core

import (
	"strconv"

	"github.com/JonMunkholm/datatable/internal/datatable"
)

// onEachSide is the number of page links shown around the current page
// once the link list is windowed.
const onEachSide = 3

// NewPagination builds a Laravel-style page descriptor for total matching
// rows. The query's page is clamped to [1, last_page]; page URLs are path
// plus the query re-encoded at that page.
func NewPagination(total int, q UserQuery, path string) datatable.Pagination {
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	lastPage := max(1, (total+perPage-1)/perPage)
	current := min(max(q.Page, 1), lastPage)
	q.PerPage = perPage

	pageURL := func(n int) string {
		return path + "?" + q.WithPage(n).Encode()
	}

	p := datatable.Pagination{
		CurrentPage:  current,
		FirstPageURL: pageURL(1),
		LastPage:     lastPage,
		LastPageURL:  pageURL(lastPage),
		Path:         path,
		PerPage:      perPage,
		Total:        total,
	}
	if total > 0 {
		p.From = (current-1)*perPage + 1
		p.To = min(current*perPage, total)
	}
	if current > 1 {
		u := pageURL(current - 1)
		p.PrevPageURL = &u
	}
	if current < lastPage {
		u := pageURL(current + 1)
		p.NextPageURL = &u
	}

	p.Links = append(p.Links, datatable.PageLink{URL: p.PrevPageURL, Label: datatable.PrevLinkLabel})
	for _, n := range linkWindow(current, lastPage) {
		if n == 0 {
			p.Links = append(p.Links, datatable.PageLink{Label: "..."})
			continue
		}
		u := pageURL(n)
		p.Links = append(p.Links, datatable.PageLink{URL: &u, Label: strconv.Itoa(n), Active: n == current})
	}
	p.Links = append(p.Links, datatable.PageLink{URL: p.NextPageURL, Label: datatable.NextLinkLabel})
	return p
}

// linkWindow returns the page numbers to link, with 0 marking a gap.
func linkWindow(current, last int) []int {
	window := onEachSide + 4
	switch {
	case last < onEachSide*2+8:
		return pageRange(1, last)
	case current <= window:
		return join(pageRange(1, window+onEachSide), pageRange(last-1, last))
	case current > last-window:
		return join(pageRange(1, 2), pageRange(last-(window+onEachSide-1), last))
	default:
		return join(pageRange(1, 2), pageRange(current-onEachSide, current+onEachSide), pageRange(last-1, last))
	}
}

func pageRange(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, n)
	}
	return out
}

// join concatenates ranges with a gap marker between them.
func join(ranges ...[]int) []int {
	var out []int
	for i, r := range ranges {
		if i > 0 {
			out = append(out, 0)
		}
		out = append(out, r...)
	}
	return out
}
