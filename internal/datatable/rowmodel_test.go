package datatable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilterRows(t *testing.T) {
	cols := make([]*Column[person], 0)
	for _, c := range personColumns() {
		c := c
		cols = append(cols, &c)
	}
	rows := coreRows(people(), personID)
	from, to := day("2024-01-02"), day("2024-01-04")

	tests := []struct {
		name    string
		global  string
		filters []ColumnFilter
		want    []string
	}{
		{"no filters", "", nil, []string{"1", "2", "3", "4", "5"}},
		{"global is case insensitive", "JOHN", nil, []string{"1", "3"}},
		{"global matches email", "alice@", nil, []string{"4"}},
		{"select", "", []ColumnFilter{{ID: "role", Value: SelectValue("Admin")}}, []string{"1", "5"}},
		{"multi select", "", []ColumnFilter{{ID: "status", Value: MultiValue([]string{"inactive", "pending"})}}, []string{"3", "4"}},
		{"empty multi select", "", []ColumnFilter{{ID: "status", Value: MultiValue(nil)}}, []string{"1", "2", "3", "4", "5"}},
		{"date range inclusive", "", []ColumnFilter{{ID: "createdAt", Value: RangeValue(&from, &to)}}, []string{"2", "3", "4"}},
		{"date range open end", "", []ColumnFilter{{ID: "createdAt", Value: RangeValue(&to, nil)}}, []string{"4", "5"}},
		{"text", "", []ColumnFilter{{ID: "email", Value: TextValue("an")}}, []string{"2"}},
		{"combined", "o", []ColumnFilter{{ID: "role", Value: SelectValue("admin")}}, []string{"1", "5"}},
		{"unknown column ignored", "", []ColumnFilter{{ID: "nope", Value: TextValue("x")}}, []string{"1", "2", "3", "4", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rowIDs(filterRows(rows, cols, tt.global, tt.filters)))
		})
	}
}

func TestSortRows(t *testing.T) {
	cols := []*Column[person]{
		{ID: "name", Accessor: func(p person) any { return p.Name }},
		{ID: "id", Accessor: func(p person) any { return p.ID }},
		{ID: "createdAt", Accessor: func(p person) any { return p.CreatedAt }},
		{ID: "role", Accessor: func(p person) any { return p.Role }},
	}
	rows := coreRows(people(), personID)

	assert.Equal(t, []string{"4", "3", "5", "2", "1"}, rowIDs(sortRows(rows, cols, []Sort{{ID: "name"}})))
	assert.Equal(t, []string{"5", "4", "3", "2", "1"}, rowIDs(sortRows(rows, cols, []Sort{{ID: "id", Desc: true}})))
	assert.Equal(t, []string{"5", "4", "3", "2", "1"}, rowIDs(sortRows(rows, cols, []Sort{{ID: "createdAt", Desc: true}})))
	assert.Equal(t, []string{"1", "5", "3", "2", "4"}, rowIDs(sortRows(rows, cols, []Sort{{ID: "role"}})), "stable within equal keys")
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, rowIDs(sortRows(rows, cols, nil)))
}

func TestPaginateRows(t *testing.T) {
	rows := coreRows(people(), personID)

	assert.Equal(t, []string{"3", "4"}, rowIDs(paginateRows(rows, PaginationState{PageIndex: 1, PageSize: 2})))
	assert.Equal(t, []string{"5"}, rowIDs(paginateRows(rows, PaginationState{PageIndex: 2, PageSize: 2})))
	assert.Empty(t, paginateRows(rows, PaginationState{PageIndex: 9, PageSize: 2}))
}

func TestCompareValues(t *testing.T) {
	now := time.Now()
	tests := []struct {
		a, b any
		want int
	}{
		{nil, "a", -1},
		{"a", nil, 1},
		{nil, nil, 0},
		{2, 10, -1},
		{int64(3), 2.5, 1},
		{now, now.Add(time.Hour), -1},
		{false, true, -1},
		{"apple", "Banana", -1},
		{"b", "B", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compareValues(tt.a, tt.b), "compare(%v, %v)", tt.a, tt.b)
	}
}

func TestAsTime(t *testing.T) {
	got, ok := asTime("2024-01-03T10:00:00Z")
	assert.True(t, ok)
	assert.Equal(t, day("2024-01-03"), got)

	_, ok = asTime("not a date")
	assert.False(t, ok)

	var nilTime *time.Time
	_, ok = asTime(nilTime)
	assert.False(t, ok)
}
