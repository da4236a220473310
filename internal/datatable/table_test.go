package datatable

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialPagination(t *testing.T) {
	tests := []struct {
		name string
		in   *Pagination
		want PaginationState
	}{
		{"nil descriptor", nil, PaginationState{PageIndex: 0, PageSize: 10}},
		{"first page", &Pagination{CurrentPage: 1, PerPage: 10, LastPage: 1}, PaginationState{PageIndex: 0, PageSize: 10}},
		{"third page", &Pagination{CurrentPage: 3, PerPage: 25}, PaginationState{PageIndex: 2, PageSize: 25}},
		{"missing per page", &Pagination{CurrentPage: 2}, PaginationState{PageIndex: 1, PageSize: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitialPagination(tt.in))
		})
	}
}

func TestPageCount(t *testing.T) {
	t.Run("delegated without last page is unknown", func(t *testing.T) {
		tbl := New(Options[person]{
			Data:       people(),
			Columns:    personColumns(),
			Pagination: &Pagination{CurrentPage: 1, PerPage: 10},
			Modes:      AllDelegated,
			Features:   DefaultFeatures(),
		})
		assert.Equal(t, UnknownPageCount, tbl.PageCount())
		assert.True(t, tbl.CanNextPage())
	})

	t.Run("delegated uses last page", func(t *testing.T) {
		tbl := New(Options[person]{
			Data:       people(),
			Columns:    personColumns(),
			Pagination: &Pagination{CurrentPage: 1, PerPage: 10, LastPage: 4},
			Modes:      AllDelegated,
			Features:   DefaultFeatures(),
		})
		assert.Equal(t, 4, tbl.PageCount())
	})

	t.Run("managed computes from rows", func(t *testing.T) {
		tbl := managedTable(people(), 2)
		assert.Equal(t, 3, tbl.PageCount())
		assert.Len(t, tbl.RowModel(), 2)

		tbl.LastPage()
		assert.Equal(t, []string{"5"}, rowIDs(tbl.RowModel()))
		assert.False(t, tbl.CanNextPage())
		assert.True(t, tbl.CanPreviousPage())
	})
}

func TestDelegatedModesSkipLocalComputation(t *testing.T) {
	tbl := New(Options[person]{
		Data:       people(),
		Columns:    personColumns(),
		Pagination: &Pagination{CurrentPage: 1, PerPage: 2, LastPage: 3},
		Modes:      AllDelegated,
		Features:   allFeatures(),
		GetRowID:   personID,
	})
	defer tbl.Close()

	tbl.SetGlobalFilter("zzz")
	tbl.ToggleSorting("name")

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, rowIDs(tbl.RowModel()))
}

func TestNotifications(t *testing.T) {
	var (
		mu    sync.Mutex
		pages []PaginationState
		sorts [][]Sort
	)
	tbl := New(Options[person]{
		Data:       people(),
		Columns:    personColumns(),
		Pagination: &Pagination{CurrentPage: 1, PerPage: 2, LastPage: 3},
		Modes:      Modes{Pagination: Delegated, Sorting: Delegated},
		Features:   allFeatures(),
		Callbacks: Callbacks{
			OnPaginationChange: func(p PaginationState) {
				mu.Lock()
				defer mu.Unlock()
				pages = append(pages, p)
			},
			OnSortingChange: func(s []Sort) {
				mu.Lock()
				defer mu.Unlock()
				sorts = append(sorts, s)
			},
		},
	})
	defer tbl.Close()

	assert.Empty(t, pages, "no notification on construction")

	tbl.NextPage()
	tbl.SetPageIndex(1)
	tbl.SetPageSize(20)
	tbl.ToggleSorting("name")
	tbl.ToggleSorting("name")
	tbl.ToggleSorting("name")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []PaginationState{{PageIndex: 1, PageSize: 2}, {PageIndex: 0, PageSize: 20}}, pages)
	assert.Equal(t, [][]Sort{{{ID: "name"}}, {{ID: "name", Desc: true}}, {}}, sorts)
}

func TestToggleSorting_IgnoresUnsortableColumns(t *testing.T) {
	tbl := managedTable(people(), 10)
	tbl.ToggleSorting(SelectColumnID)
	tbl.ToggleSorting("missing")
	assert.Empty(t, tbl.State().Sorting)
}

func TestManagedPaginationResetsOnFilterChange(t *testing.T) {
	var got []PaginationState
	tbl := New(Options[person]{
		Data:     people(),
		Columns:  personColumns(),
		Features: allFeatures(),
		GetRowID: personID,
		Callbacks: Callbacks{
			OnPaginationChange: func(p PaginationState) { got = append(got, p) },
		},
		Pagination: &Pagination{CurrentPage: 1, PerPage: 2},
	})
	defer tbl.Close()

	tbl.SetPageIndex(2)
	require.NoError(t, tbl.SetColumnFilter("role", SelectValue("admin")))

	assert.Equal(t, []PaginationState{{PageIndex: 2, PageSize: 2}, {PageIndex: 0, PageSize: 2}}, got)
	assert.Equal(t, []string{"1", "5"}, rowIDs(tbl.RowModel()))
}

func TestSearchNotification_OnlyLastValueOfBurst(t *testing.T) {
	rec := &recorder[string]{}
	tbl := New(Options[person]{
		Data:      people(),
		Columns:   personColumns(),
		Modes:     AllDelegated,
		Features:  allFeatures(),
		Callbacks: Callbacks{OnSearchChange: rec.record},
		Debounce:  20 * time.Millisecond,
	})
	defer tbl.Close()

	for _, v := range []string{"a", "al", "ali", "alic", "alice"} {
		tbl.SetGlobalFilter(v)
	}
	assert.True(t, tbl.SyncPending())

	assert.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"alice"}, rec.values())
	assert.False(t, tbl.SyncPending())
}

func TestSearchNotification_RequiresSearchFeature(t *testing.T) {
	rec := &recorder[string]{}
	features := allFeatures()
	features.Search = false
	tbl := New(Options[person]{
		Data:      people(),
		Columns:   personColumns(),
		Features:  features,
		Callbacks: Callbacks{OnSearchChange: rec.record},
		Debounce:  time.Millisecond,
	})
	defer tbl.Close()

	tbl.SetGlobalFilter("bob")
	tbl.FlushSync()

	assert.Empty(t, rec.values())
	assert.Empty(t, tbl.State().GlobalFilter)
}

func TestMultiSelectClearedToEmptyList(t *testing.T) {
	rec := &recorder[map[string]FilterValue]{}
	tbl := New(Options[person]{
		Data:      people(),
		Columns:   personColumns(),
		Features:  allFeatures(),
		GetRowID:  personID,
		Callbacks: Callbacks{OnFiltersChange: rec.record},
		Debounce:  time.Hour,
	})
	defer tbl.Close()

	require.NoError(t, tbl.SetColumnFilter("status", MultiValue([]string{"a", "b"})))
	require.NoError(t, tbl.SetColumnFilter("status", MultiValue(nil)))

	v, ok := tbl.ColumnFilterValue("status")
	require.True(t, ok, "cleared multi-select keeps its entry")
	assert.NotNil(t, v.List)
	assert.Empty(t, v.List)

	tbl.FlushSync()
	got := rec.values()
	require.Len(t, got, 1)
	require.Contains(t, got[0], "status")
	assert.NotNil(t, got[0]["status"].List)
	assert.Empty(t, got[0]["status"].List)

	assert.Len(t, tbl.RowModel(), 5, "empty list does not constrain rows")
}

func TestSetColumnFilter_EmptyScalarRemovesFilter(t *testing.T) {
	tbl := managedTable(people(), 10)
	defer tbl.Close()

	require.NoError(t, tbl.SetColumnFilter("role", SelectValue("user")))
	assert.Equal(t, []string{"2", "4"}, rowIDs(tbl.RowModel()))

	require.NoError(t, tbl.SetColumnFilter("role", SelectValue("")))
	_, ok := tbl.ColumnFilterValue("role")
	assert.False(t, ok)
	assert.Len(t, tbl.RowModel(), 5)
}

func TestSetColumnFilter_RejectsColumnWithoutAccessor(t *testing.T) {
	tbl := managedTable(people(), 10)
	defer tbl.Close()

	assert.Error(t, tbl.SetColumnFilter(SelectColumnID, TextValue("x")))
}

func TestToggleAllRowsSelected_Reversible(t *testing.T) {
	tbl := managedTable(people(), 2)

	tbl.ToggleAllRowsSelected(true)
	assert.True(t, tbl.IsAllRowsSelected())
	assert.False(t, tbl.IsSomeRowsSelected())
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		assert.True(t, tbl.IsRowSelected(id), "row %s", id)
	}

	tbl.ToggleAllRowsSelected(false)
	assert.False(t, tbl.IsAllRowsSelected())
	assert.Empty(t, tbl.SelectedRows())
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		assert.False(t, tbl.IsRowSelected(id), "row %s", id)
	}
}

func TestToggleRowSelected(t *testing.T) {
	tbl := managedTable(people(), 10)

	tbl.ToggleRowSelected("3", true)
	tbl.ToggleRowSelected("missing", true)
	assert.True(t, tbl.IsSomeRowsSelected())
	assert.Equal(t, []string{"3"}, rowIDs(tbl.SelectedRows()))

	tbl.ToggleRowSelected("3", false)
	assert.Empty(t, tbl.SelectedRows())
}

func TestColumnVisibility(t *testing.T) {
	tbl := managedTable(people(), 10)

	tbl.SetColumnVisibility("email", false)
	tbl.SetColumnVisibility(SelectColumnID, false)

	assert.False(t, tbl.IsColumnVisible("email"))
	assert.True(t, tbl.IsColumnVisible(SelectColumnID), "select column cannot be hidden")
	assert.Len(t, tbl.VisibleColumns(), 5)

	tbl.SetColumnVisibility("email", true)
	assert.Len(t, tbl.VisibleColumns(), 6)
}

func TestSetData_DelegatedCursorFollowsDescriptor(t *testing.T) {
	tbl := New(Options[person]{
		Data:       people()[:2],
		Columns:    personColumns(),
		Pagination: &Pagination{CurrentPage: 1, PerPage: 2, LastPage: 3},
		Modes:      AllDelegated,
		Features:   DefaultFeatures(),
	})

	tbl.SetData(people()[2:4], &Pagination{CurrentPage: 2, PerPage: 2, LastPage: 3})

	assert.Equal(t, PaginationState{PageIndex: 1, PageSize: 2}, tbl.State().Pagination)
	assert.Len(t, tbl.RowModel(), 2)
}

func TestRestoreState(t *testing.T) {
	tbl := managedTable(people(), 10)
	tbl.RestoreState(State{
		Sorting:    []Sort{{ID: "name", Desc: true}},
		Pagination: PaginationState{PageIndex: -3},
	})

	s := tbl.State()
	assert.Equal(t, PaginationState{PageIndex: 0, PageSize: DefaultPageSize}, s.Pagination)
	assert.NotNil(t, s.RowSelection)
	assert.Equal(t, "1", tbl.RowModel()[0].ID, "John Doe sorts first descending")
}

func TestExport(t *testing.T) {
	var (
		mu  sync.Mutex
		got []ExportFormat
	)
	tbl := New(Options[person]{
		Data:     people(),
		Columns:  personColumns(),
		Features: allFeatures(),
		Export: &ExportOptions{Type: ExportCSV, OnExport: func(_ context.Context, f ExportFormat) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, f)
			return nil
		}},
	})

	require.NoError(t, tbl.Export(context.Background(), ExportPDF))
	require.NoError(t, tbl.Export(context.Background(), ExportPDF))
	assert.Equal(t, []ExportFormat{ExportPDF, ExportPDF}, got)

	assert.ErrorIs(t, tbl.Export(context.Background(), "docx"), ErrUnsupportedFormat)
}

func TestExport_NotConfigured(t *testing.T) {
	tbl := managedTable(people(), 10)
	assert.ErrorIs(t, tbl.Export(context.Background(), ExportCSV), ErrExportDisabled)
}

func TestSetPageSize_DelegatedKeepsFirstVisibleRow(t *testing.T) {
	rec := &recorder[PaginationState]{}
	tbl := New(Options[person]{
		Data:       people(),
		Columns:    personColumns(),
		Pagination: &Pagination{CurrentPage: 3, PerPage: 10, LastPage: 3, Total: 25},
		Modes:      AllDelegated,
		Features:   allFeatures(),
		Callbacks:  Callbacks{OnPaginationChange: rec.record},
	})
	defer tbl.Close()

	// Rows 21-25 sit on page 5 of 5 at size 5.
	tbl.SetPageSize(5)
	assert.Equal(t, []PaginationState{{PageIndex: 4, PageSize: 5}}, rec.values())

	// Growing the page keeps row 21 on the first page.
	tbl.SetPageSize(50)
	assert.Equal(t, PaginationState{PageIndex: 0, PageSize: 50}, tbl.State().Pagination)
}
