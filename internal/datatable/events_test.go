package datatable

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEvent(t *testing.T) {
	tbl := managedTable(people(), 2)
	defer tbl.Close()

	apply := func(kv ...string) error {
		form := url.Values{}
		for i := 0; i+1 < len(kv); i += 2 {
			form.Add(kv[i], kv[i+1])
		}
		return tbl.ApplyEvent(form)
	}

	require.NoError(t, apply("event", EventNext))
	assert.Equal(t, 1, tbl.State().Pagination.PageIndex)

	require.NoError(t, apply("event", EventLast))
	assert.Equal(t, 2, tbl.State().Pagination.PageIndex)

	require.NoError(t, apply("event", EventPage, "value", "0"))
	assert.Equal(t, 0, tbl.State().Pagination.PageIndex)

	require.NoError(t, apply("event", EventPageSize, "value", "20"))
	assert.Equal(t, 20, tbl.State().Pagination.PageSize)

	require.NoError(t, apply("event", EventSort, "column", "name"))
	assert.Equal(t, []Sort{{ID: "name"}}, tbl.State().Sorting)

	require.NoError(t, apply("event", EventSearch, "value", "john"))
	assert.Equal(t, "john", tbl.State().GlobalFilter)

	require.NoError(t, apply("event", EventFilter, "column", "status", "value", "active", "value", "pending"))
	v, ok := tbl.ColumnFilterValue("status")
	require.True(t, ok)
	assert.Equal(t, []string{"active", "pending"}, v.List)

	require.NoError(t, apply("event", EventFilter, "column", "status"))
	v, _ = tbl.ColumnFilterValue("status")
	assert.Equal(t, []string{}, v.List)

	require.NoError(t, apply("event", EventFilter, "column", "createdAt", "from", "2024-01-02", "to", ""))
	v, _ = tbl.ColumnFilterValue("createdAt")
	require.NotNil(t, v.Range.From)
	assert.Nil(t, v.Range.To)

	require.NoError(t, apply("event", EventSelectRow, "row", "4", "selected", "true"))
	assert.True(t, tbl.IsRowSelected("4"))

	require.NoError(t, apply("event", EventSelectAll, "selected", "true"))
	assert.True(t, tbl.IsAllRowsSelected())

	require.NoError(t, apply("event", EventColumnVisibility, "column", "email", "visible", "false"))
	assert.False(t, tbl.IsColumnVisible("email"))
}

func TestApplyEvent_Errors(t *testing.T) {
	tbl := managedTable(people(), 10)
	defer tbl.Close()

	tests := []struct {
		name string
		form url.Values
		want error
	}{
		{"unknown", url.Values{"event": {"explode"}}, ErrUnknownEvent},
		{"export is not applied", url.Values{"event": {EventExport}, "format": {"csv"}}, ErrUnknownEvent},
		{"bad page", url.Values{"event": {EventPage}, "value": {"two"}}, ErrInvalidEvent},
		{"zero page size", url.Values{"event": {EventPageSize}, "value": {"0"}}, ErrInvalidEvent},
		{"sort without column", url.Values{"event": {EventSort}}, ErrInvalidEvent},
		{"filter without descriptor", url.Values{"event": {EventFilter}, "column": {"name"}}, ErrInvalidEvent},
		{"bad date", url.Values{"event": {EventFilter}, "column": {"createdAt"}, "from": {"01/02/2024"}}, ErrInvalidEvent},
		{"bad bool", url.Values{"event": {EventSelectAll}, "selected": {"maybe"}}, ErrInvalidEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tbl.ApplyEvent(tt.form), tt.want)
		})
	}
}
