package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datatable/internal/core"
	"github.com/JonMunkholm/datatable/internal/datatable"
)

func TestExportClient_Fetch(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte("ID,Name\n"))
	}))
	defer ts.Close()

	c := NewExportClient(ts.URL+"/", "k1", time.Second)
	q := core.UserQuery{Page: 4, PerPage: 20, Search: "doe", Role: "admin"}

	data, err := c.Fetch(context.Background(), datatable.ExportPDF, q)
	require.NoError(t, err)
	assert.Equal(t, "ID,Name\n", string(data))

	require.NotNil(t, got)
	assert.Equal(t, "/api/users/export", got.URL.Path)
	assert.Equal(t, "pdf", got.URL.Query().Get("type"))
	assert.Equal(t, "doe", got.URL.Query().Get("search"))
	assert.Equal(t, "admin", got.URL.Query().Get("role"))
	assert.Empty(t, got.URL.Query().Get("page"), "exports ignore paging")
	assert.Empty(t, got.URL.Query().Get("per_page"))
	assert.Equal(t, "k1", got.Header.Get("X-API-Key"))
}

func TestExportClient_FetchError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer ts.Close()

	c := NewExportClient(ts.URL, "", time.Second)
	_, err := c.Fetch(context.Background(), datatable.ExportCSV, core.UserQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
