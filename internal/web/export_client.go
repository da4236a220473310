package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/datatable/internal/core"
	"github.com/JonMunkholm/datatable/internal/datatable"
)

// maxDownloadBytes bounds an export body held in memory for download.
const maxDownloadBytes = 64 << 20

// ExportClient calls the export endpoint on behalf of a table session, the
// way a browser would: a GET with the format in "type".
type ExportClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewExportClient creates a client for the export API at baseURL. apiKey
// may be empty when the API does not require one.
func NewExportClient(baseURL, apiKey string, timeout time.Duration) *ExportClient {
	return &ExportClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// URL is the export request for format over the rows q selects. Paging is
// dropped; an export covers every matching row.
func (c *ExportClient) URL(format datatable.ExportFormat, q core.UserQuery) string {
	q.Page, q.PerPage = 0, 0
	v := q.Values()
	v.Set("type", string(format))
	return c.baseURL + "/api/users/export?" + v.Encode()
}

// Fetch downloads the export body.
func (c *ExportClient) Fetch(ctx context.Context, format datatable.ExportFormat, q core.UserQuery) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(format, q), nil)
	if err != nil {
		return nil, fmt.Errorf("build export request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("export request: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("read export: %w", core.ErrExportTooLarge)
	}
	return data, nil
}
