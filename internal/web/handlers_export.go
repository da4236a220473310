package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/datatable/internal/core"
	"github.com/JonMunkholm/datatable/internal/datatable"
)

// handleExportUsers serves every user matching the query parameters as a
// file in the format named by "type". Paging parameters are ignored.
func (s *Server) handleExportUsers(w http.ResponseWriter, r *http.Request) {
	format, err := datatable.ParseExportFormat(r.URL.Query().Get("type"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	q, err := core.ParseUserQuery(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	// Buffered so a failed export can still answer with an error status.
	var buf bytes.Buffer
	if _, err := s.service.ExportUsers(WithRequestMetadata(r.Context(), r), format, q, &buf); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", core.ExportContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, core.ExportFileName(format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}
