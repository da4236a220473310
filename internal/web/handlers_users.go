package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/datatable/internal/core"
	"github.com/JonMunkholm/datatable/internal/datatable"
	"github.com/JonMunkholm/datatable/internal/logging"
	"github.com/JonMunkholm/datatable/internal/web/templates"
)

// usersTableID is the DOM id of the users table root.
const usersTableID = "users-table"

// streamKeepAlive is how often an idle event stream sends a comment line.
const streamKeepAlive = 15 * time.Second

func tableURL(sessionID string) string {
	return usersPath + "/table/" + sessionID
}

func downloadURL(sessionID, downloadID string) string {
	return tableURL(sessionID) + "/download/" + downloadID
}

func deleteURL(userID int64, sessionID string) string {
	return usersPath + "/" + strconv.FormatInt(userID, 10) + "?session=" + sessionID
}

// handleUsersPage renders the users page with a fresh table session built
// from the URL query.
func (s *Server) handleUsersPage(w http.ResponseWriter, r *http.Request) {
	q, err := core.ParseUserQuery(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get(core.ParamPerPage) == "" && s.cfg.Table.PageSize > 0 {
		q.PerPage = min(s.cfg.Table.PageSize, core.MaxPerPage)
	}

	sess, err := s.newUsersSession(r.Context(), q, stateFromQuery(q))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	body := templates.UsersPage(templates.UsersPageProps{
		StreamURL: tableURL(sess.id) + "/stream",
		Table:     s.usersTable(r, sess),
	})
	s.render(w, r, templates.Page("Users", body))
}

// handleUsersTable re-renders the table fragment, typically after a
// refresh push.
func (s *Server) handleUsersTable(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	s.renderTable(w, r, sess)
}

// handleUsersTableEvent applies one posted table event and answers with the
// re-rendered table. An expired session is rebuilt from the posted state
// token when there is one.
func (s *Server) handleUsersTableEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", datatable.ErrInvalidEvent, err), http.StatusBadRequest)
		return
	}

	sess, err := s.sessions.get(chi.URLParam(r, "sessionID"))
	if errors.Is(err, ErrSessionNotFound) && r.PostForm.Get("state") != "" {
		sess, err = s.restoreSession(r, r.PostForm.Get("state"))
	}
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if r.PostForm.Get("event") == datatable.EventExport {
		s.exportEvent(w, r, sess)
		return
	}

	if err := sess.table.ApplyEvent(r.PostForm); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.renderTable(w, r, sess)
}

// restoreSession starts a new session from a signed state token.
func (s *Server) restoreSession(r *http.Request, token string) (*usersSession, error) {
	st, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	q, err := queryFromState(st)
	if err != nil {
		return nil, err
	}

	sess, err := s.newUsersSession(r.Context(), q, st)
	if err != nil {
		return nil, err
	}
	logging.FromContext(r.Context()).Info("table session restored",
		"expired", chi.URLParam(r, "sessionID"),
		"session", sess.id,
	)
	return sess, nil
}

// exportEvent runs an export for the session. A finished export sends the
// browser to its own download; a failed one leaves the table as it was.
// Each export parks under a fresh ID, so overlapping exports never see each
// other's file.
func (s *Server) exportEvent(w http.ResponseWriter, r *http.Request, sess *usersSession) {
	format, err := datatable.ParseExportFormat(r.PostForm.Get("format"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	ctx := withDownloadID(WithRequestMetadata(r.Context(), r), id)
	if err := sess.table.Export(ctx, format); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if sess.Download(id) == nil {
		s.renderTable(w, r, sess)
		return
	}
	w.Header().Set("HX-Redirect", downloadURL(sess.id, id))
	w.WriteHeader(http.StatusOK)
}

// handleUsersDownload hands a finished export to the browser once.
func (s *Server) handleUsersDownload(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	d := sess.takeDownload(chi.URLParam(r, "downloadID"))
	if d == nil {
		s.respondError(w, r, errors.New("no export to download"), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, d.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
	w.Write(d.Data)
}

// handleUsersStream pushes a refresh event whenever a debounced search or
// filter change has reloaded the session's data.
func (s *Server) handleUsersStream(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, r, errors.New("streaming not supported"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates, cancel := sess.Subscribe()
	defer cancel()

	ping := time.NewTicker(streamKeepAlive)
	defer ping.Stop()

	for {
		select {
		case _, ok := <-updates:
			if !ok {
				// Session expired or server shutting down
				fmt.Fprint(w, "event: close\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			fmt.Fprint(w, "event: refresh\ndata: {}\n\n")
			flusher.Flush()

		case <-ping.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// handleDeleteUser deletes a user. With a session parameter the answer is
// that session's reloaded table; otherwise htmx is told to refresh.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	if err := s.service.DeleteUser(WithRequestMetadata(r.Context(), r), id); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if sid := r.URL.Query().Get("session"); sid != "" {
		if sess, err := s.sessions.get(sid); err == nil {
			if err := sess.reload(r.Context()); err != nil {
				s.respondError(w, r, err, statusFor(err))
				return
			}
			s.renderTable(w, r, sess)
			return
		}
	}

	if isHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
	}
	w.WriteHeader(http.StatusNoContent)
}

// usersResponse is the JSON list shape: the rows under "data" next to the
// page descriptor fields.
type usersResponse struct {
	Data []core.User `json:"data"`
	datatable.Pagination
}

// handleListUsers serves a page of users as JSON.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q, err := core.ParseUserQuery(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	page, err := s.service.ListUsers(r.Context(), q, r.URL.Path)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, usersResponse{Data: page.Users, Pagination: page.Pagination})
}

// usersTable renders the session's table with its endpoints and slots.
func (s *Server) usersTable(r *http.Request, sess *usersSession) templ.Component {
	view := sess.table.Snapshot()

	token, err := s.codec.Encode(view.State)
	if err != nil {
		logging.FromContext(r.Context()).Warn("encode table state", "session", sess.id, "error", err)
	}

	return datatable.DataTable(&view, datatable.Props[core.User]{
		ID:         usersTableID,
		EventsURL:  tableURL(sess.id) + "/events",
		RefreshURL: tableURL(sess.id),
		StateToken: token,
		Loading:    view.SyncPending,
		Error:      sess.LoadErr(),
		RowActions: func(row datatable.Row[core.User]) templ.Component {
			return templates.UserRowActions(row.Original.ID, deleteURL(row.Original.ID, sess.id))
		},
		Toolbar: templates.UsersToolbar,
		ErrorState: func(err error) templ.Component {
			msg := core.MapError(err)
			return templates.ErrorAlert(msg.Message, msg.Action, msg.Code)
		},
	})
}

// renderTable answers with the table fragment and keeps the address bar in
// step with the session query.
func (s *Server) renderTable(w http.ResponseWriter, r *http.Request, sess *usersSession) {
	w.Header().Set("HX-Push-Url", usersPath+"?"+sess.Query().Encode())
	s.render(w, r, s.usersTable(r, sess))
}
