package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/datatable/internal/core"
	"github.com/JonMunkholm/datatable/internal/datatable"
)

// ErrSessionNotFound is returned for an unknown or expired table session ID.
var ErrSessionNotFound = errors.New("table session not found")

// downloadTTL is how long a finished export waits to be fetched.
const downloadTTL = 10 * time.Minute

// Download is a finished export waiting to be fetched by the browser.
type Download struct {
	ID          string
	Name        string
	ContentType string
	Data        []byte
	Created     time.Time
}

// usersSession is the server side of one users table in one browser tab.
// The table owns view state; the session owns the host query the table's
// callbacks drive, plus the listeners waiting for refresh pushes.
type usersSession struct {
	id    string
	table *datatable.Table[core.User]

	// list loads a page for the current query; timeout bounds loads made
	// from debounce timers, which have no request context.
	list    func(ctx context.Context, q core.UserQuery) (*core.UserPage, error)
	timeout time.Duration

	// loadMu serializes reloads from the request path and the debounce timers.
	loadMu sync.Mutex

	mu        sync.Mutex
	query     core.UserQuery
	loadErr   error
	downloads map[string]*Download
	lastUsed  time.Time

	listenerMu sync.Mutex
	listeners  []chan struct{}
	closed     bool
}

func (s *usersSession) Query() core.UserQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *usersSession) updateQuery(fn func(q *core.UserQuery)) {
	s.mu.Lock()
	fn(&s.query)
	s.mu.Unlock()
}

func (s *usersSession) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// parkDownload keeps a finished export under its ID until it is fetched.
// Exports left unfetched past downloadTTL are dropped.
func (s *usersSession) parkDownload(d *Download) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.downloads == nil {
		s.downloads = make(map[string]*Download)
	}
	for id, old := range s.downloads {
		if d.Created.Sub(old.Created) > downloadTTL {
			delete(s.downloads, id)
		}
	}
	s.downloads[d.ID] = d
}

// Download returns the parked export with the given ID, if any.
func (s *usersSession) Download(id string) *Download {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downloads[id]
}

// takeDownload removes and returns the parked export, so each export is
// served once.
func (s *usersSession) takeDownload(id string) *Download {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.downloads[id]
	delete(s.downloads, id)
	return d
}

// Downloads returns the number of parked exports.
func (s *usersSession) Downloads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.downloads)
}

func (s *usersSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *usersSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Subscribe registers for refresh notifications. The returned cancel
// function must be called when the listener goes away.
func (s *usersSession) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.listenerMu.Lock()
	if s.closed {
		close(ch)
		s.listenerMu.Unlock()
		return ch, func() {}
	}
	s.listeners = append(s.listeners, ch)
	s.listenerMu.Unlock()

	cancel := func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		for i, l := range s.listeners {
			if l == ch {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// notify tells every listener the table has new data. A listener that
// already has a refresh queued is skipped.
func (s *usersSession) notify() {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	for _, ch := range s.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// close stops pending syncs and ends every listener.
func (s *usersSession) close() {
	s.table.Close()

	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, ch := range s.listeners {
		close(ch)
	}
	s.listeners = nil
}

// sessionRegistry holds live table sessions and expires idle ones.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*usersSession
	ttl      time.Duration
	now      func() time.Time
}

func newSessionRegistry(ttl time.Duration) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*usersSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *sessionRegistry) add(s *usersSession) {
	s.touch(r.now())

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
}

// get returns the session and marks it used.
func (r *sessionRegistry) get(id string) (*usersSession, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.touch(r.now())
	return s, nil
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.close()
	}
}

func (r *sessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions idle longer than the TTL. It matches
// core.SweepFunc.
func (r *sessionRegistry) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*usersSession
	for id, s := range r.sessions {
		if err := ctx.Err(); err != nil {
			r.mu.Unlock()
			return 0, err
		}
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.close()
		slog.Debug("table session expired", "session", s.id)
	}
	return len(expired), nil
}

// closeAll ends every session, used on shutdown.
func (r *sessionRegistry) closeAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*usersSession)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
