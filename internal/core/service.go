package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/datatable/internal/datatable"
)

// DefaultMaxExportRows caps an export when the service is built without a limit.
const DefaultMaxExportRows = 50000

// ErrExportTooLarge is returned when an export would exceed the row cap.
var ErrExportTooLarge = errors.New("export too large")

// Service provides the user listing, export and delete operations behind
// the users table.
type Service struct {
	store         UserStore
	maxExportRows int
	exports       *ExportLimiter
}

// NewService creates a Service over store. maxExportRows <= 0 selects
// DefaultMaxExportRows. Exports run under a default ExportLimiter until
// WithExportLimiter replaces it.
func NewService(store UserStore, maxExportRows int) *Service {
	if maxExportRows <= 0 {
		maxExportRows = DefaultMaxExportRows
	}
	return &Service{
		store:         store,
		maxExportRows: maxExportRows,
		exports:       NewExportLimiter(DefaultMaxConcurrentExports, DefaultExportWait),
	}
}

// WithExportLimiter sets the limiter exports run under and returns s.
func (s *Service) WithExportLimiter(l *ExportLimiter) *Service {
	if l != nil {
		s.exports = l
	}
	return s
}

// WaitForExports blocks until running exports finish or ctx ends.
func (s *Service) WaitForExports(ctx context.Context) error {
	return s.exports.WaitForDrain(ctx)
}

// UserPage is one page of users with its page descriptor.
type UserPage struct {
	Users      []User
	Pagination datatable.Pagination
	Query      UserQuery
}

// ListUsers loads the page selected by q. A page past the end is clamped to
// the last page and reloaded; Query reports the page actually served.
func (s *Service) ListUsers(ctx context.Context, q UserQuery, path string) (*UserPage, error) {
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	users, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	pagination := NewPagination(total, q, path)
	if pagination.CurrentPage != q.Page {
		q.Page = pagination.CurrentPage
		users, total, err = s.store.List(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		pagination = NewPagination(total, q, path)
	}

	if users == nil {
		users = []User{}
	}
	return &UserPage{Users: users, Pagination: pagination, Query: q}, nil
}

// ExportUsers writes every user matching q, ignoring paging, to w in the
// given format. Nothing is written to w when the export fails.
func (s *Service) ExportUsers(ctx context.Context, format datatable.ExportFormat, q UserQuery, w io.Writer) (int, error) {
	start := time.Now()

	ew, err := newExportWriter(format)
	if err != nil {
		return 0, err
	}

	if err := s.exports.Acquire(ctx); err != nil {
		return 0, fmt.Errorf("export users: %w", err)
	}
	defer s.exports.Release()

	count := 0
	err = s.store.Stream(ctx, q, func(u User) error {
		count++
		if count > s.maxExportRows {
			return fmt.Errorf("%w: more than %d rows", ErrExportTooLarge, s.maxExportRows)
		}
		return ew.write(u)
	})
	if err != nil {
		if c, ok := ew.(io.Closer); ok {
			c.Close()
		}
		return 0, fmt.Errorf("export users: %w", err)
	}

	if err := ew.close(w); err != nil {
		return 0, fmt.Errorf("export users: %w", err)
	}

	slog.Info("users exported",
		"format", format,
		"rows", count,
		"query", q.Encode(),
		"ip", GetIPAddressFromContext(ctx),
		"user_agent", GetUserAgentFromContext(ctx),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return count, nil
}

// DeleteUser removes one user.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("user deleted",
		"user_id", id,
		"ip", GetIPAddressFromContext(ctx),
		"user_agent", GetUserAgentFromContext(ctx),
	)
	return nil
}
