package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/datatable/internal/schema"
)

// PostgresStore reads users from PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a store backed by pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Bootstrap creates the users table and seeds it with users when empty.
func (s *PostgresStore) Bootstrap(ctx context.Context, seed []User) error {
	if _, err := s.pool.Exec(ctx, schema.UsersDDL); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+quoteIdentifier(schema.UsersTable)).Scan(&n); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 || len(seed) == 0 {
		return nil
	}

	rows := make([][]any, len(seed))
	for i, u := range seed {
		rows[i] = []any{u.Name, u.Email, u.Role, u.CreatedAt, u.Status}
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{schema.UsersTable},
		[]string{"name", "email", "role", "created_at", "status"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	return nil
}

func (s *PostgresStore) where(q UserQuery) *WhereBuilder {
	wb := NewWhereBuilder()
	wb.AddSearch(q.Search, schema.SearchColumns(schema.UserFields)...)
	wb.Add("role", q.Role)
	wb.AddIn("status", q.Statuses)
	wb.AddDateRange("created_at", q.CreatedFrom, q.CreatedTo)
	return wb
}

// orderBy builds a whitelisted ORDER BY clause with id as tiebreaker.
func orderBy(q UserQuery) string {
	col, dir := "id", "ASC"
	if q.Sort != nil {
		if f, ok := schema.Lookup(schema.UserFields, q.Sort.Column); ok && f.Sortable {
			col = f.DBColumn
			if q.Sort.Desc {
				dir = "DESC"
			}
		}
	}
	if col == "id" {
		return fmt.Sprintf(" ORDER BY %s %s", quoteIdentifier(col), dir)
	}
	return fmt.Sprintf(" ORDER BY %s %s, %s ASC", quoteIdentifier(col), dir, quoteIdentifier("id"))
}

func selectColumns() string {
	cols := schema.DBColumns(schema.UserFields)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

// scanUser reads a row selected with selectColumns.
func scanUser(row pgx.CollectableRow) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt, &u.Status)
	return u, err
}

func (s *PostgresStore) List(ctx context.Context, q UserQuery) ([]User, int, error) {
	whereClause, args := s.where(q).Build()
	table := quoteIdentifier(schema.UsersTable)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	argIndex := len(args) + 1
	query := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT $%d OFFSET $%d",
		selectColumns(), table, whereClause, orderBy(q), argIndex, argIndex+1)
	args = append(args, q.PerPage, q.Offset())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, 0, fmt.Errorf("read users: %w", err)
	}
	return users, total, nil
}

func (s *PostgresStore) Stream(ctx context.Context, q UserQuery, fn func(User) error) error {
	whereClause, args := s.where(q).Build()
	query := fmt.Sprintf("SELECT %s FROM %s%s%s",
		selectColumns(), quoteIdentifier(schema.UsersTable), whereClause, orderBy(q))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return fmt.Errorf("read user: %w", err)
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM "+quoteIdentifier(schema.UsersTable)+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete user %d: %w", id, ErrUserNotFound)
	}
	return nil
}
