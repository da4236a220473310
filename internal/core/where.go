package core

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder accumulates parameterized WHERE conditions for PostgreSQL.
// Empty values are skipped so callers can add optional filters unconditionally.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

func (wb *WhereBuilder) push(cond string, args ...any) {
	wb.conditions = append(wb.conditions, cond)
	wb.args = append(wb.args, args...)
	wb.argIndex += len(args)
}

// Add adds "col = value", compared case-insensitively.
func (wb *WhereBuilder) Add(col, value string) {
	if value == "" {
		return
	}
	wb.push(fmt.Sprintf("LOWER(%s) = LOWER($%d)", quoteIdentifier(col), wb.argIndex), value)
}

// AddIn adds "col IN (...)" over lower-cased values.
func (wb *WhereBuilder) AddIn(col string, values []string) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = fmt.Sprintf("$%d", wb.argIndex+i)
		args[i] = strings.ToLower(v)
	}
	wb.push(fmt.Sprintf("LOWER(%s) IN (%s)", quoteIdentifier(col), strings.Join(placeholders, ", ")), args...)
}

// AddSearch matches query as a substring of any of cols.
func (wb *WhereBuilder) AddSearch(query string, cols ...string) {
	query = strings.TrimSpace(query)
	if query == "" || len(cols) == 0 {
		return
	}
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", quoteIdentifier(c), wb.argIndex)
	}
	wb.push("("+strings.Join(parts, " OR ")+")", "%"+escapeLike(query)+"%")
}

// AddDateRange bounds col by inclusive days. Nil bounds are open.
func (wb *WhereBuilder) AddDateRange(col string, from, to *time.Time) {
	if from != nil {
		wb.push(fmt.Sprintf("%s >= $%d", quoteIdentifier(col), wb.argIndex), truncateDay(*from))
	}
	if to != nil {
		wb.push(fmt.Sprintf("%s < $%d", quoteIdentifier(col), wb.argIndex), truncateDay(*to).AddDate(0, 0, 1))
	}
}

// NextArgIndex is the placeholder number the next argument will take.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// Build returns " WHERE ..." and its arguments, or "" and nil when empty.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
