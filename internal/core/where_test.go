package core

import (
	"testing"
	"time"
)

// ============================================================================
// WhereBuilder Tests
// ============================================================================

func TestNewWhereBuilder(t *testing.T) {
	wb := NewWhereBuilder()

	if wb == nil {
		t.Fatal("NewWhereBuilder returned nil")
	}

	if wb.argIndex != 1 {
		t.Errorf("expected argIndex to be 1, got %d", wb.argIndex)
	}

	if len(wb.conditions) != 0 {
		t.Errorf("expected empty conditions, got %d", len(wb.conditions))
	}

	if len(wb.args) != 0 {
		t.Errorf("expected empty args, got %d", len(wb.args))
	}
}

func TestWhereBuilder_Build_Empty(t *testing.T) {
	wb := NewWhereBuilder()
	whereClause, args := wb.Build()

	if whereClause != "" {
		t.Errorf("expected empty string for no conditions, got %q", whereClause)
	}

	if args != nil {
		t.Errorf("expected nil args for no conditions, got %v", args)
	}
}

func TestWhereBuilder_Add_SingleCondition(t *testing.T) {
	wb := NewWhereBuilder()
	wb.Add("role", "Admin")

	whereClause, args := wb.Build()

	expectedClause := ` WHERE LOWER("role") = LOWER($1)`
	if whereClause != expectedClause {
		t.Errorf("expected %q, got %q", expectedClause, whereClause)
	}

	if len(args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(args))
	}

	if args[0] != "Admin" {
		t.Errorf("expected arg 'Admin', got %v", args[0])
	}
}

func TestWhereBuilder_Add_EmptyValue_Skipped(t *testing.T) {
	wb := NewWhereBuilder()
	wb.Add("role", "")

	whereClause, args := wb.Build()
	if whereClause != "" || args != nil {
		t.Errorf("expected empty clause, got %q %v", whereClause, args)
	}
	if wb.NextArgIndex() != 1 {
		t.Errorf("expected argIndex to stay 1, got %d", wb.NextArgIndex())
	}
}

func TestWhereBuilder_AddIn(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddIn("status", []string{"Active", "pending"})

	whereClause, args := wb.Build()

	expectedClause := ` WHERE LOWER("status") IN ($1, $2)`
	if whereClause != expectedClause {
		t.Errorf("expected %q, got %q", expectedClause, whereClause)
	}
	if len(args) != 2 || args[0] != "active" || args[1] != "pending" {
		t.Errorf("unexpected args %v", args)
	}
}

func TestWhereBuilder_AddIn_Empty_Skipped(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddIn("status", nil)

	if whereClause, _ := wb.Build(); whereClause != "" {
		t.Errorf("expected empty clause, got %q", whereClause)
	}
}

func TestWhereBuilder_AddSearch(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		cols       []string
		wantClause string
		wantArg    string
	}{
		{
			name:       "single column",
			query:      "john",
			cols:       []string{"name"},
			wantClause: ` WHERE ("name" ILIKE $1)`,
			wantArg:    "%john%",
		},
		{
			name:       "multiple columns share one arg",
			query:      "doe",
			cols:       []string{"name", "email", "role"},
			wantClause: ` WHERE ("name" ILIKE $1 OR "email" ILIKE $1 OR "role" ILIKE $1)`,
			wantArg:    "%doe%",
		},
		{
			name:       "like wildcards escaped",
			query:      "50%_off",
			cols:       []string{"name"},
			wantClause: ` WHERE ("name" ILIKE $1)`,
			wantArg:    `%50\%\_off%`,
		},
		{
			name:       "whitespace trimmed",
			query:      "  jane ",
			cols:       []string{"name"},
			wantClause: ` WHERE ("name" ILIKE $1)`,
			wantArg:    "%jane%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder()
			wb.AddSearch(tt.query, tt.cols...)

			gotClause, gotArgs := wb.Build()
			if gotClause != tt.wantClause {
				t.Errorf("clause = %q, want %q", gotClause, tt.wantClause)
			}
			if len(gotArgs) != 1 {
				t.Fatalf("expected 1 arg, got %d", len(gotArgs))
			}
			if gotArgs[0] != tt.wantArg {
				t.Errorf("arg = %v, want %v", gotArgs[0], tt.wantArg)
			}
		})
	}
}

func TestWhereBuilder_AddSearch_Empty_Skipped(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddSearch("   ", "name")
	wb.AddSearch("john")

	if whereClause, _ := wb.Build(); whereClause != "" {
		t.Errorf("expected empty clause, got %q", whereClause)
	}
}

func TestWhereBuilder_AddDateRange(t *testing.T) {
	from := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	wb := NewWhereBuilder()
	wb.AddDateRange("created_at", &from, &to)

	whereClause, args := wb.Build()

	expectedClause := ` WHERE "created_at" >= $1 AND "created_at" < $2`
	if whereClause != expectedClause {
		t.Errorf("expected %q, got %q", expectedClause, whereClause)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if got := args[0].(time.Time); !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from bound = %v, want start of day", got)
	}
	if got := args[1].(time.Time); !got.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("to bound = %v, want start of next day", got)
	}
}

func TestWhereBuilder_AddDateRange_OpenEnded(t *testing.T) {
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	wb := NewWhereBuilder()
	wb.AddDateRange("created_at", nil, &to)

	whereClause, args := wb.Build()
	if whereClause != ` WHERE "created_at" < $1` {
		t.Errorf("unexpected clause %q", whereClause)
	}
	if len(args) != 1 {
		t.Errorf("expected 1 arg, got %d", len(args))
	}
}

func TestWhereBuilder_NextArgIndex(t *testing.T) {
	wb := NewWhereBuilder()

	if wb.NextArgIndex() != 1 {
		t.Errorf("expected initial NextArgIndex to be 1, got %d", wb.NextArgIndex())
	}

	wb.Add("role", "admin")
	if wb.NextArgIndex() != 2 {
		t.Errorf("expected NextArgIndex to be 2 after Add, got %d", wb.NextArgIndex())
	}

	wb.AddIn("status", []string{"active", "pending", "inactive"})
	if wb.NextArgIndex() != 5 {
		t.Errorf("expected NextArgIndex to be 5 after AddIn, got %d", wb.NextArgIndex())
	}

	wb.AddSearch("x", "name", "email")
	if wb.NextArgIndex() != 6 {
		t.Errorf("expected NextArgIndex to be 6 after AddSearch, got %d", wb.NextArgIndex())
	}
}

func TestWhereBuilder_ComplexQuery(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	wb := NewWhereBuilder()
	wb.AddSearch("doe", "name", "email", "role")
	wb.Add("role", "user")
	wb.AddIn("status", []string{"active"})
	wb.AddDateRange("created_at", &from, nil)

	whereClause, args := wb.Build()

	expectedClause := ` WHERE ("name" ILIKE $1 OR "email" ILIKE $1 OR "role" ILIKE $1)` +
		` AND LOWER("role") = LOWER($2)` +
		` AND LOWER("status") IN ($3)` +
		` AND "created_at" >= $4`
	if whereClause != expectedClause {
		t.Errorf("expected %q,\ngot %q", expectedClause, whereClause)
	}
	if len(args) != 4 {
		t.Errorf("expected 4 args, got %d", len(args))
	}
}

// ============================================================================
// quoteIdentifier Tests
// ============================================================================

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "normal identifier",
			input: "users",
			want:  `"users"`,
		},
		{
			name:  "mixed case preserved",
			input: "createdAt",
			want:  `"createdAt"`,
		},
		{
			name:  "reserved word still quoted",
			input: "select",
			want:  `"select"`,
		},
		{
			name:  "contains double quote - escaped",
			input: `user"name`,
			want:  `"user""name"`,
		},
		{
			name:  "sql injection attempt safely quoted",
			input: `users"; DROP TABLE users; --`,
			want:  `"users""; DROP TABLE users; --"`,
		},
		{
			name:  "empty string",
			input: "",
			want:  `""`,
		},
		{
			name:  "snake_case",
			input: "created_at",
			want:  `"created_at"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quoteIdentifier(tt.input)
			if got != tt.want {
				t.Errorf("quoteIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
