package schema

import _ "embed"

// UsersTable is the PostgreSQL table backing the users demo.
const UsersTable = "users"

// UsersDDL creates the users table and its indexes if they do not exist.
//
//go:embed users.sql
var UsersDDL string

// UserFields describes the users columns, keyed by the column IDs the
// table and query parameters use.
var UserFields = []FieldSpec{
	{ID: "id", DBColumn: "id", Type: FieldInt, Sortable: true},
	{ID: "name", DBColumn: "name", Type: FieldText, Sortable: true, Searchable: true},
	{ID: "email", DBColumn: "email", Type: FieldText, Sortable: true, Searchable: true},
	{ID: "role", DBColumn: "role", Type: FieldText, Sortable: true, Searchable: true},
	{ID: "createdAt", DBColumn: "created_at", Type: FieldDate, Sortable: true},
	{ID: "status", DBColumn: "status", Type: FieldText, Sortable: true},
}
