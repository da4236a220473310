package schema

import (
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	field, ok := Lookup(UserFields, "createdAt")
	if !ok {
		t.Fatal("Lookup(createdAt) not found")
	}
	if field.DBColumn != "created_at" {
		t.Errorf("DBColumn = %q, want %q", field.DBColumn, "created_at")
	}

	if _, ok := Lookup(UserFields, "password"); ok {
		t.Error("Lookup(password) should not be found")
	}
}

func TestSearchColumns(t *testing.T) {
	got := strings.Join(SearchColumns(UserFields), ",")
	if got != "name,email,role" {
		t.Errorf("SearchColumns() = %q, want %q", got, "name,email,role")
	}
}

func TestUsersDDL_Embedded(t *testing.T) {
	if !strings.Contains(UsersDDL, "CREATE TABLE IF NOT EXISTS users") {
		t.Error("UsersDDL does not contain the users table definition")
	}
	for _, col := range DBColumns(UserFields) {
		if !strings.Contains(UsersDDL, col) {
			t.Errorf("UsersDDL missing column %q", col)
		}
	}
}
