package schema

// FieldType is the stored type of a column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInt
	FieldDate
)

// FieldSpec maps a column ID to its database column.
type FieldSpec struct {
	ID         string
	DBColumn   string
	Type       FieldType
	Sortable   bool
	Searchable bool
}

// Lookup returns the field with the given ID.
func Lookup(specs []FieldSpec, id string) (FieldSpec, bool) {
	for _, s := range specs {
		if s.ID == id {
			return s, true
		}
	}
	return FieldSpec{}, false
}

// DBColumns returns the database column of every field, in order.
func DBColumns(specs []FieldSpec) []string {
	cols := make([]string, len(specs))
	for i, s := range specs {
		cols[i] = s.DBColumn
	}
	return cols
}

// SearchColumns returns the database columns matched by free-text search.
func SearchColumns(specs []FieldSpec) []string {
	var cols []string
	for _, s := range specs {
		if s.Searchable {
			cols = append(cols, s.DBColumn)
		}
	}
	return cols
}
