package datatable

import (
	"strconv"
	"time"
)

type person struct {
	ID        int
	Name      string
	Email     string
	Role      string
	Status    string
	CreatedAt time.Time
}

func day(s string) time.Time {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func people() []person {
	return []person{
		{1, "John Doe", "john@example.com", "admin", "active", day("2024-01-01")},
		{2, "Jane Smith", "jane@example.com", "user", "active", day("2024-01-02")},
		{3, "Bob Johnson", "bob@example.com", "editor", "inactive", day("2024-01-03")},
		{4, "Alice Brown", "alice@example.com", "user", "pending", day("2024-01-04")},
		{5, "Charlie Wilson", "charlie@example.com", "admin", "active", day("2024-01-05")},
	}
}

func personColumns() []Column[person] {
	return []Column[person]{
		{ID: SelectColumnID, DisableSorting: true, DisableHiding: true},
		{ID: "name", Header: "Name", Accessor: func(p person) any { return p.Name }},
		{ID: "email", Header: "Email", Accessor: func(p person) any { return p.Email }},
		{
			ID: "role", Header: "Role", Accessor: func(p person) any { return p.Role },
			Filter: &FilterDescriptor{Kind: FilterSelect, Options: []FilterOption{
				{Label: "Admin", Value: "admin"}, {Label: "User", Value: "user"}, {Label: "Editor", Value: "editor"},
			}},
		},
		{
			ID: "status", Header: "Status", Accessor: func(p person) any { return p.Status },
			Filter: &FilterDescriptor{Kind: FilterMultiSelect, Options: []FilterOption{
				{Label: "Active", Value: "active"}, {Label: "Inactive", Value: "inactive"}, {Label: "Pending", Value: "pending"},
			}},
		},
		{
			ID: "createdAt", Header: "Created At", Accessor: func(p person) any { return p.CreatedAt },
			Filter: &FilterDescriptor{Kind: FilterDateRange},
		},
	}
}

func personID(p person, _ int) string { return strconv.Itoa(p.ID) }

func allFeatures() Features {
	return Features{
		RowSelection:     true,
		ColumnVisibility: true,
		Sorting:          true,
		Filters:          true,
		Search:           true,
		Pagination:       true,
		Export:           true,
	}
}

func managedTable(data []person, size int) *Table[person] {
	return New(Options[person]{
		Data:       data,
		Columns:    personColumns(),
		Pagination: &Pagination{CurrentPage: 1, PerPage: size},
		Features:   allFeatures(),
		GetRowID:   personID,
		Debounce:   10 * time.Millisecond,
	})
}

func rowIDs[T any](rows []Row[T]) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}
