package core

import (
	"strings"
	"time"
)

// User is a row of the users table.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	Status    string    `json:"status"`
}

// User statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

// Option is a labelled filter choice.
type Option struct {
	Label string
	Value string
}

// RoleOptions are the choices of the role filter.
var RoleOptions = []Option{
	{Label: "Admin", Value: "admin"},
	{Label: "User", Value: "user"},
	{Label: "Editor", Value: "editor"},
}

// StatusOptions are the choices of the status filter.
var StatusOptions = []Option{
	{Label: "Active", Value: StatusActive},
	{Label: "Inactive", Value: StatusInactive},
	{Label: "Pending", Value: StatusPending},
}

// IsValidStatus reports whether s is a known status, ignoring case.
func IsValidStatus(s string) bool {
	for _, o := range StatusOptions {
		if strings.EqualFold(o.Value, s) {
			return true
		}
	}
	return false
}

func mustDay(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SampleUsers returns the demo dataset.
func SampleUsers() []User {
	return []User{
		{ID: 1, Name: "John Doe", Email: "john@example.com", Role: "Admin", CreatedAt: mustDay("2024-01-15"), Status: StatusActive},
		{ID: 2, Name: "Jane Smith", Email: "jane@example.com", Role: "User", CreatedAt: mustDay("2024-02-20"), Status: StatusActive},
		{ID: 3, Name: "Bob Wilson", Email: "bob@example.com", Role: "Editor", CreatedAt: mustDay("2024-03-10"), Status: StatusPending},
		{ID: 4, Name: "Alice Brown", Email: "alice@example.com", Role: "User", CreatedAt: mustDay("2024-03-25"), Status: StatusInactive},
		{ID: 5, Name: "Charlie Davis", Email: "charlie@example.com", Role: "Moderator", CreatedAt: mustDay("2024-04-05"), Status: StatusActive},
	}
}
