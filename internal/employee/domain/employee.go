package domain

import "time"

// Employee is the directory entry the attendance core reads. Employee
// lifecycle management belongs to the surrounding console; this core never
// creates or mutates employees.
type Employee struct {
	ID     string
	Name   string
	Role   string
	// PIN is the short numeric enrollment secret. Unique among active
	// employees; compared exact-match at the registry boundary.
	PIN       string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
