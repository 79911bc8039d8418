package domain

import "time"

// Admin is an operator account for the administrative surface.
type Admin struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
