package repository

import (
	"context"

	"punchgate/internal/admin/domain"
)

// Repository defines persistence for admin accounts.
type Repository interface {
	// GetByEmail returns the admin for email, or nil if not found.
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	// Create inserts a new admin account.
	Create(ctx context.Context, a *domain.Admin) error
}
