package repository

import (
	"context"

	"punchgate/internal/employee/domain"
)

// Repository defines read-only access to the employee directory.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	// GetByPIN returns the employee whose PIN matches exactly, regardless of
	// active state; the registry decides how to treat inactive employees.
	GetByPIN(ctx context.Context, pin string) (*domain.Employee, error)
	List(ctx context.Context) ([]*domain.Employee, error)
}
