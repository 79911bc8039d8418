package repository

import (
	"context"

	"punchgate/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	ListByEmployee(ctx context.Context, employeeID string, limit, offset int32) ([]*domain.AuditLog, error)
}
