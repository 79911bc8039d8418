package repository

import (
	"context"
	"time"

	"punchgate/internal/device/domain"
	"punchgate/internal/fingerprint"
)

// Repository defines persistence for device bindings.
type Repository interface {
	// GetActiveByFingerprint returns the active device for fp, or nil if none.
	GetActiveByFingerprint(ctx context.Context, fp fingerprint.Fingerprint) (*domain.Device, error)
	// GetActiveByEmployee returns the employee's active device, or nil if none.
	GetActiveByEmployee(ctx context.Context, employeeID string) (*domain.Device, error)
	// CreateReplacing inserts d and, in the same transaction, marks any active
	// device with the same employee or the same fingerprint as replaced at
	// replacedAt. This is the atomic unit that keeps the active set free of
	// duplicate fingerprints and duplicate employees.
	CreateReplacing(ctx context.Context, d *domain.Device, replacedAt time.Time) error
	// Deactivate marks the active device for fp as dissociated. Idempotent:
	// deactivating an unknown or already-inactive fingerprint is a no-op.
	Deactivate(ctx context.Context, fp fingerprint.Fingerprint, at time.Time) error
	// UpdateLastUsed stamps the active device for fp after a successful punch.
	UpdateLastUsed(ctx context.Context, fp fingerprint.Fingerprint, at time.Time) error
	// List returns all devices, active and historical, newest first.
	List(ctx context.Context) ([]*domain.Device, error)
}
