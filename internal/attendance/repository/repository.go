package repository

import (
	"context"
	"time"

	"punchgate/internal/attendance/domain"
)

// Repository defines persistence for the attendance ledger.
type Repository interface {
	// GetByEmployeeAndDay returns every record for (employeeID, day). The
	// store enforces at most one, but callers must treat more than one row as
	// a data anomaly rather than picking a winner.
	GetByEmployeeAndDay(ctx context.Context, employeeID string, day time.Time) ([]*domain.Record, error)
	// CreateArrival inserts the arrival record unless one already exists for
	// (employeeID, day). Returns false, without error, when a concurrent
	// arrival won the insert.
	CreateArrival(ctx context.Context, r *domain.Record) (inserted bool, err error)
	// SetDeparture sets departure time and signature on the existing record,
	// only if no departure is set yet. Returns false when the record is
	// missing or already departed.
	SetDeparture(ctx context.Context, employeeID string, day time.Time, departureAt time.Time, signature []byte, updatedAt time.Time) (updated bool, err error)
	// GetByID returns the record with the given id, or nil.
	GetByID(ctx context.Context, id string) (*domain.Record, error)
	// ListRange returns records with day in [from, to], newest day first.
	// employeeID empty means all employees.
	ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]*domain.Record, error)
	// UpdateStatus overrides the status of an existing record.
	UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) (updated bool, err error)
}
