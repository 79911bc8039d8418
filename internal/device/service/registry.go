package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"punchgate/internal/audit"
	"punchgate/internal/device/domain"
	empdomain "punchgate/internal/employee/domain"
	"punchgate/internal/fingerprint"
	"punchgate/internal/security"
	"punchgate/internal/telemetry"
	eventdomain "punchgate/internal/telemetry/domain"
)

var (
	// ErrNotFound is returned when no active device matches the fingerprint.
	ErrNotFound = errors.New("device not found")
	// ErrInvalidPIN is returned when the PIN matches no employee.
	ErrInvalidPIN = errors.New("invalid pin")
	// ErrEmployeeInactive is returned when the PIN belongs to a deactivated employee.
	ErrEmployeeInactive = errors.New("employee inactive")
	// ErrConflictRequiresConfirmation is returned when enrollment would replace
	// an existing binding and the caller has not confirmed the replacement.
	ErrConflictRequiresConfirmation = errors.New("existing binding requires replacement confirmation")
)

// EmployeeDirectory is the read-only employee lookup the registry needs.
type EmployeeDirectory interface {
	GetByID(ctx context.Context, id string) (*empdomain.Employee, error)
	GetByPIN(ctx context.Context, pin string) (*empdomain.Employee, error)
}

// DeviceRepo is the device persistence the registry needs.
type DeviceRepo interface {
	GetActiveByFingerprint(ctx context.Context, fp fingerprint.Fingerprint) (*domain.Device, error)
	GetActiveByEmployee(ctx context.Context, employeeID string) (*domain.Device, error)
	CreateReplacing(ctx context.Context, d *domain.Device, replacedAt time.Time) error
	Deactivate(ctx context.Context, fp fingerprint.Fingerprint, at time.Time) error
	List(ctx context.Context) ([]*domain.Device, error)
}

// Registry resolves, enrolls, and dissociates device bindings.
type Registry struct {
	devices   DeviceRepo
	employees EmployeeDirectory
	auditLog  audit.AuditLogger
	events    telemetry.EventEmitter
	now       func() time.Time
}

// NewRegistry returns a Registry. auditLog and events may be nil; then those
// side channels are skipped.
func NewRegistry(devices DeviceRepo, employees EmployeeDirectory, auditLog audit.AuditLogger, events telemetry.EventEmitter) *Registry {
	return &Registry{
		devices:   devices,
		employees: employees,
		auditLog:  auditLog,
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the registry clock. For tests.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Resolution is the result of looking up a device fingerprint.
type Resolution struct {
	Device   *domain.Device
	Employee *empdomain.Employee
}

// Resolve maps a fingerprint to its bound employee. Returns ErrNotFound when
// no active binding exists, which the caller treats as "enrollment required".
func (r *Registry) Resolve(ctx context.Context, fp fingerprint.Fingerprint) (*Resolution, error) {
	d, err := r.devices.GetActiveByFingerprint(ctx, fp)
	if err != nil {
		return nil, fmt.Errorf("resolve device: %w", err)
	}
	if d == nil {
		return nil, ErrNotFound
	}
	emp, err := r.employees.GetByID(ctx, d.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("resolve employee: %w", err)
	}
	if emp == nil || !emp.Active {
		// Binding survives the employee's deactivation; treat as unbound.
		return nil, ErrNotFound
	}
	return &Resolution{Device: d, Employee: emp}, nil
}

// EnrollParams carries an enrollment request.
type EnrollParams struct {
	Fingerprint fingerprint.Fingerprint
	Descriptor  fingerprint.Descriptor
	PIN         string
	// ReplaceExisting confirms that any active binding on either side (this
	// employee's current device or this device's current employee) may be
	// superseded.
	ReplaceExisting bool
}

// Enroll binds the device fingerprint to the employee identified by PIN.
//
// Re-enrolling the same fingerprint for the same employee is idempotent and
// returns the existing device. Any other existing active binding, on either
// side, is a conflict: without ReplaceExisting the call fails with
// ErrConflictRequiresConfirmation; with it, the old bindings are atomically
// marked replaced.
func (r *Registry) Enroll(ctx context.Context, p EnrollParams) (*domain.Device, error) {
	if _, err := fingerprint.Parse(string(p.Fingerprint)); err != nil {
		return nil, fmt.Errorf("enroll: %w", err)
	}
	emp, err := r.employees.GetByPIN(ctx, p.PIN)
	if err != nil {
		return nil, fmt.Errorf("enroll: lookup pin: %w", err)
	}
	if emp == nil || !security.PINEqual(p.PIN, emp.PIN) {
		return nil, ErrInvalidPIN
	}
	if !emp.Active {
		return nil, ErrEmployeeInactive
	}

	byFp, err := r.devices.GetActiveByFingerprint(ctx, p.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("enroll: lookup fingerprint: %w", err)
	}
	if byFp != nil && byFp.EmployeeID == emp.ID {
		return byFp, nil
	}
	byEmp, err := r.devices.GetActiveByEmployee(ctx, emp.ID)
	if err != nil {
		return nil, fmt.Errorf("enroll: lookup employee device: %w", err)
	}
	replacing := byFp != nil || byEmp != nil
	if replacing && !p.ReplaceExisting {
		return nil, ErrConflictRequiresConfirmation
	}

	now := r.now()
	d := &domain.Device{
		ID:           uuid.New().String(),
		EmployeeID:   emp.ID,
		Fingerprint:  p.Fingerprint,
		Descriptor:   p.Descriptor,
		Active:       true,
		RegisteredAt: now,
	}
	if err := r.devices.CreateReplacing(ctx, d, now); err != nil {
		return nil, fmt.Errorf("enroll: create device: %w", err)
	}

	action, eventType := audit.ActionEnroll, eventdomain.EventDeviceEnrolled
	if replacing {
		action, eventType = audit.ActionReplace, eventdomain.EventDeviceReplaced
	}
	if r.auditLog != nil {
		r.auditLog.LogEvent(ctx, emp.ID, action, "device:"+d.ID, string(p.Fingerprint))
	}
	telemetry.EmitAsync(r.events, ctx, &eventdomain.Event{
		ID:                uuid.New().String(),
		EmployeeID:        emp.ID,
		DeviceFingerprint: string(p.Fingerprint),
		EventType:         eventType,
		Source:            "api",
		Metadata:          map[string]string{"device_class": d.Descriptor.DeviceClass},
		CreatedAt:         now,
	})
	return d, nil
}

// Deactivate dissociates the device bound to fp. Idempotent: an unknown or
// already-inactive fingerprint is a no-op.
func (r *Registry) Deactivate(ctx context.Context, fp fingerprint.Fingerprint) error {
	d, err := r.devices.GetActiveByFingerprint(ctx, fp)
	if err != nil {
		return fmt.Errorf("deactivate: %w", err)
	}
	if d == nil {
		return nil
	}
	now := r.now()
	if err := r.devices.Deactivate(ctx, fp, now); err != nil {
		return fmt.Errorf("deactivate: %w", err)
	}
	if r.auditLog != nil {
		r.auditLog.LogEvent(ctx, d.EmployeeID, audit.ActionDeactivate, "device:"+d.ID, string(fp))
	}
	telemetry.EmitAsync(r.events, ctx, &eventdomain.Event{
		ID:                uuid.New().String(),
		EmployeeID:        d.EmployeeID,
		DeviceFingerprint: string(fp),
		EventType:         eventdomain.EventDeviceDeactivated,
		Source:            "api",
		CreatedAt:         now,
	})
	return nil
}

// List returns all devices, active and historical.
func (r *Registry) List(ctx context.Context) ([]*domain.Device, error) {
	return r.devices.List(ctx)
}
