package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"punchgate/internal/device/domain"
	"punchgate/internal/fingerprint"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a device repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const deviceColumns = `id, employee_id, fingerprint, device_class, os_family, browser_family,
	screen_size, active, registered_at, last_used_at, replaced_at, deactivated_at`

// GetActiveByFingerprint returns the active device for fp, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetActiveByFingerprint(ctx context.Context, fp fingerprint.Fingerprint) (*domain.Device, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE fingerprint = $1 AND active", string(fp))
	return scanDevice(row)
}

// GetActiveByEmployee returns the employee's active device, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetActiveByEmployee(ctx context.Context, employeeID string) (*domain.Device, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE employee_id = $1 AND active", employeeID)
	return scanDevice(row)
}

// CreateReplacing deactivates any active device sharing d's employee or
// fingerprint and inserts d, all in one transaction. The partial unique
// indexes on the devices table make a racing second enrollment fail the
// insert rather than leave two active bindings.
func (r *PostgresRepository) CreateReplacing(ctx context.Context, d *domain.Device, replacedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`UPDATE devices SET active = FALSE, replaced_at = $1
		 WHERE active AND (employee_id = $2 OR fingerprint = $3)`,
		replacedAt, d.EmployeeID, string(d.Fingerprint))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO devices (id, employee_id, fingerprint, device_class, os_family,
			browser_family, screen_size, active, registered_at, last_used_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $9)`,
		d.ID, d.EmployeeID, string(d.Fingerprint),
		d.Descriptor.DeviceClass, d.Descriptor.OSFamily, d.Descriptor.BrowserFamily,
		d.Descriptor.ScreenSize, d.RegisteredAt, nullTime(d.LastUsedAt))
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Deactivate marks the active device for fp as dissociated at the given time.
// Missing or already-inactive fingerprints are a no-op.
func (r *PostgresRepository) Deactivate(ctx context.Context, fp fingerprint.Fingerprint, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE devices SET active = FALSE, deactivated_at = $1 WHERE fingerprint = $2 AND active",
		at, string(fp))
	return err
}

// UpdateLastUsed sets the active device's last-used timestamp for fp.
func (r *PostgresRepository) UpdateLastUsed(ctx context.Context, fp fingerprint.Fingerprint, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE devices SET last_used_at = $1 WHERE fingerprint = $2 AND active",
		at, string(fp))
	return err
}

// List returns all devices newest first. Returns (nil, error) only on database errors.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Device, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+deviceColumns+" FROM devices ORDER BY registered_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Device
	for rows.Next() {
		d, err := scanDeviceRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row *sql.Row) (*domain.Device, error) {
	d, err := scanDeviceRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

func scanDeviceRow(s rowScanner) (*domain.Device, error) {
	var (
		d           domain.Device
		fp          string
		lastUsed    sql.NullTime
		replaced    sql.NullTime
		deactivated sql.NullTime
	)
	err := s.Scan(&d.ID, &d.EmployeeID, &fp,
		&d.Descriptor.DeviceClass, &d.Descriptor.OSFamily, &d.Descriptor.BrowserFamily,
		&d.Descriptor.ScreenSize, &d.Active, &d.RegisteredAt, &lastUsed, &replaced, &deactivated)
	if err != nil {
		return nil, err
	}
	d.Fingerprint = fingerprint.Fingerprint(fp)
	if lastUsed.Valid {
		d.LastUsedAt = &lastUsed.Time
	}
	if replaced.Valid {
		d.ReplacedAt = &replaced.Time
	}
	if deactivated.Valid {
		d.DeactivatedAt = &deactivated.Time
	}
	return &d, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
