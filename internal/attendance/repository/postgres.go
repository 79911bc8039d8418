package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"punchgate/internal/attendance/domain"
	"punchgate/internal/fingerprint"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an attendance ledger backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const recordColumns = "id, employee_id, day, status, arrival_time, departure_time, arrival_signature, departure_signature, device_fingerprint, created_at, updated_at"

// dayKey normalizes day to its DATE value so comparisons ignore time-of-day.
func dayKey(day time.Time) string {
	return day.Format("2006-01-02")
}

func (r *PostgresRepository) GetByEmployeeAndDay(ctx context.Context, employeeID string, day time.Time) ([]*domain.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM presences WHERE employee_id = $1 AND day = $2",
		employeeID, dayKey(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CreateArrival inserts the arrival row. The unique (employee_id, day) index
// makes ON CONFLICT DO NOTHING the arbiter when two devices race: the loser
// sees zero rows affected and reports inserted=false.
func (r *PostgresRepository) CreateArrival(ctx context.Context, rec *domain.Record) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO presences (id, employee_id, day, status, arrival_time, arrival_signature, device_fingerprint, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (employee_id, day) DO NOTHING`,
		rec.ID, rec.EmployeeID, dayKey(rec.Day), rec.Status,
		rec.ArrivalTime, rec.ArrivalSignature, string(rec.DeviceFingerprint),
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetDeparture is a conditional update: it only lands on a record that has an
// arrival and no departure, so a duplicate departure commit reports
// updated=false instead of overwriting.
func (r *PostgresRepository) SetDeparture(ctx context.Context, employeeID string, day time.Time, departureAt time.Time, signature []byte, updatedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE presences
		SET departure_time = $1, departure_signature = $2, updated_at = $3
		WHERE employee_id = $4 AND day = $5
		  AND arrival_time IS NOT NULL AND departure_time IS NULL`,
		departureAt, signature, updatedAt, employeeID, dayKey(day))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM presences WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

func (r *PostgresRepository) ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]*domain.Record, error) {
	query := "SELECT " + recordColumns + " FROM presences WHERE day BETWEEN $1 AND $2"
	args := []any{dayKey(from), dayKey(to)}
	if employeeID != "" {
		query += " AND employee_id = $3"
		args = append(args, employeeID)
	}
	query += " ORDER BY day DESC, employee_id"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE presences SET status = $1, updated_at = $2 WHERE id = $3",
		status, updatedAt, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func scanRecords(rows *sql.Rows) ([]*domain.Record, error) {
	var out []*domain.Record
	for rows.Next() {
		var rec domain.Record
		var fp string
		var arrival, departure sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Day, &rec.Status,
			&arrival, &departure, &rec.ArrivalSignature, &rec.DepartureSignature,
			&fp, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if arrival.Valid {
			t := arrival.Time
			rec.ArrivalTime = &t
		}
		if departure.Valid {
			t := departure.Time
			rec.DepartureTime = &t
		}
		rec.DeviceFingerprint = fingerprint.Fingerprint(fp)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return out, nil
}
