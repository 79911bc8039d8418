package repository

import (
	"context"
	"database/sql"
	"errors"

	"punchgate/internal/employee/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an employee directory backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const employeeColumns = "id, name, role, pin, active, created_at, updated_at"

// GetByID returns the employee for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = $1", id)
	return scanEmployee(row)
}

// GetByPIN returns the employee with the exact PIN, or nil if none matches.
// Active-PIN uniqueness is enforced by the store; if historical inactive rows
// share the PIN the active one wins.
func (r *PostgresRepository) GetByPIN(ctx context.Context, pin string) (*domain.Employee, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE pin = $1 ORDER BY active DESC LIMIT 1", pin)
	return scanEmployee(row)
}

// List returns all employees ordered by name. Returns (nil, error) only on database errors.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+employeeColumns+" FROM employees ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Employee
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Role, &e.PIN, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func scanEmployee(row *sql.Row) (*domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(&e.ID, &e.Name, &e.Role, &e.PIN, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
