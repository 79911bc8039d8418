package repository

import (
	"context"
	"database/sql"
	"errors"

	"punchgate/internal/admin/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an admin store backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash, created_at FROM admins WHERE email = $1",
		email).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *domain.Admin) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO admins (id, email, name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)",
		a.ID, a.Email, a.Name, a.PasswordHash, a.CreatedAt)
	return err
}
