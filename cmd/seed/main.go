// seed inserts development sample data for local testing: go run ./cmd/seed.
// Idempotent: skips inserts if the dev admin (ops@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	admindomain "punchgate/internal/admin/domain"
	adminrepo "punchgate/internal/admin/repository"
	"punchgate/internal/config"
	"punchgate/internal/db"
	"punchgate/internal/security"
)

const (
	devAdminEmail    = "ops@example.com"
	devAdminPassword = "password123"
)

var devEmployees = []struct {
	name string
	role string
	pin  string
}{
	{"Budi Santoso", "warehouse", "4821"},
	{"Sari Wulandari", "front office", "7703"},
	{"Agus Pratama", "driver", "1956"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	admins := adminrepo.NewPostgresRepository(conn)

	existing, err := admins.GetByEmail(ctx, devAdminEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (ops@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devAdminPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	if err := admins.Create(ctx, &admindomain.Admin{
		ID:           uuid.New().String(),
		Email:        devAdminEmail,
		Name:         "Ops Admin",
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}); err != nil {
		log.Fatalf("create admin: %v", err)
	}

	for _, e := range devEmployees {
		if _, err := conn.ExecContext(ctx,
			`INSERT INTO employees (id, name, role, pin, active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, TRUE, $5, $5)`,
			uuid.New().String(), e.name, e.role, e.pin, now); err != nil {
			log.Fatalf("create employee %s: %v", e.name, err)
		}
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Admin login: %s / %s\n", devAdminEmail, devAdminPassword)
	for _, e := range devEmployees {
		fmt.Printf("Employee %s: PIN %s\n", e.name, e.pin)
	}
}
