package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the centrale tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS centrale_boards (
			centrale_type text NOT NULL,
			id uuid NOT NULL,
			position int NOT NULL DEFAULT 0,
			version bigint NOT NULL DEFAULT 1,
			doc jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (centrale_type, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_centrale_boards_position
			ON centrale_boards (centrale_type, position)`,
		`CREATE TABLE IF NOT EXISTS users (
			id uuid PRIMARY KEY,
			username text NOT NULL UNIQUE,
			password_hash text NOT NULL,
			role text NOT NULL,
			display_name text NOT NULL DEFAULT '',
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users (role)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
