package repository

import (
	"context"
	"errors"
	"fmt"

	"centrale/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) Insert(ctx context.Context, u *model.User) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO users (id, username, password_hash, role, display_name)
        VALUES ($1, $2, $3, $4, $5)
    `, u.ID, u.Username, u.PasswordHash, u.Role, u.DisplayName)
	if err != nil {
		r.logger.Error("Failed to insert user",
			zap.Error(err),
			zap.String("username", u.Username),
		)
		return err
	}
	r.logger.Info("User created",
		zap.String("username", u.Username),
		zap.String("role", string(u.Role)),
	)
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx, `
        SELECT id, username, password_hash, role, display_name, created_at
        FROM users
        WHERE username = $1
    `, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.DisplayName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, username)
	}
	if err != nil {
		r.logger.Error("Failed to load user",
			zap.Error(err),
			zap.String("username", username),
		)
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, username, password_hash, role, display_name, created_at
        FROM users
        WHERE role = $1
        ORDER BY username
    `, role)
	if err != nil {
		r.logger.Error("Failed to query users",
			zap.Error(err),
			zap.String("role", string(role)),
		)
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.DisplayName, &u.CreatedAt); err != nil {
			r.logger.Error("Failed to scan user row", zap.Error(err))
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
