package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user database operations.
type UserRepository struct {
	pool *pgxpool.Pool
}

// Upsert inserts a user if absent. Stored rows are never updated;
// later logins of a known user are no-ops.
func (r *UserRepository) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (user_id, name, image_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Name, user.ImageURL)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID.
func (r *UserRepository) Get(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT user_id, name, image_url
		FROM users
		WHERE user_id = $1
	`
	var user User
	err := r.pool.QueryRow(ctx, query, id).Scan(&user.ID, &user.Name, &user.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}
