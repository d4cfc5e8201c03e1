package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Rating validation errors.
var (
	ErrScoreOutOfRange = errors.New("score must be between 0 and 10")
	ErrAlreadyRated    = errors.New("playlist already rated by this user")
)

// RatingRepository handles rating database operations.
type RatingRepository struct {
	pool *pgxpool.Pool
}

// ValidateScore checks that a score is within [0, 10].
func ValidateScore(score int) error {
	if score < 0 || score > 10 {
		return ErrScoreOutOfRange
	}
	return nil
}

// Rate records one user's rating of a playlist. Scores outside
// [0, 10] and second ratings from the same user are rejected; the
// first rating persists unchanged.
func (r *RatingRepository) Rate(ctx context.Context, userID, playlistID string, score int, comment *string) error {
	if err := ValidateScore(score); err != nil {
		return err
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM ratings WHERE user_id = $1 AND playlist_id = $2)
	`, userID, playlistID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking existing rating: %w", err)
	}
	if exists {
		return ErrAlreadyRated
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO ratings (user_id, playlist_id, score, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, playlist_id) DO NOTHING
	`, userID, playlistID, score, comment)
	if err != nil {
		return fmt.Errorf("inserting rating: %w", err)
	}
	return nil
}

// Average returns the average score for a playlist, or nil when it
// has no ratings.
func (r *RatingRepository) Average(ctx context.Context, playlistID string) (*float64, error) {
	var avg *float64
	err := r.pool.QueryRow(ctx, `
		SELECT AVG(score)::float8 FROM ratings WHERE playlist_id = $1
	`, playlistID).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("querying average rating: %w", err)
	}
	return avg, nil
}
