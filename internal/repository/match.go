package repository

import (
	"context"
	"errors"
	"fmt"

	"crew-match-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchRepository handles database operations for matches
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create creates a new match
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (id, user1_id, user2_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, match.ID, match.User1ID, match.User2ID, match.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves a match by ID
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM matches
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

// GetByPair retrieves the match between two users in either assignment order
func (r *MatchRepository) GetByPair(ctx context.Context, userA, userB string) (*models.Match, error) {
	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM matches
		WHERE (user1_id = $1 AND user2_id = $2) OR (user1_id = $2 AND user2_id = $1)
		ORDER BY created_at
		LIMIT 1
	`
	return r.getOne(ctx, query, userA, userB)
}

func (r *MatchRepository) getOne(ctx context.Context, query string, args ...any) (*models.Match, error) {
	var match models.Match
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&match.ID, &match.User1ID, &match.User2ID, &match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("match not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &match, nil
}

// ListByUserID retrieves every match where the user is on either side
func (r *MatchRepository) ListByUserID(ctx context.Context, userID string) ([]*models.Match, error) {
	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM matches
		WHERE user1_id = $1 OR user2_id = $1
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		var match models.Match
		if err := rows.Scan(&match.ID, &match.User1ID, &match.User2ID, &match.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, &match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}
