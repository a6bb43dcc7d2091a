package repository

import (
	"context"
	"fmt"

	"crew-match-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SwipeRepository handles database operations for swipes
type SwipeRepository struct {
	db *pgxpool.Pool
}

// NewSwipeRepository creates a new swipe repository
func NewSwipeRepository(db *pgxpool.Pool) *SwipeRepository {
	return &SwipeRepository{db: db}
}

// Create records a swipe
func (r *SwipeRepository) Create(ctx context.Context, swipe *models.Swipe) error {
	query := `
		INSERT INTO swipes (id, actor_id, target_id, direction, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, swipe.ID, swipe.ActorID, swipe.TargetID, swipe.Direction, swipe.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create swipe: %w", mapError(err))
	}
	return nil
}

// HasAccepted checks if actor has ever swiped right on target
func (r *SwipeRepository) HasAccepted(ctx context.Context, actorID, targetID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM swipes WHERE actor_id = $1 AND target_id = $2 AND direction = 'right')`
	var exists bool
	err := r.db.QueryRow(ctx, query, actorID, targetID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check swipe: %w", err)
	}
	return exists, nil
}
