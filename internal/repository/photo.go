package repository

import (
	"context"
	"fmt"

	"crew-match-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PhotoRepository handles database operations for profile photos
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create appends a photo to a profile, assigning the next order value
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, profile_id, url, "order", created_at)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX("order") + 1, 0) FROM photos WHERE profile_id = $2),
			$4)
		RETURNING "order"
	`
	err := r.db.QueryRow(ctx, query,
		photo.ID, photo.ProfileID, photo.URL, photo.CreatedAt,
	).Scan(&photo.Order)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", mapError(err))
	}
	return nil
}

// ListByProfileIDs retrieves the photos of several profiles keyed by profile ID,
// each list sorted by order ascending
func (r *PhotoRepository) ListByProfileIDs(ctx context.Context, profileIDs []string) (map[string][]models.Photo, error) {
	photos := make(map[string][]models.Photo, len(profileIDs))
	if len(profileIDs) == 0 {
		return photos, nil
	}

	query := `
		SELECT id, profile_id, url, "order", created_at
		FROM photos
		WHERE profile_id = ANY($1::uuid[])
		ORDER BY profile_id, "order" ASC
	`
	rows, err := r.db.Query(ctx, query, profileIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var photo models.Photo
		err := rows.Scan(&photo.ID, &photo.ProfileID, &photo.URL, &photo.Order, &photo.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos[photo.ProfileID] = append(photos[photo.ProfileID], photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}
