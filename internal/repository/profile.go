package repository

import (
	"context"
	"errors"
	"fmt"

	"crew-match-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, user_id, name, role, experience, age, nationality,
	languages, certifications, interests, bio, availability, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Role, &p.Experience, &p.Age, &p.Nationality,
		&p.Languages, &p.Certifications, &p.Interests, &p.Bio, &p.Availability,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.UserID, p.Name, p.Role, p.Experience, p.Age, p.Nationality,
		p.Languages, p.Certifications, p.Interests, p.Bio, p.Availability,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", mapError(err))
	}
	return nil
}

// Update overwrites the mutable fields of the profile owned by p.UserID
func (r *ProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles
		SET name = $1, role = $2, experience = $3, age = $4, nationality = $5,
			languages = $6, certifications = $7, interests = $8, bio = $9,
			availability = $10, updated_at = $11
		WHERE user_id = $12
	`
	result, err := r.db.Exec(ctx, query,
		p.Name, p.Role, p.Experience, p.Age, p.Nationality,
		p.Languages, p.Certifications, p.Interests, p.Bio,
		p.Availability, p.UpdatedAt, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile not found: %w", ErrNotFound)
	}
	return nil
}

// GetByUserID retrieves the profile owned by a user
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	p, err := scanProfile(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// ListExcludingUser retrieves every profile not owned by userID, newest first
func (r *ProfileRepository) ListExcludingUser(ctx context.Context, userID string) ([]*models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE user_id <> $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

// ListByUserIDs retrieves the profiles owned by the given users
func (r *ProfileRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]*models.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ANY($1::uuid[])`
	return r.list(ctx, query, userIDs)
}

func (r *ProfileRepository) list(ctx context.Context, query string, args ...any) ([]*models.Profile, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return profiles, nil
}
