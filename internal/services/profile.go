package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"crew-match-backend/internal/models"
	"crew-match-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ProfileService handles onboarding profiles and the candidate directory
type ProfileService struct {
	profileRepo ProfileStore
	photoRepo   PhotoStore
	validate    *validator.Validate
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo ProfileStore, photoRepo PhotoStore) *ProfileService {
	v := validator.New()
	// registration only fails for a malformed tag name
	_ = v.RegisterValidation("crewrole", func(fl validator.FieldLevel) bool {
		return models.IsRole(fl.Field().String())
	})

	return &ProfileService{
		profileRepo: profileRepo,
		photoRepo:   photoRepo,
		validate:    v,
	}
}

// normalizeInput trims the name and drops blank list entries
func normalizeInput(in *models.ProfileInput) {
	in.Name = strings.TrimSpace(in.Name)
	in.Languages = trimAll(in.Languages)
	in.Certifications = trimAll(in.Certifications)
	in.Interests = trimAll(in.Interests)
}

// trimAll drops blank entries, keeping order
func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func applyInput(in *models.ProfileInput, p *models.Profile) {
	p.Name = in.Name
	p.Role = in.Role
	p.Experience = in.Experience
	p.Age = in.Age
	p.Nationality = in.Nationality
	p.Languages = in.Languages
	p.Certifications = in.Certifications
	p.Interests = in.Interests
	p.Bio = in.Bio
	p.Availability = in.Availability
}

// Create creates the profile of a user; each user has at most one
func (s *ProfileService) Create(ctx context.Context, userID string, in models.ProfileInput) (*models.Profile, error) {
	normalizeInput(&in)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	p := &models.Profile{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyInput(&in, p)

	if err := s.profileRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	applyPhotos(p, nil)
	return p, nil
}

// Update overwrites the profile of a user
func (s *ProfileService) Update(ctx context.Context, userID string, in models.ProfileInput) (*models.Profile, error) {
	normalizeInput(&in)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	p, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyInput(&in, p)
	p.UpdatedAt = time.Now().UTC()

	if err := s.profileRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return p, nil
}

// GetByUserID returns the profile of a user with its photos
func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if err := s.attachPhotos(ctx, []*models.Profile{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// ListCandidates returns every profile except the caller's, newest first,
// each with photos ordered ascending
func (s *ProfileService) ListCandidates(ctx context.Context, excludeUserID string) ([]*models.Profile, error) {
	profiles, err := s.profileRepo.ListExcludingUser(ctx, excludeUserID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
	})

	if err := s.attachPhotos(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// ProfilesByUserIDs returns the profiles of the given users keyed by user ID
func (s *ProfileService) ProfilesByUserIDs(ctx context.Context, userIDs []string) (map[string]*models.Profile, error) {
	profiles, err := s.profileRepo.ListByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	if err := s.attachPhotos(ctx, profiles); err != nil {
		return nil, err
	}

	byUser := make(map[string]*models.Profile, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
	}
	return byUser, nil
}

func (s *ProfileService) attachPhotos(ctx context.Context, profiles []*models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}

	photos, err := s.photoRepo.ListByProfileIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load photos: %w", err)
	}

	for _, p := range profiles {
		applyPhotos(p, photos[p.ID])
	}
	return nil
}

// applyPhotos sets the ordered photo list and the card image, falling back
// to the placeholder when the profile has no photos
func applyPhotos(p *models.Profile, photos []models.Photo) {
	if photos == nil {
		photos = []models.Photo{}
	}
	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].Order < photos[j].Order
	})
	p.Photos = photos

	p.ImageURL = models.DefaultPhotoURL
	if len(photos) > 0 {
		p.ImageURL = photos[0].URL
	}

	if p.Languages == nil {
		p.Languages = []string{}
	}
	if p.Certifications == nil {
		p.Certifications = []string{}
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
}
