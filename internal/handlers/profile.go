package handlers

import (
	"context"
	"net/http"

	"crew-match-backend/internal/middleware"
	"crew-match-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// ProfileService is the profile surface the profile handler needs
type ProfileService interface {
	Create(ctx context.Context, userID string, in models.ProfileInput) (*models.Profile, error)
	Update(ctx context.Context, userID string, in models.ProfileInput) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	ListCandidates(ctx context.Context, excludeUserID string) ([]*models.Profile, error)
}

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// CreateProfile handles POST /api/v1/profiles
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var in models.ProfileInput
	if !decodeJSON(w, r, &in) {
		return
	}

	profile, err := h.profileService.Create(r.Context(), userID, in)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create profile")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("profile_id", profile.ID).
		Msg("Profile created")

	respondJSON(w, http.StatusCreated, profile)
}

// GetMyProfile handles GET /api/v1/profiles/me
func (h *ProfileHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.profileService.GetByUserID(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdateMyProfile handles PUT /api/v1/profiles/me
func (h *ProfileHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var in models.ProfileInput
	if !decodeJSON(w, r, &in) {
		return
	}

	profile, err := h.profileService.Update(r.Context(), userID, in)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// ListCandidates handles GET /api/v1/profiles
func (h *ProfileHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profiles, err := h.profileService.ListCandidates(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list profiles")
		respondServiceError(w, err)
		return
	}
	if profiles == nil {
		profiles = []*models.Profile{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"profiles": profiles,
		"total":    len(profiles),
	})
}
