package handlers

import (
	"context"
	"net/http"

	"crew-match-backend/internal/middleware"
	"crew-match-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// UserService is the account surface the user handler needs
type UserService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error)
	SignIn(ctx context.Context, req models.SignInRequest) (*models.AuthResponse, error)
	GetIdentity(ctx context.Context, userID string) (*models.Identity, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// UserHandler handles auth and account HTTP requests
type UserHandler struct {
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SignUp handles POST /api/v1/auth/signup
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.userService.SignUp(r.Context(), req)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			log.Error().Err(err).Msg("Failed to sign up")
		}
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", resp.User.ID).Msg("User signed up")

	respondJSON(w, http.StatusCreated, resp)
}

// SignIn handles POST /api/v1/auth/signin
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.userService.SignIn(r.Context(), req)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			log.Error().Err(err).Msg("Failed to sign in")
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/v1/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	identity, err := h.userService.GetIdentity(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get identity")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, identity)
}

// PushTokenRequest registers or clears the device token of the caller
type PushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// UpdatePushToken handles PUT /api/v1/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req PushTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.userService.UpdatePushToken(r.Context(), userID, req.PushToken); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update push token")
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
