package handlers

import (
	"context"
	"net/http"

	"crew-match-backend/internal/middleware"
	"crew-match-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// MatchService is the match ledger surface the match handler needs
type MatchService interface {
	Swipe(ctx context.Context, userID string, req models.SwipeRequest) (*models.SwipeResult, error)
	ListMatches(ctx context.Context, userID string) ([]models.MatchWithProfile, error)
	ResolveMatchID(ctx context.Context, userA, userB string) (string, error)
}

// MatchHandler handles swipes and matches
type MatchHandler struct {
	matchService MatchService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matchService MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
	}
}

// Swipe handles POST /api/v1/swipes
func (h *MatchHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.SwipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.matchService.Swipe(r.Context(), userID, req)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("candidate_id", req.CandidateUserID).
			Msg("Failed to evaluate swipe")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListMatches handles GET /api/v1/matches
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	matches, err := h.matchService.ListMatches(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list matches")
		respondServiceError(w, err)
		return
	}
	if matches == nil {
		matches = []models.MatchWithProfile{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
	})
}

// ResolveMatch handles GET /api/v1/matches/resolve?user_id=
func (h *MatchHandler) ResolveMatch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	peerID := r.URL.Query().Get("user_id")
	if peerID == "" {
		respondError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	matchID, err := h.matchService.ResolveMatchID(r.Context(), userID, peerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"match_id": matchID})
}
