package handlers

import (
	"context"
	"net/http"

	"crew-match-backend/internal/middleware"
	"crew-match-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MessageService is the conversation surface the message handler needs
type MessageService interface {
	LoadHistory(ctx context.Context, matchID, userID string) ([]*models.Message, error)
	Send(ctx context.Context, matchID, senderID, content string) (*models.Message, error)
}

// MessageHandler handles chat messages of a match
type MessageHandler struct {
	messageService MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// ListMessages handles GET /api/v1/matches/{match_id}/messages
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	matchID := chi.URLParam(r, "match_id")

	messages, err := h.messageService.LoadHistory(r.Context(), matchID, userID)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			log.Error().Err(err).Str("match_id", matchID).Msg("Failed to load messages")
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}

// SendMessage handles POST /api/v1/matches/{match_id}/messages
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	matchID := chi.URLParam(r, "match_id")

	var req models.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.messageService.Send(r.Context(), matchID, userID, req.Content)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("user_id", userID).
				Str("match_id", matchID).
				Msg("Failed to send message")
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}
