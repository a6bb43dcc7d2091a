package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crew-match-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxMessageLength bounds a single chat line
const maxMessageLength = 4000

// MessageService handles the conversation of a match
type MessageService struct {
	messageRepo  MessageStore
	matchService *MatchService
	broadcaster  Broadcaster
	notifier     Notifier
}

// NewMessageService creates a new message service
func NewMessageService(messageRepo MessageStore, matchService *MatchService, broadcaster Broadcaster, notifier Notifier) *MessageService {
	return &MessageService{
		messageRepo:  messageRepo,
		matchService: matchService,
		broadcaster:  broadcaster,
		notifier:     notifier,
	}
}

// LoadHistory returns every message of the match, oldest first
func (s *MessageService) LoadHistory(ctx context.Context, matchID, userID string) ([]*models.Message, error) {
	if _, err := s.matchService.GetForMember(ctx, matchID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByMatchID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	return messages, nil
}

// Send appends a message to the match and publishes it to subscribers
func (s *MessageService) Send(ctx context.Context, matchID, senderID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if len(content) > maxMessageLength {
		return nil, fmt.Errorf("%w: message is longer than %d bytes", ErrInvalidInput, maxMessageLength)
	}

	match, err := s.matchService.GetForMember(ctx, matchID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:        uuid.New().String(),
		MatchID:   match.ID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	log.Debug().
		Str("match_id", msg.MatchID).
		Str("sender_id", msg.SenderID).
		Str("message_id", msg.ID).
		Msg("Message sent")

	s.broadcaster.PublishMessage(msg)

	recipient, _ := match.Counterpart(senderID)
	if !s.broadcaster.IsOnline(recipient) {
		if err := s.notifier.Notify(ctx, recipient, "New message", preview(content)); err != nil {
			log.Error().Err(err).Str("user_id", recipient).Msg("Failed to push message notification")
		}
	}

	return msg, nil
}

func preview(content string) string {
	const limit = 80
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "…"
}
