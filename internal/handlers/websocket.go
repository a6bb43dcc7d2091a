package handlers

import (
	"context"
	"errors"
	"net/http"

	"crew-match-backend/internal/middleware"
	"crew-match-backend/internal/models"
	"crew-match-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fastjson"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var framePool fastjson.ParserPool

// MembershipChecker confirms a user belongs to a match
type MembershipChecker interface {
	GetForMember(ctx context.Context, matchID, userID string) (*models.Match, error)
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub       *services.WSHub
	validator middleware.TokenValidator
	matches   MembershipChecker
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, validator middleware.TokenValidator, matches MembershipChecker) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		validator: validator,
		matches:   matches,
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.validator.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			return
		}

		frameType, matchID, err := parseFrame(data)
		if err != nil {
			log.Debug().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendError(userID, conn, "", "Invalid message format")
			continue
		}

		h.handleFrame(ctx, userID, conn, frameType, matchID)
	}
}

// parseFrame extracts the type and match_id of a client frame
func parseFrame(data []byte) (string, string, error) {
	p := framePool.Get()
	defer framePool.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return "", "", err
	}
	frameType := string(v.GetStringBytes("type"))
	if frameType == "" {
		return "", "", errors.New("type is required")
	}
	return frameType, string(v.GetStringBytes("match_id")), nil
}

func (h *WebSocketHandler) handleFrame(ctx context.Context, userID string, conn services.WSConn, frameType, matchID string) {
	switch frameType {
	case models.WSTypeSubscribe:
		if matchID == "" {
			h.sendError(userID, conn, "", "match_id is required")
			return
		}
		if _, err := h.matches.GetForMember(ctx, matchID, userID); err != nil {
			h.sendError(userID, conn, matchID, err.Error())
			return
		}
		h.hub.Subscribe(userID, conn, matchID)
		h.reply(userID, conn, models.WSMessage{Type: models.WSTypeSubscribed, MatchID: matchID})

	case models.WSTypeUnsubscribe:
		h.hub.Unsubscribe(userID, conn, matchID)
		h.reply(userID, conn, models.WSMessage{Type: models.WSTypeUnsubscribed, MatchID: matchID})

	default:
		h.sendError(userID, conn, matchID, "Unknown message type")
	}
}

// reply answers on the connection the frame came from
func (h *WebSocketHandler) reply(userID string, conn services.WSConn, msg models.WSMessage) {
	if err := h.hub.SendToConn(userID, conn, msg); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to reply on WebSocket")
	}
}

// sendError sends an error frame to the connection
func (h *WebSocketHandler) sendError(userID string, conn services.WSConn, matchID, message string) {
	h.reply(userID, conn, models.WSMessage{
		Type:    models.WSTypeError,
		MatchID: matchID,
		Message: message,
	})
}
