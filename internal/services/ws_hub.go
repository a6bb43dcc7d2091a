package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"crew-match-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSConn is the part of a websocket connection the hub writes to
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type wsClient struct {
	userID string
	conn   WSConn

	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections and per-match subscriptions. A user may
// hold several connections; each subscribes to matches on its own.
type WSHub struct {
	mu            sync.RWMutex
	clients       map[string]map[WSConn]*wsClient
	subscriptions map[string]map[*wsClient]struct{}
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		clients:       make(map[string]map[WSConn]*wsClient),
		subscriptions: make(map[string]map[*wsClient]struct{}),
	}
}

// Register registers a new WebSocket connection for a user
func (h *WSHub) Register(userID string, conn WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[userID]
	if !ok {
		conns = make(map[WSConn]*wsClient)
		h.clients[userID] = conns
	}
	if _, exists := conns[conn]; exists {
		return
	}
	conns[conn] = &wsClient{userID: userID, conn: conn}

	log.Info().Str("user_id", userID).Int("connections", len(conns)).Msg("WebSocket connection registered")
}

// Unregister closes conn and drops its subscriptions. Other connections of
// the same user are left in place.
func (h *WSHub) Unregister(userID string, conn WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[userID][conn]
	if !ok {
		return
	}

	client.conn.Close()
	delete(h.clients[userID], conn)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
	for matchID, subs := range h.subscriptions {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, matchID)
		}
	}

	log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
}

// Subscribe adds the connection of userID to the subscribers of matchID
func (h *WSHub) Subscribe(userID string, conn WSConn, matchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[userID][conn]
	if !ok {
		return
	}
	subs, ok := h.subscriptions[matchID]
	if !ok {
		subs = make(map[*wsClient]struct{})
		h.subscriptions[matchID] = subs
	}
	subs[client] = struct{}{}
}

// Unsubscribe removes the connection of userID from the subscribers of matchID
func (h *WSHub) Unsubscribe(userID string, conn WSConn, matchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[userID][conn]
	if !ok {
		return
	}
	subs, ok := h.subscriptions[matchID]
	if !ok {
		return
	}
	delete(subs, client)
	if len(subs) == 0 {
		delete(h.subscriptions, matchID)
	}
}

// Subscribers returns the users with at least one connection subscribed to matchID
func (h *WSHub) Subscribers(matchID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]struct{})
	users := make([]string, 0, len(h.subscriptions[matchID]))
	for client := range h.subscriptions[matchID] {
		if _, dup := seen[client.userID]; dup {
			continue
		}
		seen[client.userID] = struct{}{}
		users = append(users, client.userID)
	}
	return users
}

// SendToUser sends a message to every connection of a user
func (h *WSHub) SendToUser(userID string, message models.WSMessage) error {
	h.mu.RLock()
	targets := make([]*wsClient, 0, len(h.clients[userID]))
	for _, client := range h.clients[userID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return fmt.Errorf("user %s is not connected", userID)
	}
	return h.send(targets, message)
}

// SendToConn sends a message to one connection of a user
func (h *WSHub) SendToConn(userID string, conn WSConn, message models.WSMessage) error {
	h.mu.RLock()
	client, ok := h.clients[userID][conn]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("connection of user %s is not registered", userID)
	}
	return h.send([]*wsClient{client}, message)
}

func (h *WSHub) send(targets []*wsClient, message models.WSMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	var errs []error
	for _, client := range targets {
		if err := client.write(data); err != nil {
			h.Unregister(client.userID, client.conn)
			errs = append(errs, fmt.Errorf("failed to send message: %w", err))
		}
	}
	return errors.Join(errs...)
}

// IsOnline checks if a user has any open connection
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// PublishMessage delivers an inserted message to every connection subscribed to its match
func (h *WSHub) PublishMessage(msg *models.Message) {
	frame := models.WSMessage{
		Type:    models.WSTypeMessageInserted,
		MatchID: msg.MatchID,
		Data:    msg,
	}

	h.mu.RLock()
	targets := make([]*wsClient, 0, len(h.subscriptions[msg.MatchID]))
	for client := range h.subscriptions[msg.MatchID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	if err := h.send(targets, frame); err != nil {
		log.Error().
			Err(err).
			Str("match_id", msg.MatchID).
			Msg("Failed to publish message")
	}
}

// NotifyMatchCreated tells both users of a new match, if they are connected
func (h *WSHub) NotifyMatchCreated(match *models.Match) {
	frame := models.WSMessage{
		Type:    models.WSTypeMatchCreated,
		MatchID: match.ID,
		Data:    match,
	}

	for _, userID := range []string{match.User1ID, match.User2ID} {
		if !h.IsOnline(userID) {
			continue
		}
		if err := h.SendToUser(userID, frame); err != nil {
			log.Error().
				Err(err).
				Str("user_id", userID).
				Str("match_id", match.ID).
				Msg("Failed to notify match creation")
		}
	}
}

// Close closes every registered connection
func (h *WSHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, conns := range h.clients {
		for _, client := range conns {
			client.conn.Close()
		}
		delete(h.clients, userID)
	}
	h.subscriptions = make(map[string]map[*wsClient]struct{})
}
