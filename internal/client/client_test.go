package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"crew-match-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	swipes   []models.SwipeRequest
	messages []*models.Message
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer tok" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
		return false
	}
	return true
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		var req models.SignInRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, models.AuthResponse{User: models.Identity{ID: "u1", Email: req.Email}, Token: "tok"})
	})

	mux.HandleFunc("GET /api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, models.Identity{ID: "u1", Email: "x@y.com"})
	})

	mux.HandleFunc("POST /api/v1/swipes", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		var req models.SwipeRequest
		json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.swipes = append(b.swipes, req)
		b.mu.Unlock()
		if req.Direction == models.DirectionRight {
			writeJSON(w, http.StatusOK, models.SwipeResult{Matched: true, Match: &models.Match{ID: "m1", User1ID: "u1", User2ID: req.CandidateUserID}})
			return
		}
		writeJSON(w, http.StatusOK, models.SwipeResult{})
	})

	mux.HandleFunc("GET /api/v1/matches/resolve", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		if r.URL.Query().Get("user_id") != "u2" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "match not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"match_id": "m1"})
	})

	mux.HandleFunc("GET /api/v1/matches/{match_id}/messages", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"messages": b.messages})
	})

	mux.HandleFunc("POST /api/v1/matches/{match_id}/messages", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		var req struct {
			Content string `json:"content"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		msg := &models.Message{ID: "msg-1", MatchID: r.PathValue("match_id"), SenderID: "u1", Content: req.Content, CreatedAt: time.Now()}
		b.mu.Lock()
		b.messages = append(b.messages, msg)
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, msg)
	})

	upgrader := websocket.Upgrader{}
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var frame models.WSMessage
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		if frame.MatchID != "m1" {
			conn.WriteJSON(models.WSMessage{Type: models.WSTypeError, MatchID: frame.MatchID, Message: "match not found"})
			return
		}
		conn.WriteJSON(models.WSMessage{Type: models.WSTypeSubscribed, MatchID: "m1"})
		conn.WriteJSON(models.WSMessage{Type: models.WSTypeMessageInserted, MatchID: "other", Data: models.Message{ID: "x", MatchID: "other"}})
		conn.WriteJSON(models.WSMessage{Type: models.WSTypeMessageInserted, MatchID: "m1", Data: models.Message{ID: "pushed", MatchID: "m1", Content: "ahoy"}})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	return mux
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *fakeBackend) {
	t.Helper()

	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c, backend
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com")
	require.Error(t, err)

	_, err = New("")
	require.Error(t, err)
}

func TestSignInRestoreAndSignOut(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	identity, err := c.Restore(ctx)
	require.NoError(t, err)
	require.Nil(t, identity)

	_, err = c.SignIn(ctx, "x@y.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "invalid email or password", apiErr.Message)
	require.ErrorIs(t, err, ErrUnauthorized)

	identity, err = c.SignIn(ctx, "x@y.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "u1", identity.ID)
	require.Equal(t, "tok", c.Token())

	identity, err = c.Restore(ctx)
	require.NoError(t, err)
	require.Equal(t, "u1", identity.ID)

	require.NoError(t, c.SignOut(ctx))
	require.Empty(t, c.Token())
}

func TestRestoreDropsRejectedToken(t *testing.T) {
	c, _ := newTestClient(t, WithToken("stale"))

	identity, err := c.Restore(context.Background())
	require.NoError(t, err)
	require.Nil(t, identity)
	require.Empty(t, c.Token())
}

func TestSwipes(t *testing.T) {
	c, backend := newTestClient(t, WithToken("tok"))
	ctx := context.Background()

	match, matched, err := c.EvaluateAccept(ctx, "u2")
	require.NoError(t, err)
	require.True(t, matched)
	require.Equal(t, "m1", match.ID)

	require.NoError(t, c.Reject(ctx, "u3"))

	require.Equal(t, []models.SwipeRequest{
		{CandidateUserID: "u2", Direction: models.DirectionRight},
		{CandidateUserID: "u3", Direction: models.DirectionLeft},
	}, backend.swipes)
}

func TestConversationCalls(t *testing.T) {
	c, _ := newTestClient(t, WithToken("tok"))
	ctx := context.Background()

	matchID, err := c.ResolveMatch(ctx, "u2")
	require.NoError(t, err)
	require.Equal(t, "m1", matchID)

	_, err = c.ResolveMatch(ctx, "u9")
	require.ErrorIs(t, err, ErrNotFound)

	msg, err := c.SendMessage(ctx, "m1", "hello")
	require.NoError(t, err)
	require.Equal(t, "m1", msg.MatchID)

	history, err := c.History(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "hello", history[0].Content)
}

func TestSubscribeDeliversMatchMessages(t *testing.T) {
	c, _ := newTestClient(t, WithToken("tok"))

	got := make(chan *models.Message, 4)
	sub, err := c.Subscribe(context.Background(), "m1", func(m *models.Message) { got <- m })
	require.NoError(t, err)

	select {
	case m := <-got:
		require.Equal(t, "pushed", m.ID)
		require.Equal(t, "ahoy", m.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}

	require.NoError(t, sub.Close())
	require.Empty(t, got)

	_, err = c.Subscribe(context.Background(), "m2", func(*models.Message) {})
	require.Error(t, err)
}
