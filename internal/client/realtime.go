package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"crew-match-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/valyala/fastjson"
)

const subscribeTimeout = 10 * time.Second

var framePool fastjson.ParserPool

// Subscribe opens a realtime stream of messages inserted into matchID.
// deliver runs on the stream's reader goroutine.
func (c *Client) Subscribe(ctx context.Context, matchID string, deliver func(*models.Message)) (io.Closer, error) {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/ws"
	u.RawQuery = url.Values{"token": {c.Token()}}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial realtime: %w", err)
	}

	if err := conn.WriteJSON(models.WSMessage{Type: models.WSTypeSubscribe, MatchID: matchID}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	if err := awaitSubscribed(conn, matchID); err != nil {
		conn.Close()
		return nil, err
	}

	sub := &subscription{conn: conn, done: make(chan struct{})}
	go sub.run(c, matchID, deliver)
	return sub, nil
}

func awaitSubscribed(conn *websocket.Conn, matchID string) error {
	if err := conn.SetReadDeadline(time.Now().Add(subscribeTimeout)); err != nil {
		return err
	}
	defer conn.SetReadDeadline(time.Time{})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read subscription reply: %w", err)
		}
		frameType, frameMatch, message, _, err := parseFrame(data)
		if err != nil {
			return err
		}
		switch frameType {
		case models.WSTypeSubscribed:
			if frameMatch == matchID {
				return nil
			}
		case models.WSTypeError:
			return fmt.Errorf("subscription rejected: %s", message)
		}
	}
}

// parseFrame splits a server frame into its type, match id, error text and data payload
func parseFrame(data []byte) (frameType, matchID, message string, payload []byte, err error) {
	p := framePool.Get()
	defer framePool.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return "", "", "", nil, fmt.Errorf("invalid realtime frame: %w", err)
	}
	if d := v.Get("data"); d != nil {
		payload = d.MarshalTo(nil)
	}
	return string(v.GetStringBytes("type")),
		string(v.GetStringBytes("match_id")),
		string(v.GetStringBytes("message")),
		payload, nil
}

type subscription struct {
	conn      *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscription) run(c *Client, matchID string, deliver func(*models.Message)) {
	defer close(s.done)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn().Err(err).Str("match_id", matchID).Msg("Realtime stream closed")
			}
			return
		}

		frameType, frameMatch, _, payload, err := parseFrame(data)
		if err != nil {
			c.logger.Debug().Err(err).Msg("Dropping realtime frame")
			continue
		}
		if frameType != models.WSTypeMessageInserted || frameMatch != matchID || payload == nil {
			continue
		}

		var msg models.Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.logger.Debug().Err(err).Msg("Dropping malformed message frame")
			continue
		}
		deliver(&msg)
	}
}

// Close ends the stream and waits for the reader to exit
func (s *subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		err = s.conn.Close()
	})
	<-s.done
	return err
}
