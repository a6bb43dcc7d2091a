package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"crew-match-backend/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps status codes onto the package sentinels
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Client talks to the crew-match backend on behalf of one signed-in user
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithToken starts the client with an existing session token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the backend at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns the current session token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := *c.baseURL
	u.Path += "/api/v1" + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("Backend returned an error")
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// SignUp creates an account and keeps its session token
func (c *Client) SignUp(ctx context.Context, email, password string, metadata models.Metadata) (*models.Identity, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup", nil, models.SignUpRequest{
		Email:    email,
		Password: password,
		Metadata: metadata,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.setToken(resp.Token)
	return &resp.User, nil
}

// SignIn authenticates and keeps the session token
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/signin", nil, models.SignInRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.setToken(resp.Token)
	return &resp.User, nil
}

// SignOut drops the session token; tokens are stateless on the backend
func (c *Client) SignOut(context.Context) error {
	c.setToken("")
	return nil
}

// Restore returns the identity of the held token, or nil when there is no
// usable session
func (c *Client) Restore(ctx context.Context) (*models.Identity, error) {
	if c.Token() == "" {
		return nil, nil
	}
	identity, err := c.Me(ctx)
	if errors.Is(err, ErrUnauthorized) {
		c.setToken("")
		return nil, nil
	}
	return identity, err
}

// Me returns the signed-in identity
func (c *Client) Me(ctx context.Context) (*models.Identity, error) {
	var identity models.Identity
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// CreateProfile submits the onboarding profile
func (c *Client) CreateProfile(ctx context.Context, in models.ProfileInput) (*models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodPost, "/profiles", nil, in, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// MyProfile returns the caller's profile; ErrNotFound means onboarding is incomplete
func (c *Client) MyProfile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodGet, "/profiles/me", nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Candidates returns the swipe deck
func (c *Client) Candidates(ctx context.Context) ([]*models.Profile, error) {
	var resp struct {
		Profiles []*models.Profile `json:"profiles"`
	}
	if err := c.do(ctx, http.MethodGet, "/profiles", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Profiles, nil
}

func (c *Client) swipe(ctx context.Context, candidateUserID, direction string) (*models.SwipeResult, error) {
	var result models.SwipeResult
	err := c.do(ctx, http.MethodPost, "/swipes", nil, models.SwipeRequest{
		CandidateUserID: candidateUserID,
		Direction:       direction,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// EvaluateAccept commits a right swipe and reports the match, if any
func (c *Client) EvaluateAccept(ctx context.Context, candidateUserID string) (*models.Match, bool, error) {
	result, err := c.swipe(ctx, candidateUserID, models.DirectionRight)
	if err != nil {
		return nil, false, err
	}
	return result.Match, result.Matched, nil
}

// Reject commits a left swipe
func (c *Client) Reject(ctx context.Context, candidateUserID string) error {
	_, err := c.swipe(ctx, candidateUserID, models.DirectionLeft)
	return err
}

// Matches returns the caller's matches with counterpart profiles
func (c *Client) Matches(ctx context.Context) ([]models.MatchWithProfile, error) {
	var resp struct {
		Matches []models.MatchWithProfile `json:"matches"`
	}
	if err := c.do(ctx, http.MethodGet, "/matches", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// ResolveMatch returns the id of the match between the caller and peerUserID
func (c *Client) ResolveMatch(ctx context.Context, peerUserID string) (string, error) {
	var resp struct {
		MatchID string `json:"match_id"`
	}
	if err := c.do(ctx, http.MethodGet, "/matches/resolve", url.Values{"user_id": {peerUserID}}, nil, &resp); err != nil {
		return "", err
	}
	return resp.MatchID, nil
}

// History returns the messages of a match, oldest first
func (c *Client) History(ctx context.Context, matchID string) ([]*models.Message, error) {
	var resp struct {
		Messages []*models.Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/matches/"+matchID+"/messages", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendMessage appends a message to a match
func (c *Client) SendMessage(ctx context.Context, matchID, content string) (*models.Message, error) {
	var msg models.Message
	err := c.do(ctx, http.MethodPost, "/matches/"+matchID+"/messages", nil, models.SendMessageRequest{
		Content: content,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
