package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"crew-match-backend/internal/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// DefaultPollInterval is how often the channel re-reads history alongside the push stream
const DefaultPollInterval = 2 * time.Second

var (
	ErrNoMatch     = errors.New("no match with this user")
	ErrNotOpen     = errors.New("conversation is not open")
	ErrAlreadyOpen = errors.New("conversation was already opened")
)

// Participant is a user taking part in a conversation
type Participant interface {
	UserID() string
	DisplayName() string
}

// Peer is a Participant built from plain values
type Peer struct {
	ID   string
	Name string
}

func (p Peer) UserID() string { return p.ID }
func (p Peer) DisplayName() string { return p.Name }

// PeerFromProfile returns the conversation peer of a matched profile
func PeerFromProfile(p *models.Profile) Peer {
	return Peer{ID: p.UserID, Name: p.Name}
}

// Backend is the message store the channel talks to
type Backend interface {
	ResolveMatch(ctx context.Context, peerUserID string) (string, error)
	History(ctx context.Context, matchID string) ([]*models.Message, error)
	SendMessage(ctx context.Context, matchID, content string) (*models.Message, error)
	Subscribe(ctx context.Context, matchID string, deliver func(*models.Message)) (io.Closer, error)
}

// Line is a message as shown in the conversation
type Line struct {
	Message *models.Message
	Mine    bool
	Author  string
}

// Channel is the open conversation between the signed-in user and one match
type Channel struct {
	backend  Backend
	me       Participant
	logger   zerolog.Logger
	interval time.Duration
	sink     *Sink

	mu        sync.Mutex
	peer      Participant
	matchID   string
	draft     string
	scheduler gocron.Scheduler
	sub       io.Closer
	cancel    context.CancelFunc
	closed    bool
}

// Option configures a Channel
type Option func(*Channel)

// WithPollInterval overrides DefaultPollInterval
func WithPollInterval(d time.Duration) Option {
	return func(c *Channel) { c.interval = d }
}

// NewChannel creates an unopened channel for me
func NewChannel(backend Backend, me Participant, logger zerolog.Logger, opts ...Option) *Channel {
	c := &Channel{
		backend:  backend,
		me:       me,
		logger:   logger,
		interval: DefaultPollInterval,
		sink:     NewSink(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open resolves the match with peer, loads its history and starts the push
// stream and the poll job. Without a match no message operation is available.
// A failed history load leaves the conversation empty until the next poll.
func (c *Channel) Open(ctx context.Context, peer Participant) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.matchID != "" || c.closed {
		return ErrAlreadyOpen
	}
	if peer == nil || peer.UserID() == "" || peer.UserID() == c.me.UserID() {
		return ErrNoMatch
	}

	matchID, err := c.backend.ResolveMatch(ctx, peer.UserID())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoMatch, err)
	}
	if matchID == "" {
		return ErrNoMatch
	}

	history, err := c.backend.History(ctx, matchID)
	if err != nil {
		c.logger.Warn().Err(err).Str("match_id", matchID).Msg("Failed to load messages")
	}
	c.sink.Merge(history...)

	// background work outlives the Open call but not Close
	bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		cancel()
		return fmt.Errorf("failed to create poll scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(c.interval),
		gocron.NewTask(func() { c.poll(bgCtx, matchID) }),
		gocron.WithName("chat-poll-"+matchID),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule poll: %w", err)
	}

	sub, err := c.backend.Subscribe(bgCtx, matchID, func(m *models.Message) {
		c.sink.Merge(m)
	})
	if err != nil {
		// polling still delivers
		c.logger.Warn().Err(err).Str("match_id", matchID).Msg("Realtime subscription failed")
	}

	scheduler.Start()

	c.peer = peer
	c.matchID = matchID
	c.scheduler = scheduler
	c.sub = sub
	c.cancel = cancel

	c.logger.Debug().Str("match_id", matchID).Msg("Conversation opened")
	return nil
}

func (c *Channel) poll(ctx context.Context, matchID string) {
	history, err := c.backend.History(ctx, matchID)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn().Err(err).Str("match_id", matchID).Msg("Failed to poll messages")
		}
		return
	}
	c.sink.Merge(history...)
}

// Close stops the poll job and the push stream. A send already in flight
// completes; a closed channel cannot be reopened.
func (c *Channel) Close() error {
	c.mu.Lock()
	scheduler, sub, cancel := c.scheduler, c.sub, c.cancel
	c.scheduler, c.sub, c.cancel = nil, nil, nil
	c.closed = true
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	var errs []error
	if err := scheduler.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop poll: %w", err))
	}
	if sub != nil {
		if err := sub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close subscription: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SetDraft replaces the text being composed
func (c *Channel) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// Draft returns the text being composed
func (c *Channel) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Send sends the draft. Blank drafts are ignored. On failure the unsent text is
// put back in front of whatever was typed meanwhile.
func (c *Channel) Send(ctx context.Context) error {
	c.mu.Lock()
	matchID := c.matchID
	text := c.draft
	if matchID == "" || c.closed {
		c.mu.Unlock()
		return ErrNotOpen
	}
	if strings.TrimSpace(text) == "" {
		c.mu.Unlock()
		return nil
	}
	c.draft = ""
	c.mu.Unlock()

	msg, err := c.backend.SendMessage(ctx, matchID, strings.TrimSpace(text))
	if err != nil {
		c.mu.Lock()
		c.draft = restoreDraft(text, c.draft)
		c.mu.Unlock()
		c.logger.Error().Err(err).Str("match_id", matchID).Msg("Failed to send message")
		return err
	}

	c.sink.Merge(msg)
	return nil
}

func restoreDraft(unsent, typed string) string {
	if typed == "" {
		return unsent
	}
	return unsent + "\n" + typed
}

// MatchID returns the resolved match, empty when not open
func (c *Channel) MatchID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matchID
}

// Messages returns the conversation in creation order
func (c *Channel) Messages() []*models.Message {
	return c.sink.Messages()
}

// Lines returns the conversation attributed to its authors
func (c *Channel) Lines() []Line {
	c.mu.Lock()
	peer := c.peer
	c.mu.Unlock()

	messages := c.sink.Messages()
	lines := make([]Line, len(messages))
	for i, m := range messages {
		line := Line{Message: m, Mine: m.SenderID == c.me.UserID()}
		switch {
		case line.Mine:
			line.Author = c.me.DisplayName()
		case peer != nil:
			line.Author = peer.DisplayName()
		}
		lines[i] = line
	}
	return lines
}

// Updates signals whenever new messages arrive
func (c *Channel) Updates() <-chan struct{} {
	return c.sink.Updates()
}
