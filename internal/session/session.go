package session

import (
	"context"
	"sync"

	"crew-match-backend/internal/models"

	"github.com/rs/zerolog"
)

// Authenticator is the identity provider behind a Store
type Authenticator interface {
	// Restore returns the persisted identity, or nil when signed out
	Restore(ctx context.Context) (*models.Identity, error)
	SignUp(ctx context.Context, email, password string, metadata models.Metadata) (*models.Identity, error)
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	SignOut(ctx context.Context) error
}

// Store holds the signed-in identity of the application
type Store struct {
	auth   Authenticator
	logger zerolog.Logger

	mu          sync.RWMutex
	current     *models.Identity
	loading     bool
	subscribers map[chan *models.Identity]struct{}
}

// NewStore creates a store that stays loading until Init runs
func NewStore(auth Authenticator, logger zerolog.Logger) *Store {
	return &Store{
		auth:        auth,
		logger:      logger,
		loading:     true,
		subscribers: make(map[chan *models.Identity]struct{}),
	}
}

// Init restores the persisted identity and clears the loading flag
func (s *Store) Init(ctx context.Context) error {
	identity, err := s.auth.Restore(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to restore session")
	}
	s.set(identity)
	return err
}

// Current returns a copy of the signed-in identity, or nil
func (s *Store) Current() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Loading reports whether the initial restore is still pending
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SignUp creates an account and signs it in
func (s *Store) SignUp(ctx context.Context, email, password string, metadata models.Metadata) error {
	identity, err := s.auth.SignUp(ctx, email, password, metadata)
	if err != nil {
		return err
	}
	s.set(identity)
	return nil
}

// SignIn authenticates an existing account
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	identity, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	s.set(identity)
	return nil
}

// SignOut ends the session; the local identity is cleared even if the provider fails
func (s *Store) SignOut(ctx context.Context) error {
	err := s.auth.SignOut(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Sign-out failed at the provider")
	}
	s.set(nil)
	return err
}

// Subscribe returns a channel receiving the identity after every change
// (nil on sign-out) and a function that stops the subscription. Slow readers
// only see the latest identity.
func (s *Store) Subscribe() (<-chan *models.Identity, func()) {
	ch := make(chan *models.Identity, 1)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) set(identity *models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = identity
	s.loading = false

	for ch := range s.subscribers {
		var cp *models.Identity
		if identity != nil {
			v := *identity
			cp = &v
		}
		select {
		case <-ch:
		default:
		}
		ch <- cp
	}
}
