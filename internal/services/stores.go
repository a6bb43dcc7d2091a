package services

import (
	"context"
	"errors"

	"crew-match-backend/internal/models"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrProfileExists      = errors.New("profile already exists")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrNotMatchMember     = errors.New("user is not a member of this match")
	ErrEmptyMessage       = errors.New("message content is empty")
	ErrSelfSwipe          = errors.New("cannot swipe on yourself")
	ErrInvalidDirection   = errors.New("direction must be left or right")
)

// UserStore persists accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// ProfileStore persists crew profiles
type ProfileStore interface {
	Create(ctx context.Context, p *models.Profile) error
	Update(ctx context.Context, p *models.Profile) error
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	ListExcludingUser(ctx context.Context, userID string) ([]*models.Profile, error)
	ListByUserIDs(ctx context.Context, userIDs []string) ([]*models.Profile, error)
}

// PhotoStore persists profile photos
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	ListByProfileIDs(ctx context.Context, profileIDs []string) (map[string][]models.Photo, error)
}

// MatchStore persists matches
type MatchStore interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	GetByPair(ctx context.Context, userA, userB string) (*models.Match, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.Match, error)
}

// MessageStore persists chat messages
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByMatchID(ctx context.Context, matchID string) ([]*models.Message, error)
}

// SwipeStore persists committed swipes
type SwipeStore interface {
	Create(ctx context.Context, swipe *models.Swipe) error
	HasAccepted(ctx context.Context, actorID, targetID string) (bool, error)
}

// Broadcaster delivers realtime events to connected clients
type Broadcaster interface {
	PublishMessage(msg *models.Message)
	NotifyMatchCreated(match *models.Match)
	IsOnline(userID string) bool
}

// Notifier delivers push notifications to offline users
type Notifier interface {
	Notify(ctx context.Context, userID, title, body string) error
}
