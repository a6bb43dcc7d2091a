package services

import (
	"context"
	"strings"
	"sync"

	"crew-match-backend/internal/models"
	"crew-match-backend/internal/repository"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*models.User)}
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PushToken = pushToken
	return nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles []*models.Profile
}

func (f *fakeProfiles) Create(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.profiles {
		if existing.UserID == p.UserID {
			return repository.ErrDuplicate
		}
	}
	cp := *p
	f.profiles = append(f.profiles, &cp)
	return nil
}

func (f *fakeProfiles) Update(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.profiles {
		if existing.UserID == p.UserID {
			cp := *p
			f.profiles[i] = &cp
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ListExcludingUser returns insertion order so the service sort is exercised
func (f *fakeProfiles) ListExcludingUser(_ context.Context, userID string) ([]*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Profile
	for _, p := range f.profiles {
		if p.UserID != userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProfiles) ListByUserIDs(_ context.Context, userIDs []string) ([]*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Profile
	for _, p := range f.profiles {
		for _, id := range userIDs {
			if p.UserID == id {
				cp := *p
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

type fakePhotos struct {
	mu     sync.Mutex
	photos map[string][]models.Photo
}

func newFakePhotos() *fakePhotos {
	return &fakePhotos{photos: make(map[string][]models.Photo)}
}

func (f *fakePhotos) Create(_ context.Context, photo *models.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	photo.Order = len(f.photos[photo.ProfileID])
	f.photos[photo.ProfileID] = append(f.photos[photo.ProfileID], *photo)
	return nil
}

func (f *fakePhotos) ListByProfileIDs(_ context.Context, profileIDs []string) (map[string][]models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]models.Photo)
	for _, id := range profileIDs {
		if photos, ok := f.photos[id]; ok {
			out[id] = append([]models.Photo(nil), photos...)
		}
	}
	return out, nil
}

type fakeMatches struct {
	mu      sync.Mutex
	matches []*models.Match
}

func (f *fakeMatches) Create(_ context.Context, match *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches {
		if m.HasUser(match.User1ID) && m.HasUser(match.User2ID) {
			return repository.ErrDuplicate
		}
	}
	cp := *match
	f.matches = append(f.matches, &cp)
	return nil
}

func (f *fakeMatches) GetByID(_ context.Context, id string) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMatches) GetByPair(_ context.Context, userA, userB string) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches {
		if m.HasUser(userA) && m.HasUser(userB) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMatches) ListByUserID(_ context.Context, userID string) ([]*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Match
	for _, m := range f.matches {
		if m.HasUser(userID) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMatches) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matches)
}

type fakeMessages struct {
	mu       sync.Mutex
	messages []*models.Message
}

func (f *fakeMessages) Create(_ context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *msg
	f.messages = append(f.messages, &cp)
	return nil
}

func (f *fakeMessages) ListByMatchID(_ context.Context, matchID string) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Message
	for _, m := range f.messages {
		if m.MatchID == matchID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSwipes struct {
	mu     sync.Mutex
	swipes []*models.Swipe
}

func (f *fakeSwipes) Create(_ context.Context, swipe *models.Swipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *swipe
	f.swipes = append(f.swipes, &cp)
	return nil
}

func (f *fakeSwipes) HasAccepted(_ context.Context, actorID, targetID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.swipes {
		if s.ActorID == actorID && s.TargetID == targetID && s.Direction == models.DirectionRight {
			return true, nil
		}
	}
	return false, nil
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	online   map[string]bool
	messages []*models.Message
	matches  []*models.Match
}

func newFakeBroadcaster(online ...string) *fakeBroadcaster {
	b := &fakeBroadcaster{online: make(map[string]bool)}
	for _, id := range online {
		b.online[id] = true
	}
	return b
}

func (b *fakeBroadcaster) PublishMessage(msg *models.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
}

func (b *fakeBroadcaster) NotifyMatchCreated(match *models.Match) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.matches = append(b.matches, match)
}

func (b *fakeBroadcaster) IsOnline(userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.online[userID]
}

type notification struct {
	userID, title, body string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) Notify(_ context.Context, userID, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{userID: userID, title: title, body: body})
	return nil
}

type fixedPolicy bool

func (p fixedPolicy) Accept(context.Context, string, string) (bool, error) {
	return bool(p), nil
}
