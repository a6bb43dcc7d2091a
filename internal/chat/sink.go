package chat

import (
	"sort"
	"sync"

	"crew-match-backend/internal/models"
)

// Sink merges messages from every producer into one list keyed by message id.
// The list is kept in creation order and never shrinks.
type Sink struct {
	mu       sync.RWMutex
	seen     map[string]struct{}
	messages []*models.Message
	updates  chan struct{}
}

// NewSink creates an empty sink
func NewSink() *Sink {
	return &Sink{
		seen:    make(map[string]struct{}),
		updates: make(chan struct{}, 1),
	}
}

// Merge adds the messages not seen before and returns how many were added
func (s *Sink) Merge(msgs ...*models.Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, m := range msgs {
		if m == nil || m.ID == "" {
			continue
		}
		if _, ok := s.seen[m.ID]; ok {
			continue
		}
		s.seen[m.ID] = struct{}{}
		s.insertLocked(m)
		added++
	}

	if added > 0 {
		select {
		case s.updates <- struct{}{}:
		default:
		}
	}
	return added
}

// insertLocked places m after every message created no later than it
func (s *Sink) insertLocked(m *models.Message) {
	i := sort.Search(len(s.messages), func(i int) bool {
		return s.messages[i].CreatedAt.After(m.CreatedAt)
	})
	s.messages = append(s.messages, nil)
	copy(s.messages[i+1:], s.messages[i:])
	s.messages[i] = m
}

// Messages returns a snapshot of the merged list
func (s *Sink) Messages() []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Message(nil), s.messages...)
}

// Len returns the number of merged messages
func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Updates signals after merges that added messages; signals coalesce
func (s *Sink) Updates() <-chan struct{} {
	return s.updates
}
