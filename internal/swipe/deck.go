package swipe

import (
	"context"
	"errors"
	"math"
	"sync"

	"crew-match-backend/internal/models"

	"github.com/rs/zerolog"
)

const (
	// CommitThreshold is the horizontal drag distance past which a release commits
	CommitThreshold = 100.0
	// RotationFactor converts horizontal offset into card rotation in degrees
	RotationFactor = 0.1

	visibleCards = 3
)

var (
	ErrSwipeInFlight = errors.New("a swipe is already in flight")
	ErrExhausted     = errors.New("no more profiles")
)

// Direction of a committed swipe
type Direction string

const (
	Left  Direction = models.DirectionLeft
	Right Direction = models.DirectionRight
)

// Evaluator decides whether a right swipe becomes a match
type Evaluator interface {
	EvaluateAccept(ctx context.Context, candidateUserID string) (*models.Match, bool, error)
}

// Rejecter is implemented by evaluators that also record left swipes
type Rejecter interface {
	Reject(ctx context.Context, candidateUserID string) error
}

// Outcome describes what a press-release or button swipe did
type Outcome struct {
	Committed bool
	Direction Direction
	Profile   *models.Profile
	Matched   bool
	Match     *models.Match
}

// Deck is the swipeable stack of candidate profiles
type Deck struct {
	evaluator Evaluator
	logger    zerolog.Logger

	mu       sync.Mutex
	profiles []*models.Profile
	index    int
	inFlight bool
	onMatch  func(*models.Match, *models.Profile)

	dragging         bool
	originX, originY float64
	offsetX, offsetY float64
}

// NewDeck creates an empty deck
func NewDeck(evaluator Evaluator, logger zerolog.Logger) *Deck {
	return &Deck{evaluator: evaluator, logger: logger}
}

// OnMatch registers fn to run after a right swipe produced a match
func (d *Deck) OnMatch(fn func(*models.Match, *models.Profile)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onMatch = fn
}

// Load replaces the deck contents and starts from the first card
func (d *Deck) Load(profiles []*models.Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles = append([]*models.Profile(nil), profiles...)
	d.index = 0
	d.resetDragLocked()
}

// Current returns the top card, or nil when exhausted
func (d *Deck) Current() *models.Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.exhaustedLocked() {
		return nil
	}
	return d.profiles[d.index]
}

// Visible returns the top card and up to two cards beneath it
func (d *Deck) Visible() []*models.Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.exhaustedLocked() {
		return nil
	}
	end := min(d.index+visibleCards, len(d.profiles))
	return append([]*models.Profile(nil), d.profiles[d.index:end]...)
}

// Index returns the position of the top card
func (d *Deck) Index() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.index
}

// Exhausted reports the "no more profiles" state
func (d *Deck) Exhausted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.exhaustedLocked()
}

func (d *Deck) exhaustedLocked() bool {
	return d.index >= len(d.profiles)
}

// Reset starts over from the first card
func (d *Deck) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.index = 0
	d.resetDragLocked()
}

// InFlight reports whether a committed swipe is awaiting evaluation
func (d *Deck) InFlight() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight
}

// Press starts a drag at x, y. Ignored while a swipe is in flight.
func (d *Deck) Press(x, y float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight || d.exhaustedLocked() {
		return
	}
	d.dragging = true
	d.originX, d.originY = x, y
	d.offsetX, d.offsetY = 0, 0
}

// Move updates the drag offset
func (d *Deck) Move(x, y float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dragging {
		return
	}
	d.offsetX = x - d.originX
	d.offsetY = y - d.originY
}

// Offset returns the card displacement and rotation in degrees
func (d *Deck) Offset() (x, y, rotation float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.offsetX, d.offsetY, d.offsetX * RotationFactor
}

// Release ends the drag. Past the threshold the card is committed in the
// direction of the drag, otherwise it springs back.
func (d *Deck) Release(ctx context.Context) (Outcome, error) {
	d.mu.Lock()
	if !d.dragging {
		d.mu.Unlock()
		return Outcome{}, nil
	}
	d.dragging = false
	offset := d.offsetX
	if math.Abs(offset) <= CommitThreshold {
		d.resetDragLocked()
		d.mu.Unlock()
		return Outcome{}, nil
	}
	d.mu.Unlock()

	dir := Left
	if offset > 0 {
		dir = Right
	}
	return d.Swipe(ctx, dir)
}

// Swipe commits the top card in dir, as the accept and reject buttons do
func (d *Deck) Swipe(ctx context.Context, dir Direction) (Outcome, error) {
	d.mu.Lock()
	if d.inFlight {
		d.mu.Unlock()
		return Outcome{}, ErrSwipeInFlight
	}
	if d.exhaustedLocked() {
		d.mu.Unlock()
		return Outcome{}, ErrExhausted
	}
	d.inFlight = true
	d.dragging = false
	profile := d.profiles[d.index]
	d.mu.Unlock()

	out := Outcome{Committed: true, Direction: dir, Profile: profile}

	switch dir {
	case Right:
		match, matched, err := d.evaluator.EvaluateAccept(ctx, profile.UserID)
		if err != nil {
			d.logger.Error().Err(err).Str("candidate_id", profile.UserID).Msg("Failed to evaluate match")
		} else {
			out.Matched, out.Match = matched, match
		}
	default:
		if r, ok := d.evaluator.(Rejecter); ok {
			if err := r.Reject(ctx, profile.UserID); err != nil {
				d.logger.Warn().Err(err).Str("candidate_id", profile.UserID).Msg("Failed to record left swipe")
			}
		}
	}

	d.mu.Lock()
	d.index++
	d.inFlight = false
	d.resetDragLocked()
	onMatch := d.onMatch
	d.mu.Unlock()

	if out.Matched && onMatch != nil {
		onMatch(out.Match, profile)
	}
	return out, nil
}

func (d *Deck) resetDragLocked() {
	d.dragging = false
	d.offsetX, d.offsetY = 0, 0
}
