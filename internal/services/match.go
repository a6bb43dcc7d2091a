package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"crew-match-backend/internal/models"
	"crew-match-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultAcceptProbability is the share of right swipes the random policy turns into matches
const DefaultAcceptProbability = 0.3

// AcceptancePolicy decides whether a right swipe of userID on candidateID creates a match
type AcceptancePolicy interface {
	Accept(ctx context.Context, userID, candidateID string) (bool, error)
}

// RandomPolicy accepts a right swipe when a uniform draw falls under Probability.
// It stands in for real mutual interest and exists so a fresh deployment with
// no swipe history still produces matches.
type RandomPolicy struct {
	Probability float64
	// Draw returns a value in [0, 1); nil uses math/rand/v2, which is seeded per process
	Draw func() float64
}

// Accept draws once per call
func (p RandomPolicy) Accept(context.Context, string, string) (bool, error) {
	draw := p.Draw
	if draw == nil {
		draw = rand.Float64
	}
	return draw() < p.Probability, nil
}

// MutualPolicy accepts a right swipe only when the candidate already swiped right on the user
type MutualPolicy struct {
	Swipes SwipeStore
}

// Accept looks up the candidate's earlier swipe
func (p MutualPolicy) Accept(ctx context.Context, userID, candidateID string) (bool, error) {
	return p.Swipes.HasAccepted(ctx, candidateID, userID)
}

// MatchService is the match ledger
type MatchService struct {
	matchRepo      MatchStore
	swipeRepo      SwipeStore
	profileService *ProfileService
	policy         AcceptancePolicy
	broadcaster    Broadcaster
	notifier       Notifier
}

// NewMatchService creates a new match service
func NewMatchService(
	matchRepo MatchStore,
	swipeRepo SwipeStore,
	profileService *ProfileService,
	policy AcceptancePolicy,
	broadcaster Broadcaster,
	notifier Notifier,
) *MatchService {
	return &MatchService{
		matchRepo:      matchRepo,
		swipeRepo:      swipeRepo,
		profileService: profileService,
		policy:         policy,
		broadcaster:    broadcaster,
		notifier:       notifier,
	}
}

// Swipe records a committed swipe and evaluates a match for right swipes
func (s *MatchService) Swipe(ctx context.Context, userID string, req models.SwipeRequest) (*models.SwipeResult, error) {
	if req.Direction != models.DirectionLeft && req.Direction != models.DirectionRight {
		return nil, ErrInvalidDirection
	}
	if _, err := uuid.Parse(req.CandidateUserID); err != nil {
		return nil, fmt.Errorf("%w: candidate_user_id must be a uuid", ErrInvalidInput)
	}
	if req.CandidateUserID == userID {
		return nil, ErrSelfSwipe
	}

	swipe := &models.Swipe{
		ID:        uuid.New().String(),
		ActorID:   userID,
		TargetID:  req.CandidateUserID,
		Direction: req.Direction,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.swipeRepo.Create(ctx, swipe); err != nil {
		log.Warn().
			Err(err).
			Str("user_id", userID).
			Str("candidate_id", req.CandidateUserID).
			Msg("Failed to record swipe")
	}

	if req.Direction == models.DirectionLeft {
		return &models.SwipeResult{}, nil
	}

	match, matched, err := s.EvaluateAccept(ctx, userID, req.CandidateUserID)
	if err != nil {
		return nil, err
	}
	return &models.SwipeResult{Matched: matched, Match: match}, nil
}

// EvaluateAccept asks the policy whether the right swipe matches and, if so,
// persists the match. An existing match for the pair is returned instead of
// inserting a second one.
func (s *MatchService) EvaluateAccept(ctx context.Context, userID, candidateID string) (*models.Match, bool, error) {
	ok, err := s.policy.Accept(ctx, userID, candidateID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to evaluate match: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	existing, err := s.matchRepo.GetByPair(ctx, userID, candidateID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to check existing match: %w", err)
	}

	match := &models.Match{
		ID:        uuid.New().String(),
		User1ID:   userID,
		User2ID:   candidateID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// the counterpart matched at the same moment
			existing, getErr := s.matchRepo.GetByPair(ctx, userID, candidateID)
			if getErr == nil {
				return existing, true, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create match: %w", err)
	}

	log.Info().
		Str("match_id", match.ID).
		Str("user1_id", match.User1ID).
		Str("user2_id", match.User2ID).
		Msg("Match created")

	s.announce(ctx, match)

	return match, true, nil
}

func (s *MatchService) announce(ctx context.Context, match *models.Match) {
	s.broadcaster.NotifyMatchCreated(match)

	if s.broadcaster.IsOnline(match.User2ID) {
		return
	}
	if err := s.notifier.Notify(ctx, match.User2ID, "It's a Match!", "Someone on the crew deck liked you too."); err != nil {
		log.Error().Err(err).Str("user_id", match.User2ID).Msg("Failed to push match notification")
	}
}

// ListMatches returns every match touching userID resolved to the counterpart's profile.
// Matches whose counterpart has no profile are skipped.
func (s *MatchService) ListMatches(ctx context.Context, userID string) ([]models.MatchWithProfile, error) {
	matches, err := s.matchRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	counterparts := make([]string, 0, len(matches))
	for _, m := range matches {
		if other, ok := m.Counterpart(userID); ok {
			counterparts = append(counterparts, other)
		}
	}

	profiles, err := s.profileService.ProfilesByUserIDs(ctx, counterparts)
	if err != nil {
		return nil, err
	}

	result := make([]models.MatchWithProfile, 0, len(matches))
	for _, m := range matches {
		other, _ := m.Counterpart(userID)
		p, ok := profiles[other]
		if !ok {
			log.Debug().Str("match_id", m.ID).Str("user_id", other).Msg("Match counterpart has no profile")
			continue
		}
		result = append(result, models.MatchWithProfile{Match: *m, Profile: *p})
	}

	return result, nil
}

// ResolveMatchID finds the match between two users in either order
func (s *MatchService) ResolveMatchID(ctx context.Context, userA, userB string) (string, error) {
	if _, err := uuid.Parse(userB); err != nil {
		return "", ErrMatchNotFound
	}
	match, err := s.matchRepo.GetByPair(ctx, userA, userB)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrMatchNotFound
		}
		return "", err
	}
	return match.ID, nil
}

// GetForMember returns the match if userID is one of its users
func (s *MatchService) GetForMember(ctx context.Context, matchID, userID string) (*models.Match, error) {
	if _, err := uuid.Parse(matchID); err != nil {
		return nil, ErrMatchNotFound
	}
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if !match.HasUser(userID) {
		return nil, ErrNotMatchMember
	}
	return match, nil
}
