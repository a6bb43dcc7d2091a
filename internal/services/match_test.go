package services

import (
	"context"
	"testing"
	"time"

	"crew-match-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type matchFixture struct {
	svc         *MatchService
	matches     *fakeMatches
	swipes      *fakeSwipes
	profiles    *fakeProfiles
	broadcaster *fakeBroadcaster
	notifier    *fakeNotifier
}

func newMatchFixture(policy AcceptancePolicy, online ...string) *matchFixture {
	f := &matchFixture{
		matches:     &fakeMatches{},
		swipes:      &fakeSwipes{},
		profiles:    &fakeProfiles{},
		broadcaster: newFakeBroadcaster(online...),
		notifier:    &fakeNotifier{},
	}
	if policy == nil {
		policy = MutualPolicy{Swipes: f.swipes}
	}
	profileService := NewProfileService(f.profiles, newFakePhotos())
	f.svc = NewMatchService(f.matches, f.swipes, profileService, policy, f.broadcaster, f.notifier)
	return f
}

func TestRandomPolicyThreshold(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		draw float64
		want bool
	}{
		{0.0, true},
		{0.12, true},
		{0.2999, true},
		{0.30, false},
		{0.75, false},
	}
	for _, tc := range cases {
		draw := tc.draw
		p := RandomPolicy{Probability: DefaultAcceptProbability, Draw: func() float64 { return draw }}
		got, err := p.Accept(ctx, "a", "b")
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "draw %v", tc.draw)
	}
}

func TestRandomPolicyDefaultDrawStaysInRange(t *testing.T) {
	ctx := context.Background()

	always := RandomPolicy{Probability: 1}
	never := RandomPolicy{Probability: 0}
	for i := 0; i < 100; i++ {
		ok, err := always.Accept(ctx, "a", "b")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = never.Accept(ctx, "a", "b")
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestEvaluateAcceptRejectedPersistsNothing(t *testing.T) {
	f := newMatchFixture(fixedPolicy(false))

	match, matched, err := f.svc.EvaluateAccept(context.Background(), uuid.New().String(), uuid.New().String())
	require.NoError(t, err)
	require.False(t, matched)
	require.Nil(t, match)
	require.Zero(t, f.matches.count())
	require.Empty(t, f.broadcaster.matches)
}

func TestEvaluateAcceptVisibleFromBothSides(t *testing.T) {
	f := newMatchFixture(fixedPolicy(true))
	ctx := context.Background()
	a, b := uuid.New().String(), uuid.New().String()

	for _, id := range []string{a, b} {
		require.NoError(t, f.profiles.Create(ctx, &models.Profile{ID: uuid.New().String(), UserID: id, Name: id[:4], CreatedAt: time.Now()}))
	}

	match, matched, err := f.svc.EvaluateAccept(ctx, a, b)
	require.NoError(t, err)
	require.True(t, matched)
	require.Equal(t, a, match.User1ID)
	require.Equal(t, b, match.User2ID)

	fromA, err := f.svc.ListMatches(ctx, a)
	require.NoError(t, err)
	require.Len(t, fromA, 1)
	require.Equal(t, b, fromA[0].Profile.UserID)
	require.Equal(t, models.DefaultPhotoURL, fromA[0].Profile.ImageURL)

	fromB, err := f.svc.ListMatches(ctx, b)
	require.NoError(t, err)
	require.Len(t, fromB, 1)
	require.Equal(t, a, fromB[0].Profile.UserID)
	require.Equal(t, match.ID, fromB[0].Match.ID)

	// b is offline, so the match is pushed
	require.Len(t, f.broadcaster.matches, 1)
	require.Len(t, f.notifier.sent, 1)
	require.Equal(t, b, f.notifier.sent[0].userID)
}

func TestEvaluateAcceptReturnsExistingMatch(t *testing.T) {
	f := newMatchFixture(fixedPolicy(true))
	ctx := context.Background()
	a, b := uuid.New().String(), uuid.New().String()

	first, _, err := f.svc.EvaluateAccept(ctx, a, b)
	require.NoError(t, err)

	second, matched, err := f.svc.EvaluateAccept(ctx, b, a)
	require.NoError(t, err)
	require.True(t, matched)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, f.matches.count())
	require.Len(t, f.broadcaster.matches, 1)
}

func TestSwipeWithMutualPolicy(t *testing.T) {
	f := newMatchFixture(nil)
	ctx := context.Background()
	a, b := uuid.New().String(), uuid.New().String()

	res, err := f.svc.Swipe(ctx, a, models.SwipeRequest{CandidateUserID: b, Direction: models.DirectionRight})
	require.NoError(t, err)
	require.False(t, res.Matched)

	res, err = f.svc.Swipe(ctx, b, models.SwipeRequest{CandidateUserID: a, Direction: models.DirectionLeft})
	require.NoError(t, err)
	require.False(t, res.Matched)

	res, err = f.svc.Swipe(ctx, b, models.SwipeRequest{CandidateUserID: a, Direction: models.DirectionRight})
	require.NoError(t, err)
	require.True(t, res.Matched)
	require.Equal(t, b, res.Match.User1ID)
	require.Equal(t, a, res.Match.User2ID)

	require.Len(t, f.swipes.swipes, 3)
}

func TestSwipeValidation(t *testing.T) {
	f := newMatchFixture(fixedPolicy(true))
	ctx := context.Background()
	a := uuid.New().String()

	_, err := f.svc.Swipe(ctx, a, models.SwipeRequest{CandidateUserID: uuid.New().String(), Direction: "up"})
	require.ErrorIs(t, err, ErrInvalidDirection)

	_, err = f.svc.Swipe(ctx, a, models.SwipeRequest{CandidateUserID: "nope", Direction: models.DirectionRight})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Swipe(ctx, a, models.SwipeRequest{CandidateUserID: a, Direction: models.DirectionRight})
	require.ErrorIs(t, err, ErrSelfSwipe)
}

func TestResolveAndGetForMember(t *testing.T) {
	f := newMatchFixture(fixedPolicy(true), "online-user")
	ctx := context.Background()
	a, b := uuid.New().String(), uuid.New().String()

	_, err := f.svc.ResolveMatchID(ctx, a, b)
	require.ErrorIs(t, err, ErrMatchNotFound)

	_, err = f.svc.ResolveMatchID(ctx, a, "")
	require.ErrorIs(t, err, ErrMatchNotFound)

	match, _, err := f.svc.EvaluateAccept(ctx, a, b)
	require.NoError(t, err)

	id, err := f.svc.ResolveMatchID(ctx, b, a)
	require.NoError(t, err)
	require.Equal(t, match.ID, id)

	_, err = f.svc.GetForMember(ctx, match.ID, uuid.New().String())
	require.ErrorIs(t, err, ErrNotMatchMember)

	_, err = f.svc.GetForMember(ctx, uuid.New().String(), a)
	require.ErrorIs(t, err, ErrMatchNotFound)

	_, err = f.svc.GetForMember(ctx, "not-a-uuid", a)
	require.ErrorIs(t, err, ErrMatchNotFound)
}
