package services

import (
	"context"
	"testing"
	"time"

	"crew-match-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func validInput(name string) models.ProfileInput {
	return models.ProfileInput{
		Name:           name,
		Role:           models.RoleDeckhand,
		Experience:     "3 years",
		Age:            28,
		Nationality:    "Croatian",
		Languages:      []string{"English", " ", "Croatian"},
		Certifications: []string{"STCW"},
		Bio:            "Tender driver",
		Availability:   "Immediately",
	}
}

func TestProfileCreateOncePerUser(t *testing.T) {
	svc := NewProfileService(&fakeProfiles{}, newFakePhotos())
	ctx := context.Background()
	userID := uuid.New().String()

	p, err := svc.Create(ctx, userID, validInput("Marko"))
	require.NoError(t, err)
	require.Equal(t, []string{"English", "Croatian"}, p.Languages)
	require.Equal(t, []string{}, p.Interests)
	require.Equal(t, models.DefaultPhotoURL, p.ImageURL)
	require.Empty(t, p.Photos)

	_, err = svc.Create(ctx, userID, validInput("Marko"))
	require.ErrorIs(t, err, ErrProfileExists)
}

func TestProfileValidation(t *testing.T) {
	svc := NewProfileService(&fakeProfiles{}, newFakePhotos())
	ctx := context.Background()

	in := validInput("Marko")
	in.Role = "Pirate"
	_, err := svc.Create(ctx, uuid.New().String(), in)
	require.ErrorIs(t, err, ErrInvalidInput)

	in = validInput("   ")
	_, err = svc.Create(ctx, uuid.New().String(), in)
	require.ErrorIs(t, err, ErrInvalidInput)

	in = validInput("Marko")
	in.Age = 12
	_, err = svc.Create(ctx, uuid.New().String(), in)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestProfileUpdateRequiresProfile(t *testing.T) {
	svc := NewProfileService(&fakeProfiles{}, newFakePhotos())
	ctx := context.Background()
	userID := uuid.New().String()

	_, err := svc.Update(ctx, userID, validInput("Marko"))
	require.ErrorIs(t, err, ErrProfileNotFound)

	_, err = svc.Create(ctx, userID, validInput("Marko"))
	require.NoError(t, err)

	in := validInput("Marko Polo")
	in.Role = models.RoleBosun
	updated, err := svc.Update(ctx, userID, in)
	require.NoError(t, err)
	require.Equal(t, "Marko Polo", updated.Name)
	require.Equal(t, models.RoleBosun, updated.Role)

	got, err := svc.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "Marko Polo", got.Name)
}

func TestListCandidatesExcludesCallerNewestFirst(t *testing.T) {
	profiles := &fakeProfiles{}
	photos := newFakePhotos()
	svc := NewProfileService(profiles, photos)
	ctx := context.Background()

	base := time.Now()
	me := &models.Profile{ID: uuid.New().String(), UserID: "me", CreatedAt: base.Add(3 * time.Hour)}
	oldest := &models.Profile{ID: uuid.New().String(), UserID: "u1", CreatedAt: base}
	newest := &models.Profile{ID: uuid.New().String(), UserID: "u2", CreatedAt: base.Add(2 * time.Hour)}
	middle := &models.Profile{ID: uuid.New().String(), UserID: "u3", CreatedAt: base.Add(time.Hour)}
	for _, p := range []*models.Profile{me, oldest, newest, middle} {
		require.NoError(t, profiles.Create(ctx, p))
	}

	for _, url := range []string{"https://cdn/a.jpg", "https://cdn/b.jpg"} {
		require.NoError(t, photos.Create(ctx, &models.Photo{ID: uuid.New().String(), ProfileID: newest.ID, URL: url}))
	}
	// stored out of order
	photos.photos[newest.ID][0].Order, photos.photos[newest.ID][1].Order = 1, 0

	list, err := svc.ListCandidates(ctx, "me")
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, []string{"u2", "u3", "u1"}, []string{list[0].UserID, list[1].UserID, list[2].UserID})

	require.Equal(t, "https://cdn/b.jpg", list[0].ImageURL)
	require.Equal(t, 0, list[0].Photos[0].Order)
	require.Equal(t, 1, list[0].Photos[1].Order)

	for _, p := range list[1:] {
		require.Equal(t, models.DefaultPhotoURL, p.ImageURL)
		require.Empty(t, p.Photos)
	}
}

func TestListCandidatesSingleProfileIsEmpty(t *testing.T) {
	profiles := &fakeProfiles{}
	svc := NewProfileService(profiles, newFakePhotos())
	ctx := context.Background()

	require.NoError(t, profiles.Create(ctx, &models.Profile{ID: uuid.New().String(), UserID: "me", CreatedAt: time.Now()}))

	list, err := svc.ListCandidates(ctx, "me")
	require.NoError(t, err)
	require.Empty(t, list)
}
