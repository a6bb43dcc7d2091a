package services

import (
	"context"
	"testing"
	"time"

	"crew-match-backend/internal/models"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func TestSignUpAndSignIn(t *testing.T) {
	svc := NewUserService(newFakeUsers(), testSecret, time.Hour)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, models.SignUpRequest{
		Email:    "  x@y.com ",
		Password: "secret1",
		Metadata: models.Metadata{Name: "Ana", Role: models.RoleChef},
	})
	require.NoError(t, err)
	require.Equal(t, "x@y.com", resp.User.Email)
	require.Equal(t, "Ana", resp.User.Metadata.Name)
	require.NotEmpty(t, resp.Token)

	userID, err := svc.ValidateJWT(resp.Token)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, userID)

	signedIn, err := svc.SignIn(ctx, models.SignInRequest{Email: "X@Y.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, signedIn.User.ID)

	_, err = svc.SignIn(ctx, models.SignInRequest{Email: "x@y.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, models.SignInRequest{Email: "nobody@y.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUpRejectsDuplicatesAndBadInput(t *testing.T) {
	svc := NewUserService(newFakeUsers(), testSecret, time.Hour)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, models.SignUpRequest{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, models.SignUpRequest{Email: "A@B.com", Password: "secret2"})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.SignUp(ctx, models.SignUpRequest{Email: "not-an-email", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SignUp(ctx, models.SignUpRequest{Email: "c@d.com", Password: "123"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidateJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	svc := NewUserService(newFakeUsers(), testSecret, time.Hour)
	other := NewUserService(newFakeUsers(), "another-secret-0123456", time.Hour)

	token, err := other.GenerateJWT("user-1")
	require.NoError(t, err)
	_, err = svc.ValidateJWT(token)
	require.Error(t, err)

	expired := NewUserService(newFakeUsers(), testSecret, -time.Minute)
	token, err = expired.GenerateJWT("user-1")
	require.NoError(t, err)
	_, err = svc.ValidateJWT(token)
	require.Error(t, err)
}

func TestUpdatePushTokenClearsBlank(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, testSecret, time.Hour)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, models.SignUpRequest{Email: "p@q.com", Password: "secret1"})
	require.NoError(t, err)

	tok := "abcdef"
	require.NoError(t, svc.UpdatePushToken(ctx, resp.User.ID, &tok))
	u, err := users.GetByID(ctx, resp.User.ID)
	require.NoError(t, err)
	require.Equal(t, "abcdef", *u.PushToken)

	blank := "   "
	require.NoError(t, svc.UpdatePushToken(ctx, resp.User.ID, &blank))
	u, err = users.GetByID(ctx, resp.User.ID)
	require.NoError(t, err)
	require.Nil(t, u.PushToken)
}
