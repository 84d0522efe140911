package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/binderapp/binder-server/internal/errors"

	"github.com/binderapp/binder-server/internal/auth"
	"github.com/binderapp/binder-server/internal/store"
)

func newAuthService(t *testing.T, s *store.Store) *AuthService {
	t.Helper()

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{0x42}, 32), time.Hour)
	require.NoError(t, err)

	return NewAuthService(s, tokens, discardLogger())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	store := newTestStore(t)
	svc := newAuthService(t, store)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{
		Email:       "Ash@Example.com",
		Password:    "pikachu-thunderbolt",
		DisplayName: "Ash",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "ash@example.com", user.Email)

	loggedIn, loginToken, err := svc.Login(ctx, "ash@example.com", "pikachu-thunderbolt")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginToken)
}

func TestAuthService_Register_Validation(t *testing.T) {
	store := newTestStore(t)
	svc := newAuthService(t, store)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing email", RegisterInput{Password: "longenoughpw", DisplayName: "Ash"}},
		{"bad email", RegisterInput{Email: "not-an-email", Password: "longenoughpw", DisplayName: "Ash"}},
		{"short password", RegisterInput{Email: "ash@example.com", Password: "short", DisplayName: "Ash"}},
		{"missing display name", RegisterInput{Email: "ash@example.com", Password: "longenoughpw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.input)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	svc := newAuthService(t, store)
	ctx := context.Background()

	input := RegisterInput{
		Email:       "ash@example.com",
		Password:    "pikachu-thunderbolt",
		DisplayName: "Ash",
	}

	_, _, err := svc.Register(ctx, input)
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	store := newTestStore(t)
	svc := newAuthService(t, store)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{
		Email:       "ash@example.com",
		Password:    "pikachu-thunderbolt",
		DisplayName: "Ash",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ash@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	store := newTestStore(t)
	svc := newAuthService(t, store)

	// Unknown emails and wrong passwords look the same to the caller.
	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Login_Suspended(t *testing.T) {
	s := newTestStore(t)
	svc := newAuthService(t, s)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, RegisterInput{
		Email:       "ash@example.com",
		Password:    "pikachu-thunderbolt",
		DisplayName: "Ash",
	})
	require.NoError(t, err)

	user.Suspended = true
	require.NoError(t, s.UpdateUser(ctx, user))

	_, _, err = svc.Login(ctx, "ash@example.com", "pikachu-thunderbolt")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAuthService_Verify(t *testing.T) {
	store := newTestStore(t)
	svc := newAuthService(t, store)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{
		Email:       "ash@example.com",
		Password:    "pikachu-thunderbolt",
		DisplayName: "Ash",
	})
	require.NoError(t, err)

	verified, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)

	_, err = svc.Verify(ctx, "v4.local.not-a-real-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_Verify_SuspendedAfterIssue(t *testing.T) {
	s := newTestStore(t)
	svc := newAuthService(t, s)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{
		Email:       "ash@example.com",
		Password:    "pikachu-thunderbolt",
		DisplayName: "Ash",
	})
	require.NoError(t, err)

	user.Suspended = true
	require.NoError(t, s.UpdateUser(ctx, user))

	// A still-valid token stops working the moment the account is
	// suspended.
	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
