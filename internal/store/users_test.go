package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binderapp/binder-server/internal/domain"
)

func newTestUser(id, email string) *domain.User {
	u := &domain.User{
		Syncable:    domain.Syncable{ID: id},
		Email:       email,
		DisplayName: "Tester",
	}
	u.InitTimestamps()
	return u
}

func TestCreateUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newTestUser("usr-1", "ash@example.com")))

	fetched, err := s.GetUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, "ash@example.com", fetched.Email)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newTestUser("usr-1", "ash@example.com")))
	err := s.CreateUser(ctx, newTestUser("usr-2", "Ash@Example.com"))
	assert.ErrorIs(t, err, ErrEmailExists, "email uniqueness is case-insensitive")
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newTestUser("usr-1", "ash@example.com")))

	fetched, err := s.GetUserByEmail(ctx, "  ASH@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "usr-1", fetched.ID)
}

func TestGetUser_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetUser(context.Background(), "usr-missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	user := newTestUser("usr-1", "ash@example.com")
	require.NoError(t, s.CreateUser(ctx, user))

	user.DisplayName = "Ash"
	require.NoError(t, s.UpdateUser(ctx, user))

	fetched, err := s.GetUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, "Ash", fetched.DisplayName)
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ash@Example.COM", "ash@example.com"},
		{"  ash@example.com  ", "ash@example.com"},
		{"ash@example.com", "ash@example.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeEmail(tt.in))
	}
}
