package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(t.TempDir(), discardLogger(), store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func createTestUser(t *testing.T, s *store.Store, id, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		Syncable:    domain.Syncable{ID: id},
		Email:       email,
		DisplayName: "Test User",
	}
	user.InitTimestamps()
	require.NoError(t, s.CreateUser(context.Background(), user))

	return user
}

func createTestBinder(t *testing.T, s *store.Store, id, ownerID string, public bool) *domain.Binder {
	t.Helper()

	binder := &domain.Binder{
		Syncable: domain.Syncable{ID: id},
		OwnerID:  ownerID,
		Name:     "Test Binder " + id,
		Slug:     "test-binder-" + id,
		Public:   public,
		Settings: domain.DefaultSettings(),
		Cards:    make(map[int]domain.CardRef),
	}
	binder.InitTimestamps()
	require.NoError(t, s.CreateBinder(context.Background(), binder))

	return binder
}
