package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/binderapp/binder-server/internal/errors"

	"github.com/binderapp/binder-server/internal/config"
	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/store"
)

func newShareService(t *testing.T, s *store.Store) *ShareService {
	t.Helper()
	return NewShareService(s, config.ShareConfig{
		DefaultTTL:   24 * time.Hour,
		ViewCooldown: time.Hour,
	}, discardLogger())
}

func TestShareService_Create(t *testing.T) {
	store := newTestStore(t)
	svc := newShareService(t, store)
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	share, err := svc.Create(ctx, "usr-1", CreateShareInput{BinderID: "bnd-1"})
	require.NoError(t, err)

	assert.Len(t, share.Code, domain.ShareCodeLength)
	assert.Equal(t, "bnd-1", share.BinderID)
	require.NotNil(t, share.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *share.ExpiresAt, time.Minute)
}

func TestShareService_Create_PermanentLink(t *testing.T) {
	store := newTestStore(t)
	svc := newShareService(t, store)

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	ttl := time.Duration(0)
	share, err := svc.Create(context.Background(), "usr-1", CreateShareInput{
		BinderID: "bnd-1",
		TTL:      &ttl,
	})
	require.NoError(t, err)
	assert.Nil(t, share.ExpiresAt)
}

func TestShareService_Create_NonOwner(t *testing.T) {
	store := newTestStore(t)
	svc := newShareService(t, store)

	createTestBinder(t, store, "bnd-1", "usr-1", true)

	_, err := svc.Create(context.Background(), "usr-2", CreateShareInput{BinderID: "bnd-1"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestShareService_Resolve(t *testing.T) {
	store := newTestStore(t)
	svc := newShareService(t, store)
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)
	share, err := svc.Create(ctx, "usr-1", CreateShareInput{BinderID: "bnd-1"})
	require.NoError(t, err)

	// A share link grants access to a private binder.
	shared, err := svc.Resolve(ctx, share.Code, ViewerKey("10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, "bnd-1", shared.Binder.ID)
	assert.Equal(t, int64(1), shared.Share.Analytics.TotalViews)
	assert.Equal(t, int64(1), shared.Share.Analytics.UniqueViewers)
}

func TestShareService_Resolve_ViewDedup(t *testing.T) {
	store := newTestStore(t)
	svc := newShareService(t, store)
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)
	share, err := svc.Create(ctx, "usr-1", CreateShareInput{BinderID: "bnd-1"})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, share.Code, ViewerKey("10.0.0.1"))
	require.NoError(t, err)
	shared, err := svc.Resolve(ctx, share.Code, ViewerKey("10.0.0.1"))
	require.NoError(t, err)

	// Repeat views count as views but not as new unique viewers.
	assert.Equal(t, int64(2), shared.Share.Analytics.TotalViews)
	assert.Equal(t, int64(1), shared.Share.Analytics.UniqueViewers)

	shared, err = svc.Resolve(ctx, share.Code, ViewerKey("10.0.0.2"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), shared.Share.Analytics.UniqueViewers)
}

func TestShareService_Resolve_UnknownCode(t *testing.T) {
	store := newTestStore(t)
	svc := newShareService(t, store)

	_, err := svc.Resolve(context.Background(), "nosuchcode12", ViewerKey("10.0.0.1"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestShareService_Resolve_Expired(t *testing.T) {
	s := newTestStore(t)
	svc := newShareService(t, s)
	ctx := context.Background()

	createTestBinder(t, s, "bnd-1", "usr-1", false)

	share := &domain.ShareLink{BinderID: "bnd-1", OwnerID: "usr-1"}
	expired := time.Now().Add(-time.Hour)
	share.ExpiresAt = &expired
	require.NoError(t, s.CreateShareLink(ctx, share))

	_, err := svc.Resolve(ctx, share.Code, ViewerKey("10.0.0.1"))
	assert.ErrorIs(t, err, apperrors.ErrExpired)
}

func TestShareService_Revoke(t *testing.T) {
	store := newTestStore(t)
	svc := newShareService(t, store)
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)
	share, err := svc.Create(ctx, "usr-1", CreateShareInput{BinderID: "bnd-1"})
	require.NoError(t, err)

	revoked, err := svc.Revoke(ctx, "usr-1", share.Code)
	require.NoError(t, err)
	assert.True(t, revoked.Revoked())

	// Revoked links read as missing, not as revoked.
	_, err = svc.Resolve(ctx, share.Code, ViewerKey("10.0.0.1"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Revoke(ctx, "usr-1", share.Code)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestShareService_Revoke_NonOwner(t *testing.T) {
	store := newTestStore(t)
	svc := newShareService(t, store)
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)
	share, err := svc.Create(ctx, "usr-1", CreateShareInput{BinderID: "bnd-1"})
	require.NoError(t, err)

	_, err = svc.Revoke(ctx, "usr-2", share.Code)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestShareService_ListByBinder(t *testing.T) {
	store := newTestStore(t)
	svc := newShareService(t, store)
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)
	createTestBinder(t, store, "bnd-2", "usr-1", false)

	_, err := svc.Create(ctx, "usr-1", CreateShareInput{BinderID: "bnd-1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "usr-1", CreateShareInput{BinderID: "bnd-1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "usr-1", CreateShareInput{BinderID: "bnd-2"})
	require.NoError(t, err)

	shares, err := svc.ListByBinder(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.Len(t, shares, 2)

	all, err := svc.ListByOwner(ctx, "usr-1")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestShareService_Prune(t *testing.T) {
	s := newTestStore(t)
	svc := newShareService(t, s)
	ctx := context.Background()

	createTestBinder(t, s, "bnd-1", "usr-1", false)

	share := &domain.ShareLink{BinderID: "bnd-1", OwnerID: "usr-1"}
	expired := time.Now().Add(-48 * time.Hour)
	share.ExpiresAt = &expired
	require.NoError(t, s.CreateShareLink(ctx, share))

	_, err := svc.Create(ctx, "usr-1", CreateShareInput{BinderID: "bnd-1"})
	require.NoError(t, err)

	pruned, err := svc.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	remaining, err := svc.ListByOwner(ctx, "usr-1")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestViewerKey_Stable(t *testing.T) {
	assert.Equal(t, ViewerKey("10.0.0.1"), ViewerKey("10.0.0.1"))
	assert.NotEqual(t, ViewerKey("10.0.0.1"), ViewerKey("10.0.0.2"))
	assert.NotContains(t, ViewerKey("10.0.0.1"), "10.0.0.1")
}
