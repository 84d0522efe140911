package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binderapp/binder-server/internal/domain"
)

func TestCreateShareLink(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	share := &domain.ShareLink{BinderID: "bnd-1", OwnerID: "usr-1"}
	require.NoError(t, s.CreateShareLink(ctx, share))

	assert.Len(t, share.Code, domain.ShareCodeLength)
	assert.False(t, share.CreatedAt.IsZero())

	fetched, err := s.GetShareLink(ctx, share.Code)
	require.NoError(t, err)
	assert.Equal(t, "bnd-1", fetched.BinderID)
	assert.Equal(t, "usr-1", fetched.OwnerID)
}

func TestGetShareLink_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetShareLink(context.Background(), "nope12345678")
	assert.ErrorIs(t, err, ErrShareNotFound)
}

func TestRecordShareView_CountsAndDedup(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	share := &domain.ShareLink{BinderID: "bnd-1", OwnerID: "usr-1"}
	require.NoError(t, s.CreateShareLink(ctx, share))

	// Same viewer twice inside the dedup window
	updated, err := s.RecordShareView(ctx, share.Code, "viewer-a", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Analytics.TotalViews)
	assert.Equal(t, int64(1), updated.Analytics.UniqueViewers)

	updated, err = s.RecordShareView(ctx, share.Code, "viewer-a", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Analytics.TotalViews)
	assert.Equal(t, int64(1), updated.Analytics.UniqueViewers, "repeat viewer is not unique")

	// A different viewer is unique
	updated, err = s.RecordShareView(ctx, share.Code, "viewer-b", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.Analytics.TotalViews)
	assert.Equal(t, int64(2), updated.Analytics.UniqueViewers)

	assert.NotNil(t, updated.Analytics.LastViewedAt)

	day := time.Now().UTC().Format("2006-01-02")
	assert.Equal(t, int64(3), updated.Analytics.DailyViews[day])
}

func TestRecordShareView_Revoked(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	share := &domain.ShareLink{BinderID: "bnd-1", OwnerID: "usr-1"}
	require.NoError(t, s.CreateShareLink(ctx, share))

	_, err := s.RevokeShareLink(ctx, share.Code)
	require.NoError(t, err)

	_, err = s.RecordShareView(ctx, share.Code, "viewer-a", time.Hour)
	assert.ErrorIs(t, err, ErrShareInactive)
}

func TestRecordShareView_Expired(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	share := &domain.ShareLink{BinderID: "bnd-1", OwnerID: "usr-1", ExpiresAt: &past}
	require.NoError(t, s.CreateShareLink(ctx, share))

	_, err := s.RecordShareView(ctx, share.Code, "viewer-a", time.Hour)
	assert.ErrorIs(t, err, ErrShareInactive)
}

func TestRevokeShareLink_Idempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	share := &domain.ShareLink{BinderID: "bnd-1", OwnerID: "usr-1"}
	require.NoError(t, s.CreateShareLink(ctx, share))

	first, err := s.RevokeShareLink(ctx, share.Code)
	require.NoError(t, err)
	require.NotNil(t, first.RevokedAt)

	second, err := s.RevokeShareLink(ctx, share.Code)
	require.NoError(t, err)
	assert.Equal(t, first.RevokedAt.Unix(), second.RevokedAt.Unix())
}

func TestListShareLinksByOwner(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	for range 2 {
		require.NoError(t, s.CreateShareLink(ctx, &domain.ShareLink{BinderID: "bnd-1", OwnerID: "usr-1"}))
	}
	require.NoError(t, s.CreateShareLink(ctx, &domain.ShareLink{BinderID: "bnd-2", OwnerID: "usr-2"}))

	shares, err := s.ListShareLinksByOwner(ctx, "usr-1")
	require.NoError(t, err)
	assert.Len(t, shares, 2)
}

func TestDeleteShareLinksForBinder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateShareLink(ctx, &domain.ShareLink{BinderID: "bnd-1", OwnerID: "usr-1"}))
	require.NoError(t, s.CreateShareLink(ctx, &domain.ShareLink{BinderID: "bnd-1", OwnerID: "usr-1"}))
	keep := &domain.ShareLink{BinderID: "bnd-2", OwnerID: "usr-1"}
	require.NoError(t, s.CreateShareLink(ctx, keep))

	require.NoError(t, s.DeleteShareLinksForBinder(ctx, "bnd-1"))

	shares, err := s.ListShareLinksByOwner(ctx, "usr-1")
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, keep.Code, shares[0].Code)
}

func TestPruneExpiredShareLinks(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	longGone := time.Now().Add(-48 * time.Hour)
	justExpired := time.Now().Add(-time.Minute)

	expired := &domain.ShareLink{BinderID: "bnd-1", OwnerID: "usr-1", ExpiresAt: &longGone}
	require.NoError(t, s.CreateShareLink(ctx, expired))
	recent := &domain.ShareLink{BinderID: "bnd-1", OwnerID: "usr-1", ExpiresAt: &justExpired}
	require.NoError(t, s.CreateShareLink(ctx, recent))

	pruned, err := s.PruneExpiredShareLinks(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	// The recently expired link survives the grace period
	_, err = s.GetShareLink(ctx, recent.Code)
	assert.NoError(t, err)
	_, err = s.GetShareLink(ctx, expired.Code)
	assert.ErrorIs(t, err, ErrShareNotFound)
}
