package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binderapp/binder-server/internal/domain"
)

func newTestBinder(id, ownerID string) *domain.Binder {
	b := &domain.Binder{
		Syncable: domain.Syncable{ID: id},
		OwnerID:  ownerID,
		Name:     "Test Binder",
		Settings: domain.DefaultSettings(),
		Cards:    make(map[int]domain.CardRef),
	}
	b.InitTimestamps()
	return b
}

func TestCreateBinder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	binder := newTestBinder("bnd-1", "usr-1")
	require.NoError(t, s.CreateBinder(ctx, binder))

	fetched, err := s.GetBinder(ctx, "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, "bnd-1", fetched.ID)
	assert.Equal(t, "usr-1", fetched.OwnerID)
	assert.Equal(t, 3, fetched.Settings.Rows)
}

func TestCreateBinder_Duplicate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateBinder(ctx, newTestBinder("bnd-1", "usr-1")))
	err := s.CreateBinder(ctx, newTestBinder("bnd-1", "usr-1"))
	assert.ErrorIs(t, err, ErrBinderExists)
}

func TestCreateBinder_NormalizesEmptyRefs(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	binder := newTestBinder("bnd-1", "usr-1")
	binder.Cards[0] = domain.CardRef{CardID: "base1-4", AddedAt: time.Now()}
	binder.Cards[5] = domain.CardRef{} // Stray empty ref from a client

	require.NoError(t, s.CreateBinder(ctx, binder))

	fetched, err := s.GetBinder(ctx, "bnd-1")
	require.NoError(t, err)
	assert.Len(t, fetched.Cards, 1)
	assert.Contains(t, fetched.Cards, 0)
	assert.NotContains(t, fetched.Cards, 5)
}

func TestGetBinder_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetBinder(context.Background(), "bnd-missing")
	assert.ErrorIs(t, err, ErrBinderNotFound)
}

func TestUpdateBinder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	binder := newTestBinder("bnd-1", "usr-1")
	require.NoError(t, s.CreateBinder(ctx, binder))

	binder.Name = "Renamed"
	require.NoError(t, s.UpdateBinder(ctx, binder))

	fetched, err := s.GetBinder(ctx, "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fetched.Name)
}

func TestUpdateBinder_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	err := s.UpdateBinder(context.Background(), newTestBinder("bnd-missing", "usr-1"))
	assert.ErrorIs(t, err, ErrBinderNotFound)
}

func TestUpdateBinderCards_Atomic(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	binder := newTestBinder("bnd-1", "usr-1")
	require.NoError(t, s.CreateBinder(ctx, binder))

	updated, err := s.UpdateBinderCards(ctx, "bnd-1", func(b *domain.Binder) error {
		return b.PlaceCard(4, domain.CardRef{CardID: "base1-4", AddedAt: time.Now()})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CardCount())

	fetched, err := s.GetBinder(ctx, "bnd-1")
	require.NoError(t, err)
	_, ok := fetched.CardAt(4)
	assert.True(t, ok)
}

func TestUpdateBinderCards_MutationErrorAborts(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	binder := newTestBinder("bnd-1", "usr-1")
	binder.Cards[0] = domain.CardRef{CardID: "base1-4", AddedAt: time.Now()}
	require.NoError(t, s.CreateBinder(ctx, binder))

	_, err := s.UpdateBinderCards(ctx, "bnd-1", func(b *domain.Binder) error {
		// Placing onto an occupied slot fails; nothing should persist.
		b.Cards[1] = domain.CardRef{CardID: "base1-5", AddedAt: time.Now()}
		return b.PlaceCard(0, domain.CardRef{CardID: "base1-6", AddedAt: time.Now()})
	})
	require.Error(t, err)

	fetched, err := s.GetBinder(ctx, "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.CardCount())
	_, ok := fetched.CardAt(1)
	assert.False(t, ok, "aborted mutation must not persist")
}

func TestDeleteBinder_SoftDelete(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateBinder(ctx, newTestBinder("bnd-1", "usr-1")))
	require.NoError(t, s.DeleteBinder(ctx, "bnd-1"))

	_, err := s.GetBinder(ctx, "bnd-1")
	assert.ErrorIs(t, err, ErrBinderNotFound)

	// Deleting again fails because the binder is already gone
	err = s.DeleteBinder(ctx, "bnd-1")
	assert.ErrorIs(t, err, ErrBinderNotFound)
}

func TestListBindersByOwner(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateBinder(ctx, newTestBinder("bnd-1", "usr-1")))
	require.NoError(t, s.CreateBinder(ctx, newTestBinder("bnd-2", "usr-1")))
	require.NoError(t, s.CreateBinder(ctx, newTestBinder("bnd-3", "usr-2")))

	binders, err := s.ListBindersByOwner(ctx, "usr-1")
	require.NoError(t, err)
	assert.Len(t, binders, 2)
	for _, b := range binders {
		assert.Equal(t, "usr-1", b.OwnerID)
	}
}

func TestListBindersByOwner_ExcludesDeleted(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateBinder(ctx, newTestBinder("bnd-1", "usr-1")))
	require.NoError(t, s.CreateBinder(ctx, newTestBinder("bnd-2", "usr-1")))
	require.NoError(t, s.DeleteBinder(ctx, "bnd-1"))

	binders, err := s.ListBindersByOwner(ctx, "usr-1")
	require.NoError(t, err)
	require.Len(t, binders, 1)
	assert.Equal(t, "bnd-2", binders[0].ID)
}

func TestListPublicBinders(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	public := newTestBinder("bnd-1", "usr-1")
	public.Public = true
	require.NoError(t, s.CreateBinder(ctx, public))
	require.NoError(t, s.CreateBinder(ctx, newTestBinder("bnd-2", "usr-1")))

	binders, err := s.ListPublicBinders(ctx)
	require.NoError(t, err)
	require.Len(t, binders, 1)
	assert.Equal(t, "bnd-1", binders[0].ID)
}

func TestRestoreBinder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateBinder(ctx, newTestBinder("bnd-1", "usr-1")))
	require.NoError(t, s.DeleteBinder(ctx, "bnd-1"))

	restored, err := s.RestoreBinder(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())

	got, err := s.GetBinder(ctx, "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, "bnd-1", got.ID)
}

func TestRestoreBinder_NotDeleted(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateBinder(ctx, newTestBinder("bnd-1", "usr-1")))

	_, err := s.RestoreBinder(ctx, "usr-1", "bnd-1")
	assert.ErrorIs(t, err, ErrBinderNotDeleted)
}

func TestRestoreBinder_WrongOwner(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateBinder(ctx, newTestBinder("bnd-1", "usr-1")))
	require.NoError(t, s.DeleteBinder(ctx, "bnd-1"))

	_, err := s.RestoreBinder(ctx, "usr-2", "bnd-1")
	assert.ErrorIs(t, err, ErrBinderNotFound)
}

func TestListAllBinders(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateBinder(ctx, newTestBinder("bnd-1", "usr-1")))
	require.NoError(t, s.CreateBinder(ctx, newTestBinder("bnd-2", "usr-2")))
	require.NoError(t, s.DeleteBinder(ctx, "bnd-2"))

	binders, err := s.ListAllBinders(ctx)
	require.NoError(t, err)
	require.Len(t, binders, 1)
	assert.Equal(t, "bnd-1", binders[0].ID)
}
