package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/binderapp/binder-server/internal/errors"

	"github.com/binderapp/binder-server/internal/domain"
)

func newBinderService(t *testing.T) *BinderService {
	t.Helper()
	return NewBinderService(newTestStore(t), discardLogger())
}

func TestBinderService_Create(t *testing.T) {
	svc := newBinderService(t)
	ctx := context.Background()

	binder, err := svc.Create(ctx, "usr-1", CreateBinderInput{
		Name:        "Base Set Collection",
		Description: "First edition holos",
		Public:      true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, binder.ID)
	assert.Equal(t, "usr-1", binder.OwnerID)
	assert.Equal(t, "base-set-collection", binder.Slug)
	assert.True(t, binder.Public)
	assert.Equal(t, domain.DefaultSettings(), binder.Settings)
}

func TestBinderService_Create_RequiresName(t *testing.T) {
	svc := newBinderService(t)

	_, err := svc.Create(context.Background(), "usr-1", CreateBinderInput{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBinderService_Create_RejectsBadSettings(t *testing.T) {
	svc := newBinderService(t)

	_, err := svc.Create(context.Background(), "usr-1", CreateBinderInput{
		Name:     "Bad Grid",
		Settings: &domain.BinderSettings{Rows: 0, Columns: 50},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBinderService_Get_Visibility(t *testing.T) {
	store := newTestStore(t)
	svc := NewBinderService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-private", "usr-1", false)
	createTestBinder(t, store, "bnd-public", "usr-1", true)

	t.Run("owner sees private", func(t *testing.T) {
		binder, err := svc.Get(ctx, "usr-1", "bnd-private")
		require.NoError(t, err)
		assert.Equal(t, "bnd-private", binder.ID)
	})

	t.Run("stranger gets not found for private", func(t *testing.T) {
		_, err := svc.Get(ctx, "usr-2", "bnd-private")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("anonymous sees public", func(t *testing.T) {
		binder, err := svc.Get(ctx, "", "bnd-public")
		require.NoError(t, err)
		assert.Equal(t, "bnd-public", binder.ID)
	})
}

func TestBinderService_Update(t *testing.T) {
	store := newTestStore(t)
	svc := NewBinderService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	name := "Renamed Binder"
	public := true
	binder, err := svc.Update(ctx, "usr-1", "bnd-1", UpdateBinderInput{
		Name:   &name,
		Public: &public,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed Binder", binder.Name)
	assert.Equal(t, "renamed-binder", binder.Slug)
	assert.True(t, binder.Public)
}

func TestBinderService_Update_NonOwner(t *testing.T) {
	store := newTestStore(t)
	svc := NewBinderService(store, discardLogger())

	createTestBinder(t, store, "bnd-1", "usr-1", true)

	name := "Hijacked"
	_, err := svc.Update(context.Background(), "usr-2", "bnd-1", UpdateBinderInput{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBinderService_ArchiveAndRestore(t *testing.T) {
	store := newTestStore(t)
	svc := NewBinderService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	require.NoError(t, svc.Archive(ctx, "usr-1", "bnd-1"))

	_, err := svc.Get(ctx, "usr-1", "bnd-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	restored, err := svc.Restore(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())

	_, err = svc.Restore(ctx, "usr-1", "bnd-1")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestBinderService_AddCard(t *testing.T) {
	store := newTestStore(t)
	svc := NewBinderService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	binder, err := svc.AddCard(ctx, "usr-1", "bnd-1", 4, domain.CardRef{
		CardID:    "base1-4",
		Condition: domain.ConditionNearMint,
		Quantity:  1,
	})
	require.NoError(t, err)

	ref, ok := binder.CardAt(4)
	require.True(t, ok)
	assert.Equal(t, "base1-4", ref.CardID)
	assert.False(t, ref.AddedAt.IsZero())
}

func TestBinderService_AddCard_FirstFreeSlot(t *testing.T) {
	store := newTestStore(t)
	svc := NewBinderService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	_, err := svc.AddCard(ctx, "usr-1", "bnd-1", 0, domain.CardRef{CardID: "base1-4", Quantity: 1})
	require.NoError(t, err)

	binder, err := svc.AddCard(ctx, "usr-1", "bnd-1", -1, domain.CardRef{CardID: "base1-15", Quantity: 1})
	require.NoError(t, err)

	ref, ok := binder.CardAt(1)
	require.True(t, ok)
	assert.Equal(t, "base1-15", ref.CardID)
}

func TestBinderService_AddCard_OccupiedSlot(t *testing.T) {
	store := newTestStore(t)
	svc := NewBinderService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	_, err := svc.AddCard(ctx, "usr-1", "bnd-1", 0, domain.CardRef{CardID: "base1-4", Quantity: 1})
	require.NoError(t, err)

	_, err = svc.AddCard(ctx, "usr-1", "bnd-1", 0, domain.CardRef{CardID: "base1-15", Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestBinderService_MoveAndSwap(t *testing.T) {
	store := newTestStore(t)
	svc := NewBinderService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	_, err := svc.AddCard(ctx, "usr-1", "bnd-1", 0, domain.CardRef{CardID: "base1-4", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddCard(ctx, "usr-1", "bnd-1", 1, domain.CardRef{CardID: "base1-15", Quantity: 1})
	require.NoError(t, err)

	binder, err := svc.MoveCard(ctx, "usr-1", "bnd-1", 0, 8)
	require.NoError(t, err)
	ref, ok := binder.CardAt(8)
	require.True(t, ok)
	assert.Equal(t, "base1-4", ref.CardID)

	binder, err = svc.SwapCards(ctx, "usr-1", "bnd-1", 1, 8)
	require.NoError(t, err)
	ref, _ = binder.CardAt(1)
	assert.Equal(t, "base1-4", ref.CardID)
	ref, _ = binder.CardAt(8)
	assert.Equal(t, "base1-15", ref.CardID)
}

func TestBinderService_ClearPage(t *testing.T) {
	store := newTestStore(t)
	svc := NewBinderService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	_, err := svc.AddCard(ctx, "usr-1", "bnd-1", 0, domain.CardRef{CardID: "base1-4", Quantity: 1})
	require.NoError(t, err)

	binder, err := svc.ClearPage(ctx, "usr-1", "bnd-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, binder.CardCount())

	_, err = svc.ClearPage(ctx, "usr-1", "bnd-1", 0)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBinderService_MutationsRecordHistory(t *testing.T) {
	store := newTestStore(t)
	svc := NewBinderService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	_, err := svc.AddCard(ctx, "usr-1", "bnd-1", 0, domain.CardRef{CardID: "base1-4", Quantity: 1})
	require.NoError(t, err)

	history, err := store.GetHistory(ctx, "bnd-1")
	require.NoError(t, err)

	// The first mutation seeds the pre-state, so the log holds two entries
	// and undo is immediately available.
	assert.Equal(t, 2, history.Len())
	assert.True(t, history.CanUndo())
}
