package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/binderapp/binder-server/internal/errors"

	"github.com/binderapp/binder-server/internal/domain"
)

func TestHistoryService_UndoRedo(t *testing.T) {
	store := newTestStore(t)
	binders := NewBinderService(store, discardLogger())
	history := NewHistoryService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	_, err := binders.AddCard(ctx, "usr-1", "bnd-1", 0, domain.CardRef{CardID: "base1-4", Quantity: 1})
	require.NoError(t, err)
	_, err = binders.AddCard(ctx, "usr-1", "bnd-1", 1, domain.CardRef{CardID: "base1-15", Quantity: 1})
	require.NoError(t, err)

	binder, err := history.Undo(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, 1, binder.CardCount())
	_, ok := binder.CardAt(1)
	assert.False(t, ok)

	binder, err = history.Redo(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, 2, binder.CardCount())
	ref, ok := binder.CardAt(1)
	require.True(t, ok)
	assert.Equal(t, "base1-15", ref.CardID)
}

func TestHistoryService_UndoToEmpty(t *testing.T) {
	store := newTestStore(t)
	binders := NewBinderService(store, discardLogger())
	history := NewHistoryService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	_, err := binders.AddCard(ctx, "usr-1", "bnd-1", 0, domain.CardRef{CardID: "base1-4", Quantity: 1})
	require.NoError(t, err)

	// The seeded pre-state is empty, so one undo clears the binder.
	binder, err := history.Undo(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, 0, binder.CardCount())

	_, err = history.Undo(ctx, "usr-1", "bnd-1")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestHistoryService_RedoWithoutUndo(t *testing.T) {
	store := newTestStore(t)
	binders := NewBinderService(store, discardLogger())
	history := NewHistoryService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	_, err := binders.AddCard(ctx, "usr-1", "bnd-1", 0, domain.CardRef{CardID: "base1-4", Quantity: 1})
	require.NoError(t, err)

	_, err = history.Redo(ctx, "usr-1", "bnd-1")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestHistoryService_BranchTruncatesRedo(t *testing.T) {
	store := newTestStore(t)
	binders := NewBinderService(store, discardLogger())
	history := NewHistoryService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	_, err := binders.AddCard(ctx, "usr-1", "bnd-1", 0, domain.CardRef{CardID: "base1-4", Quantity: 1})
	require.NoError(t, err)
	_, err = binders.AddCard(ctx, "usr-1", "bnd-1", 1, domain.CardRef{CardID: "base1-15", Quantity: 1})
	require.NoError(t, err)

	_, err = history.Undo(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)

	// A new mutation from the undone state discards the redo tail.
	_, err = binders.AddCard(ctx, "usr-1", "bnd-1", 2, domain.CardRef{CardID: "base1-58", Quantity: 1})
	require.NoError(t, err)

	status, err := history.Status(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.False(t, status.CanRedo)

	_, err = history.Redo(ctx, "usr-1", "bnd-1")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestHistoryService_Status(t *testing.T) {
	store := newTestStore(t)
	binders := NewBinderService(store, discardLogger())
	history := NewHistoryService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	status, err := history.Status(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, 0, status.Entries)
	assert.False(t, status.CanUndo)
	assert.False(t, status.CanRedo)

	_, err = binders.AddCard(ctx, "usr-1", "bnd-1", 0, domain.CardRef{CardID: "base1-4", Quantity: 1})
	require.NoError(t, err)

	status, err = history.Status(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, 2, status.Entries)
	assert.Equal(t, 1, status.Cursor)
	assert.True(t, status.CanUndo)
}

func TestHistoryService_Clear(t *testing.T) {
	store := newTestStore(t)
	binders := NewBinderService(store, discardLogger())
	history := NewHistoryService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", false)

	_, err := binders.AddCard(ctx, "usr-1", "bnd-1", 0, domain.CardRef{CardID: "base1-4", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, history.Clear(ctx, "usr-1", "bnd-1"))

	status, err := history.Status(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, 0, status.Entries)
}

func TestHistoryService_NonOwner(t *testing.T) {
	store := newTestStore(t)
	history := NewHistoryService(store, discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-1", "usr-1", true)

	_, err := history.Undo(ctx, "usr-2", "bnd-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = history.Status(ctx, "usr-2", "bnd-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
