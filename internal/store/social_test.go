package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binderapp/binder-server/internal/domain"
)

func TestToggleLike(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	active, count, err := s.ToggleLike(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, int64(1), count)

	liked, err := s.HasLiked(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.True(t, liked)

	// Toggling again removes the like
	active, count, err = s.ToggleLike(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, int64(0), count)

	liked, err = s.HasLiked(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestToggleLike_MultipleUsers(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, _, err := s.ToggleLike(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	_, count, err := s.ToggleLike(ctx, "usr-2", "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	stats, err := s.GetBinderStats(ctx, "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Likes)
	assert.Equal(t, int64(0), stats.Favorites)
}

func TestToggleFavorite_IndependentOfLikes(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, _, err := s.ToggleLike(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)

	active, count, err := s.ToggleFavorite(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, int64(1), count)

	stats, err := s.GetBinderStats(ctx, "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Likes)
	assert.Equal(t, int64(1), stats.Favorites)
}

func TestGetBinderStats_NoActivity(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	stats, err := s.GetBinderStats(context.Background(), "bnd-quiet")
	require.NoError(t, err)
	assert.Equal(t, "bnd-quiet", stats.BinderID)
	assert.Zero(t, stats.Likes)
	assert.Zero(t, stats.Views)
}

func TestIncrementBinderViews(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.IncrementBinderViews(ctx, "bnd-1"))
	require.NoError(t, s.IncrementBinderViews(ctx, "bnd-1"))

	stats, err := s.GetBinderStats(ctx, "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Views)
}

func TestListFavoritesByUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, _, err := s.ToggleFavorite(ctx, "usr-1", "bnd-1")
	require.NoError(t, err)
	_, _, err = s.ToggleFavorite(ctx, "usr-1", "bnd-2")
	require.NoError(t, err)
	_, _, err = s.ToggleFavorite(ctx, "usr-2", "bnd-3")
	require.NoError(t, err)

	favs, err := s.ListFavoritesByUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bnd-1", "bnd-2"}, favs)
}

func TestAddComment(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	comment := &domain.Comment{BinderID: "bnd-1", AuthorID: "usr-1", Body: "nice pulls"}
	require.NoError(t, s.AddComment(ctx, comment))
	assert.NotEmpty(t, comment.ID)
	assert.False(t, comment.CreatedAt.IsZero())

	stats, err := s.GetBinderStats(ctx, "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Comments)
}

func TestDeleteComment(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	comment := &domain.Comment{BinderID: "bnd-1", AuthorID: "usr-1", Body: "nice pulls"}
	require.NoError(t, s.AddComment(ctx, comment))
	require.NoError(t, s.DeleteComment(ctx, comment.ID))

	_, err := s.GetComment(ctx, comment.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)

	stats, err := s.GetBinderStats(ctx, "bnd-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Comments)
}

func TestListCommentsByBinder_OldestFirst(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	first := &domain.Comment{BinderID: "bnd-1", AuthorID: "usr-1", Body: "first"}
	require.NoError(t, s.AddComment(ctx, first))
	second := &domain.Comment{BinderID: "bnd-1", AuthorID: "usr-2", Body: "second"}
	require.NoError(t, s.AddComment(ctx, second))
	other := &domain.Comment{BinderID: "bnd-2", AuthorID: "usr-1", Body: "elsewhere"}
	require.NoError(t, s.AddComment(ctx, other))

	comments, err := s.ListCommentsByBinder(ctx, "bnd-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, "second", comments[1].Body)
}

func TestListCommentsByBinder_ExcludesDeleted(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	keep := &domain.Comment{BinderID: "bnd-1", AuthorID: "usr-1", Body: "keep"}
	require.NoError(t, s.AddComment(ctx, keep))
	gone := &domain.Comment{BinderID: "bnd-1", AuthorID: "usr-1", Body: "gone"}
	require.NoError(t, s.AddComment(ctx, gone))
	require.NoError(t, s.DeleteComment(ctx, gone.ID))

	comments, err := s.ListCommentsByBinder(ctx, "bnd-1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "keep", comments[0].Body)
}
