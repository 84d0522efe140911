package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/id"
	"github.com/binderapp/binder-server/internal/sse"
)

const (
	likePrefix     = "like:"
	favoritePrefix = "favorite:"
	statsPrefix    = "stats:"
)

// ErrCommentNotFound is returned when a comment cannot be found by ID.
var ErrCommentNotFound = errors.New("comment not found")

// ToggleLike adds or removes a like for (user, binder). The reaction
// document and the binder's counter move in the same transaction so the
// count can never drift from the documents. Returns whether the like is
// now active and the resulting count.
func (s *Store) ToggleLike(ctx context.Context, userID, binderID string) (bool, int64, error) {
	active, count, err := s.toggleReaction(ctx, likePrefix, userID, binderID,
		func(stats *domain.BinderStats, delta int64) { stats.Likes += delta },
		func(stats *domain.BinderStats) int64 { return stats.Likes },
	)
	if err != nil {
		return false, 0, err
	}

	s.emit(sse.NewBinderLikedEvent(binderID, active, count))
	return active, count, nil
}

// ToggleFavorite adds or removes a favorite for (user, binder).
func (s *Store) ToggleFavorite(ctx context.Context, userID, binderID string) (bool, int64, error) {
	active, count, err := s.toggleReaction(ctx, favoritePrefix, userID, binderID,
		func(stats *domain.BinderStats, delta int64) { stats.Favorites += delta },
		func(stats *domain.BinderStats) int64 { return stats.Favorites },
	)
	if err != nil {
		return false, 0, err
	}

	s.emit(sse.NewBinderFavoritedEvent(binderID, active, count))
	return active, count, nil
}

// toggleReaction flips a reaction document and adjusts the matching stats
// counter atomically.
func (s *Store) toggleReaction(ctx context.Context, prefix, userID, binderID string, bump func(*domain.BinderStats, int64), counter func(*domain.BinderStats) int64) (bool, int64, error) {
	if err := ctx.Err(); err != nil {
		return false, 0, err
	}

	reactionKey := []byte(prefix + domain.ReactionKey(userID, binderID))
	statsKey := []byte(statsPrefix + binderID)

	var active bool
	var count int64

	err := s.db.Update(func(txn *badger.Txn) error {
		stats := domain.BinderStats{BinderID: binderID}
		if err := getInTxn(txn, statsKey, &stats); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get binder stats: %w", err)
		}

		_, err := txn.Get(reactionKey)
		switch {
		case err == nil:
			// Reaction exists, remove it
			if err := txn.Delete(reactionKey); err != nil {
				return fmt.Errorf("delete reaction: %w", err)
			}
			bump(&stats, -1)
			active = false

		case errors.Is(err, badger.ErrKeyNotFound):
			reaction := domain.Reaction{
				UserID:    userID,
				BinderID:  binderID,
				CreatedAt: time.Now(),
			}
			if err := setInTxn(txn, reactionKey, &reaction); err != nil {
				return fmt.Errorf("set reaction: %w", err)
			}
			bump(&stats, 1)
			active = true

		default:
			return fmt.Errorf("get reaction: %w", err)
		}

		// Counters never go negative even if documents were removed
		// out of band.
		if counter(&stats) < 0 {
			bump(&stats, -counter(&stats))
		}
		count = counter(&stats)

		return setInTxn(txn, statsKey, &stats)
	})
	if err != nil {
		return false, 0, err
	}

	return active, count, nil
}

// HasLiked reports whether a user has liked a binder.
func (s *Store) HasLiked(_ context.Context, userID, binderID string) (bool, error) {
	return s.exists([]byte(likePrefix + domain.ReactionKey(userID, binderID)))
}

// HasFavorited reports whether a user has favorited a binder.
func (s *Store) HasFavorited(_ context.Context, userID, binderID string) (bool, error) {
	return s.exists([]byte(favoritePrefix + domain.ReactionKey(userID, binderID)))
}

// GetBinderStats returns the denormalized counters for a binder. Binders
// with no recorded activity get zeroed stats, not an error.
func (s *Store) GetBinderStats(_ context.Context, binderID string) (*domain.BinderStats, error) {
	key := []byte(statsPrefix + binderID)

	stats := domain.BinderStats{BinderID: binderID}
	if err := s.get(key, &stats); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("get binder stats: %w", err)
	}

	return &stats, nil
}

// IncrementBinderViews bumps the view counter on a binder's stats.
func (s *Store) IncrementBinderViews(ctx context.Context, binderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(statsPrefix + binderID)

	return s.db.Update(func(txn *badger.Txn) error {
		stats := domain.BinderStats{BinderID: binderID}
		if err := getInTxn(txn, key, &stats); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get binder stats: %w", err)
		}

		stats.Views++

		return setInTxn(txn, key, &stats)
	})
}

// ListFavoritesByUser returns the binder IDs a user has favorited, most
// recent first.
func (s *Store) ListFavoritesByUser(_ context.Context, userID string) ([]string, error) {
	prefix := []byte(favoritePrefix + userID + ":")

	type fav struct {
		binderID  string
		createdAt time.Time
	}
	var favs []fav

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var reaction domain.Reaction
				if unmarshalErr := json.Unmarshal(val, &reaction); unmarshalErr != nil {
					return nil //nolint:nilerr // intentionally skip malformed entries
				}
				favs = append(favs, fav{binderID: reaction.BinderID, createdAt: reaction.CreatedAt})
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	sort.Slice(favs, func(i, j int) bool {
		return favs[i].createdAt.After(favs[j].createdAt)
	})

	binderIDs := make([]string, len(favs))
	for i, f := range favs {
		binderIDs[i] = f.binderID
	}

	return binderIDs, nil
}

// AddComment persists a comment and bumps the binder's comment counter.
func (s *Store) AddComment(ctx context.Context, comment *domain.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if comment.ID == "" {
		commentID, err := id.Generate("cmt")
		if err != nil {
			return fmt.Errorf("generate comment ID: %w", err)
		}
		comment.ID = commentID
	}
	comment.InitTimestamps()

	if err := s.Comments.Create(ctx, comment.ID, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	if err := s.adjustCommentCount(comment.BinderID, 1); err != nil {
		return err
	}

	s.emit(sse.NewCommentAddedEvent(comment))

	return nil
}

// GetComment retrieves a comment by ID. Soft-deleted comments are not
// found.
func (s *Store) GetComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	comment, err := s.Comments.Get(ctx, commentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}

	if comment.IsDeleted() {
		return nil, ErrCommentNotFound
	}

	return comment, nil
}

// DeleteComment soft-deletes a comment and decrements the binder's
// comment counter.
func (s *Store) DeleteComment(ctx context.Context, commentID string) error {
	comment, err := s.GetComment(ctx, commentID)
	if err != nil {
		return err
	}

	comment.MarkDeleted()

	if err := s.Comments.Update(ctx, commentID, comment); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if err := s.adjustCommentCount(comment.BinderID, -1); err != nil {
		return err
	}

	s.emit(sse.NewCommentDeletedEvent(commentID, comment.BinderID))

	return nil
}

// ListCommentsByBinder returns non-deleted comments on a binder, oldest
// first so threads read top to bottom.
func (s *Store) ListCommentsByBinder(ctx context.Context, binderID string) ([]*domain.Comment, error) {
	var comments []*domain.Comment

	for comment, err := range s.Comments.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list comments: %w", err)
		}
		if comment.BinderID != binderID || comment.IsDeleted() {
			continue
		}
		comments = append(comments, comment)
	}

	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})

	return comments, nil
}

// adjustCommentCount moves the comment counter on a binder's stats,
// clamping at zero.
func (s *Store) adjustCommentCount(binderID string, delta int64) error {
	key := []byte(statsPrefix + binderID)

	return s.db.Update(func(txn *badger.Txn) error {
		stats := domain.BinderStats{BinderID: binderID}
		if err := getInTxn(txn, key, &stats); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get binder stats: %w", err)
		}

		stats.Comments += delta
		if stats.Comments < 0 {
			stats.Comments = 0
		}

		return setInTxn(txn, key, &stats)
	})
}
