package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/binderapp/binder-server/internal/errors"

	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/id"
	"github.com/binderapp/binder-server/internal/ratelimit"
	"github.com/binderapp/binder-server/internal/store"
)

const (
	// reactionCooldown absorbs double-clicks on like/favorite toggles. A
	// rejected toggle returns the current state instead of flipping twice.
	reactionCooldown = 2 * time.Second

	// commentCooldown throttles comment posting per user per binder.
	commentCooldown = 10 * time.Second
)

// SocialService handles likes, favorites and comments on public binders.
type SocialService struct {
	store     *store.Store
	reactions *ratelimit.Cooldown
	comments  *ratelimit.Cooldown
	logger    *slog.Logger
}

// NewSocialService creates a new social service.
func NewSocialService(store *store.Store, logger *slog.Logger) *SocialService {
	return &SocialService{
		store:     store,
		reactions: ratelimit.NewCooldown(reactionCooldown),
		comments:  ratelimit.NewCooldown(commentCooldown),
		logger:    logger,
	}
}

// ReactionState is the result of a toggle or a state query.
type ReactionState struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}

// ToggleLike flips the caller's like on a binder. Repeats inside the
// cooldown window return the current state without toggling.
func (s *SocialService) ToggleLike(ctx context.Context, userID, binderID string) (*ReactionState, error) {
	return s.toggle(ctx, userID, binderID, "like",
		s.store.ToggleLike,
		s.store.HasLiked,
		func(stats *domain.BinderStats) int64 { return stats.Likes },
	)
}

// ToggleFavorite flips the caller's favorite on a binder.
func (s *SocialService) ToggleFavorite(ctx context.Context, userID, binderID string) (*ReactionState, error) {
	return s.toggle(ctx, userID, binderID, "favorite",
		s.store.ToggleFavorite,
		s.store.HasFavorited,
		func(stats *domain.BinderStats) int64 { return stats.Favorites },
	)
}

func (s *SocialService) toggle(
	ctx context.Context,
	userID, binderID, action string,
	flip func(context.Context, string, string) (bool, int64, error),
	query func(context.Context, string, string) (bool, error),
	counter func(*domain.BinderStats) int64,
) (*ReactionState, error) {
	if err := s.ensureInteractable(ctx, userID, binderID); err != nil {
		return nil, err
	}

	if !s.reactions.Hit(action + ":" + userID + ":" + binderID) {
		// Cooling down: report state as-is so a double-click is a no-op.
		active, err := query(ctx, userID, binderID)
		if err != nil {
			return nil, fmt.Errorf("query %s state: %w", action, err)
		}
		stats, err := s.store.GetBinderStats(ctx, binderID)
		if err != nil {
			return nil, fmt.Errorf("get binder stats: %w", err)
		}
		return &ReactionState{Active: active, Count: counter(stats)}, nil
	}

	active, count, err := flip(ctx, userID, binderID)
	if err != nil {
		return nil, fmt.Errorf("toggle %s: %w", action, err)
	}

	return &ReactionState{Active: active, Count: count}, nil
}

// Stats returns the public counters for a binder, plus the caller's own
// reaction state when a caller is known.
type Stats struct {
	domain.BinderStats
	Liked     bool `json:"liked"`
	Favorited bool `json:"favorited"`
}

// GetStats returns counters for a binder the caller may see.
func (s *SocialService) GetStats(ctx context.Context, callerID, binderID string) (*Stats, error) {
	if err := s.ensureVisible(ctx, callerID, binderID); err != nil {
		return nil, err
	}

	stats, err := s.store.GetBinderStats(ctx, binderID)
	if err != nil {
		return nil, fmt.Errorf("get binder stats: %w", err)
	}

	out := &Stats{BinderStats: *stats}
	if callerID != "" {
		if out.Liked, err = s.store.HasLiked(ctx, callerID, binderID); err != nil {
			return nil, fmt.Errorf("query like state: %w", err)
		}
		if out.Favorited, err = s.store.HasFavorited(ctx, callerID, binderID); err != nil {
			return nil, fmt.Errorf("query favorite state: %w", err)
		}
	}

	return out, nil
}

// ListFavorites returns the binders the caller has favorited, skipping any
// that have since gone private or been archived.
func (s *SocialService) ListFavorites(ctx context.Context, userID string) ([]*domain.Binder, error) {
	binderIDs, err := s.store.ListFavoritesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	binders := make([]*domain.Binder, 0, len(binderIDs))
	for _, binderID := range binderIDs {
		binder, err := s.store.GetBinder(ctx, binderID)
		if err != nil {
			if errors.Is(err, store.ErrBinderNotFound) {
				continue
			}
			return nil, fmt.Errorf("get favorited binder: %w", err)
		}
		if !binder.Public && binder.OwnerID != userID {
			continue
		}
		binders = append(binders, binder)
	}

	return binders, nil
}

// AddComment posts a comment on a binder the caller may interact with.
func (s *SocialService) AddComment(ctx context.Context, userID, binderID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.Validation("comment body is required")
	}
	if len(body) > domain.MaxCommentLength {
		return nil, apperrors.Validationf("comment exceeds %d characters", domain.MaxCommentLength)
	}

	if err := s.ensureInteractable(ctx, userID, binderID); err != nil {
		return nil, err
	}

	if !s.comments.Hit("comment:" + userID + ":" + binderID) {
		return nil, apperrors.RateLimited("commenting too fast, slow down")
	}

	commentID, err := id.Generate("cmt")
	if err != nil {
		return nil, fmt.Errorf("generate comment ID: %w", err)
	}

	comment := &domain.Comment{
		Syncable: domain.Syncable{ID: commentID},
		BinderID: binderID,
		AuthorID: userID,
		Body:     body,
	}
	comment.InitTimestamps()

	if err := s.store.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	return comment, nil
}

// DeleteComment removes a comment. The comment author and the binder owner
// may both delete.
func (s *SocialService) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrCommentNotFound) {
			return apperrors.NotFound("comment not found")
		}
		return fmt.Errorf("get comment: %w", err)
	}

	if comment.AuthorID != userID {
		binder, err := s.store.GetBinder(ctx, comment.BinderID)
		if err != nil {
			if errors.Is(err, store.ErrBinderNotFound) {
				return apperrors.NotFound("comment not found")
			}
			return fmt.Errorf("get binder: %w", err)
		}
		if binder.OwnerID != userID {
			return apperrors.Forbidden("only the author or binder owner may delete a comment")
		}
	}

	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	return nil
}

// ListComments returns the comments on a binder the caller may see,
// oldest first.
func (s *SocialService) ListComments(ctx context.Context, callerID, binderID string) ([]*domain.Comment, error) {
	if err := s.ensureVisible(ctx, callerID, binderID); err != nil {
		return nil, err
	}
	return s.store.ListCommentsByBinder(ctx, binderID)
}

// ensureInteractable checks the user may react to the binder: the account
// is in good standing and the binder is public or their own.
func (s *SocialService) ensureInteractable(ctx context.Context, userID, binderID string) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return apperrors.Unauthorized("unknown user")
		}
		return fmt.Errorf("get user: %w", err)
	}
	if !user.CanInteract() {
		return apperrors.Forbidden("account is suspended")
	}

	return s.ensureVisible(ctx, userID, binderID)
}

// ensureVisible checks the binder exists and is public or owned by the
// caller. Private binders read as missing.
func (s *SocialService) ensureVisible(ctx context.Context, callerID, binderID string) error {
	binder, err := s.store.GetBinder(ctx, binderID)
	if err != nil {
		if errors.Is(err, store.ErrBinderNotFound) {
			return apperrors.NotFound("binder not found")
		}
		return fmt.Errorf("get binder: %w", err)
	}
	if !binder.Public && binder.OwnerID != callerID {
		return apperrors.NotFound("binder not found")
	}
	return nil
}
