package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/binderapp/binder-server/internal/errors"

	"github.com/binderapp/binder-server/internal/config"
	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/store"
)

// maxShareTTL bounds how far out a caller may push an expiry.
const maxShareTTL = 365 * 24 * time.Hour

// ShareService manages anonymous share links and their view analytics.
type ShareService struct {
	store  *store.Store
	cfg    config.ShareConfig
	logger *slog.Logger
}

// NewShareService creates a new share service.
func NewShareService(store *store.Store, cfg config.ShareConfig, logger *slog.Logger) *ShareService {
	return &ShareService{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// CreateShareInput configures a new share link. A nil TTL applies the
// configured default; an explicit zero makes the link permanent.
type CreateShareInput struct {
	BinderID string
	TTL      *time.Duration
}

// Create issues a new share link for an owned binder.
func (s *ShareService) Create(ctx context.Context, ownerID string, input CreateShareInput) (*domain.ShareLink, error) {
	binder, err := s.store.GetBinder(ctx, input.BinderID)
	if err != nil {
		if errors.Is(err, store.ErrBinderNotFound) {
			return nil, apperrors.NotFound("binder not found")
		}
		return nil, fmt.Errorf("get binder: %w", err)
	}
	if binder.OwnerID != ownerID {
		return nil, apperrors.NotFound("binder not found")
	}

	ttl := s.cfg.DefaultTTL
	if input.TTL != nil {
		ttl = *input.TTL
	}
	if ttl < 0 {
		return nil, apperrors.Validation("share TTL cannot be negative")
	}
	if ttl > maxShareTTL {
		return nil, apperrors.Validationf("share TTL cannot exceed %s", maxShareTTL)
	}

	share := &domain.ShareLink{
		BinderID: input.BinderID,
		OwnerID:  ownerID,
	}
	if ttl > 0 {
		expires := time.Now().Add(ttl)
		share.ExpiresAt = &expires
	}

	if err := s.store.CreateShareLink(ctx, share); err != nil {
		return nil, fmt.Errorf("create share link: %w", err)
	}

	return share, nil
}

// SharedBinder is what an anonymous viewer gets back from a share code.
type SharedBinder struct {
	Share  *domain.ShareLink `json:"share"`
	Binder *domain.Binder    `json:"binder"`
}

// Resolve looks up a share code and returns the binder behind it,
// recording the view. viewerKey identifies the viewer for unique-viewer
// dedup; pass a hashed address via ViewerKey.
func (s *ShareService) Resolve(ctx context.Context, code, viewerKey string) (*SharedBinder, error) {
	share, err := s.store.GetShareLink(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrShareNotFound) {
			return nil, apperrors.NotFound("share link not found")
		}
		return nil, fmt.Errorf("get share link: %w", err)
	}

	now := time.Now()
	if share.Revoked() {
		// Revoked links read as gone, not as "was revoked".
		return nil, apperrors.NotFound("share link not found")
	}
	if share.Expired(now) {
		return nil, apperrors.Expired("share link has expired")
	}

	binder, err := s.store.GetBinder(ctx, share.BinderID)
	if err != nil {
		if errors.Is(err, store.ErrBinderNotFound) {
			// The binder was archived out from under the link.
			return nil, apperrors.NotFound("share link not found")
		}
		return nil, fmt.Errorf("get shared binder: %w", err)
	}

	updated, err := s.store.RecordShareView(ctx, code, viewerKey, s.cfg.ViewCooldown)
	if err != nil {
		// Analytics failures never block the viewer.
		s.logger.Warn("failed to record share view", "code", code, "error", err)
		updated = share
	}

	if err := s.store.IncrementBinderViews(ctx, share.BinderID); err != nil {
		s.logger.Warn("failed to bump binder views", "binder_id", share.BinderID, "error", err)
	}

	return &SharedBinder{Share: updated, Binder: binder}, nil
}

// Revoke deactivates a share link. Only the owner may revoke.
func (s *ShareService) Revoke(ctx context.Context, ownerID, code string) (*domain.ShareLink, error) {
	share, err := s.store.GetShareLink(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrShareNotFound) {
			return nil, apperrors.NotFound("share link not found")
		}
		return nil, fmt.Errorf("get share link: %w", err)
	}
	if share.OwnerID != ownerID {
		return nil, apperrors.NotFound("share link not found")
	}
	if share.Revoked() {
		return nil, apperrors.Conflict("share link is already revoked")
	}

	revoked, err := s.store.RevokeShareLink(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("revoke share link: %w", err)
	}

	return revoked, nil
}

// ListByOwner returns all of the caller's share links, active or not.
func (s *ShareService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.ShareLink, error) {
	return s.store.ListShareLinksByOwner(ctx, ownerID)
}

// ListByBinder returns the share links for one owned binder.
func (s *ShareService) ListByBinder(ctx context.Context, ownerID, binderID string) ([]*domain.ShareLink, error) {
	binder, err := s.store.GetBinder(ctx, binderID)
	if err != nil {
		if errors.Is(err, store.ErrBinderNotFound) {
			return nil, apperrors.NotFound("binder not found")
		}
		return nil, fmt.Errorf("get binder: %w", err)
	}
	if binder.OwnerID != ownerID {
		return nil, apperrors.NotFound("binder not found")
	}

	return s.store.ListShareLinksByBinder(ctx, binderID)
}

// Prune removes share links that expired more than grace ago. Returns how
// many were deleted. Run periodically from the server's maintenance loop.
func (s *ShareService) Prune(ctx context.Context, grace time.Duration) (int, error) {
	pruned, err := s.store.PruneExpiredShareLinks(ctx, grace)
	if err != nil {
		return 0, fmt.Errorf("prune share links: %w", err)
	}
	if pruned > 0 {
		s.logger.Info("pruned expired share links", "count", pruned)
	}
	return pruned, nil
}

// ViewerKey derives an opaque dedup key from a viewer address. Raw
// addresses never hit the store.
func ViewerKey(addr string) string {
	sum := sha256.Sum256([]byte(addr))
	return hex.EncodeToString(sum[:16])
}
