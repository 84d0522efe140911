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
	sharePrefix = "share:"

	// shareViewerPrefix keys mark a viewer as recently seen on a share
	// link. Entries carry a Badger TTL so the dedup window expires on its
	// own without a sweep.
	shareViewerPrefix = "shareviewer:"
)

// shareCodeAttempts bounds collision retries during code generation. With
// a 12-character code collisions are effectively impossible, so more than
// a couple of attempts means something is broken.
const shareCodeAttempts = 5

var (
	// ErrShareNotFound is returned when a share link cannot be found by code.
	ErrShareNotFound = errors.New("share link not found")
	// ErrShareInactive is returned when a share link is expired or revoked.
	ErrShareInactive = errors.New("share link is no longer active")
)

// CreateShareLink generates a code and persists a new share link.
// The code doubles as the document key.
func (s *Store) CreateShareLink(ctx context.Context, share *domain.ShareLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for attempt := 0; attempt < shareCodeAttempts; attempt++ {
		code, err := id.ShareCode()
		if err != nil {
			return fmt.Errorf("generate share code: %w", err)
		}

		key := []byte(sharePrefix + code)
		exists, err := s.exists(key)
		if err != nil {
			return fmt.Errorf("check share code: %w", err)
		}
		if exists {
			continue
		}

		share.Code = code
		share.CreatedAt = time.Now()

		if err := s.set(key, share); err != nil {
			return fmt.Errorf("create share link: %w", err)
		}

		s.emit(sse.NewShareCreatedEvent(share))

		if s.logger != nil {
			s.logger.Info("share link created",
				"code", share.Code,
				"binder_id", share.BinderID,
				"owner_id", share.OwnerID,
			)
		}

		return nil
	}

	return fmt.Errorf("generate share code: %d collisions in a row", shareCodeAttempts)
}

// GetShareLink retrieves a share link by code, regardless of whether it is
// still active. Callers enforce expiry for anonymous access.
func (s *Store) GetShareLink(_ context.Context, code string) (*domain.ShareLink, error) {
	key := []byte(sharePrefix + code)

	var share domain.ShareLink
	if err := s.get(key, &share); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("get share link: %w", err)
	}

	return &share, nil
}

// RecordShareView bumps view counters on a share link inside one
// transaction. viewerKey identifies the viewer (hashed IP or client token)
// for unique-viewer dedup; dedupWindow controls how long a viewer stays
// non-unique. Returns the updated link.
func (s *Store) RecordShareView(ctx context.Context, code, viewerKey string, dedupWindow time.Duration) (*domain.ShareLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(sharePrefix + code)
	viewerDedupKey := []byte(shareViewerPrefix + code + ":" + viewerKey)
	now := time.Now()

	var share domain.ShareLink
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, key, &share); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrShareNotFound
			}
			return fmt.Errorf("get share link: %w", err)
		}

		if !share.Active(now) {
			return ErrShareInactive
		}

		// A viewer is unique if no dedup marker survives for them.
		unique := false
		_, err := txn.Get(viewerDedupKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			unique = true
		} else if err != nil {
			return fmt.Errorf("check viewer dedup: %w", err)
		}

		share.RecordView(now, unique)

		if unique && dedupWindow > 0 {
			entry := badger.NewEntry(viewerDedupKey, nil).WithTTL(dedupWindow)
			if err := txn.SetEntry(entry); err != nil {
				return fmt.Errorf("set viewer dedup: %w", err)
			}
		}

		return setInTxn(txn, key, &share)
	})
	if err != nil {
		return nil, err
	}

	s.emit(sse.NewShareViewedEvent(&share, now))

	return &share, nil
}

// RevokeShareLink marks a share link as revoked. Revoking an already
// revoked link is a no-op.
func (s *Store) RevokeShareLink(ctx context.Context, code string) (*domain.ShareLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(sharePrefix + code)

	var share domain.ShareLink
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, key, &share); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrShareNotFound
			}
			return fmt.Errorf("get share link: %w", err)
		}

		if share.Revoked() {
			return nil
		}

		now := time.Now()
		share.RevokedAt = &now

		return setInTxn(txn, key, &share)
	})
	if err != nil {
		return nil, err
	}

	s.emit(sse.NewShareRevokedEvent(&share))

	if s.logger != nil {
		s.logger.Info("share link revoked", "code", code, "binder_id", share.BinderID)
	}

	return &share, nil
}

// ListShareLinksByOwner returns all share links created by a user, newest
// first. Includes expired and revoked links so owners can see history.
func (s *Store) ListShareLinksByOwner(_ context.Context, ownerID string) ([]*domain.ShareLink, error) {
	shares, err := s.scanShareLinks(func(l *domain.ShareLink) bool {
		return l.OwnerID == ownerID
	})
	if err != nil {
		return nil, fmt.Errorf("list share links by owner: %w", err)
	}
	return shares, nil
}

// ListShareLinksByBinder returns all share links for a binder, newest first.
func (s *Store) ListShareLinksByBinder(_ context.Context, binderID string) ([]*domain.ShareLink, error) {
	shares, err := s.scanShareLinks(func(l *domain.ShareLink) bool {
		return l.BinderID == binderID
	})
	if err != nil {
		return nil, fmt.Errorf("list share links by binder: %w", err)
	}
	return shares, nil
}

// DeleteShareLinksForBinder removes all share links for a binder. Used
// when deleting a binder.
func (s *Store) DeleteShareLinksForBinder(ctx context.Context, binderID string) error {
	shares, err := s.ListShareLinksByBinder(ctx, binderID)
	if err != nil {
		return err
	}

	for _, share := range shares {
		if err := s.delete([]byte(sharePrefix + share.Code)); err != nil {
			return fmt.Errorf("delete share link %s: %w", share.Code, err)
		}
	}

	if s.logger != nil && len(shares) > 0 {
		s.logger.Info("deleted share links for binder",
			"binder_id", binderID,
			"count", len(shares),
		)
	}

	return nil
}

// PruneExpiredShareLinks deletes share links whose expiry passed more than
// the grace period ago. Returns the number removed. Run from a background
// ticker.
func (s *Store) PruneExpiredShareLinks(ctx context.Context, grace time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-grace)
	expired, err := s.scanShareLinks(func(l *domain.ShareLink) bool {
		return l.ExpiresAt != nil && l.ExpiresAt.Before(cutoff)
	})
	if err != nil {
		return 0, fmt.Errorf("scan expired share links: %w", err)
	}

	for _, share := range expired {
		if err := s.delete([]byte(sharePrefix + share.Code)); err != nil {
			return 0, fmt.Errorf("delete expired share link %s: %w", share.Code, err)
		}
	}

	if s.logger != nil && len(expired) > 0 {
		s.logger.Info("pruned expired share links", "count", len(expired))
	}

	return len(expired), nil
}

// scanShareLinks iterates the share prefix, keeping entries that match the
// filter, newest first.
func (s *Store) scanShareLinks(match func(*domain.ShareLink) bool) ([]*domain.ShareLink, error) {
	prefix := []byte(sharePrefix)
	var shares []*domain.ShareLink

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				var share domain.ShareLink
				if unmarshalErr := json.Unmarshal(val, &share); unmarshalErr != nil {
					// Skip malformed entries
					return nil //nolint:nilerr // intentionally skip malformed entries
				}

				if match(&share) {
					shares = append(shares, &share)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(shares, func(i, j int) bool {
		return shares[i].CreatedAt.After(shares[j].CreatedAt)
	})

	return shares, nil
}
