package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/binderapp/binder-server/internal/catalog"
)

const (
	catalogCardPrefix = "catalog:card:"
	catalogSetPrefix  = "catalog:set:"

	// Card data is effectively immutable once printed; sets gain cards
	// only around releases. Search results are never cached.
	cardCacheDuration = 7 * 24 * time.Hour
	setCacheDuration  = 30 * 24 * time.Hour
)

// CachedCard wraps a fetched catalog card with cache info.
type CachedCard struct {
	Card      *catalog.Card    `json:"card"`
	FetchedAt time.Time        `json:"fetched_at"`
	Provider  catalog.Provider `json:"provider"`
}

// CachedSet wraps a fetched expansion set with cache info.
type CachedSet struct {
	Set       *catalog.Set     `json:"set"`
	FetchedAt time.Time        `json:"fetched_at"`
	Provider  catalog.Provider `json:"provider"`
}

// GetCachedCard retrieves a cached catalog card.
// Returns nil, nil if not found or expired.
func (s *Store) GetCachedCard(ctx context.Context, cardID string) (*CachedCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(catalogCardPrefix + cardID)

	var cached CachedCard
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cached)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached card: %w", err)
	}

	// Check if expired
	if time.Since(cached.FetchedAt) > cardCacheDuration {
		return nil, nil // Treat as cache miss
	}

	return &cached, nil
}

// SetCachedCard stores a catalog card in cache.
func (s *Store) SetCachedCard(ctx context.Context, provider catalog.Provider, card *catalog.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cached := CachedCard{
		Card:      card,
		FetchedAt: time.Now(),
		Provider:  provider,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal cached card: %w", err)
	}

	key := []byte(catalogCardPrefix + card.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// DeleteCachedCard removes a cached catalog card.
func (s *Store) DeleteCachedCard(ctx context.Context, cardID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(catalogCardPrefix + cardID)

	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Idempotent
		}
		return err
	})
}

// GetCachedSet retrieves a cached expansion set.
// Returns nil, nil if not found or expired.
func (s *Store) GetCachedSet(ctx context.Context, setID string) (*CachedSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(catalogSetPrefix + setID)

	var cached CachedSet
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cached)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached set: %w", err)
	}

	if time.Since(cached.FetchedAt) > setCacheDuration {
		return nil, nil
	}

	return &cached, nil
}

// SetCachedSet stores an expansion set in cache.
func (s *Store) SetCachedSet(ctx context.Context, provider catalog.Provider, set *catalog.Set) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cached := CachedSet{
		Set:       set,
		FetchedAt: time.Now(),
		Provider:  provider,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal cached set: %w", err)
	}

	key := []byte(catalogSetPrefix + set.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}
