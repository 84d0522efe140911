package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/sse"
)

const binderPrefix = "binder:"

var (
	// ErrBinderNotFound is returned when a binder cannot be found by ID.
	ErrBinderNotFound = errors.New("binder not found")
	// ErrBinderExists is returned when attempting to create a binder with an existing ID.
	ErrBinderExists = errors.New("binder already exists")
	// ErrBinderNotDeleted is returned when restoring a binder that isn't archived.
	ErrBinderNotDeleted = errors.New("binder is not archived")
)

// CreateBinder persists a new binder and indexes it for search.
func (s *Store) CreateBinder(ctx context.Context, binder *domain.Binder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(binderPrefix + binder.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check binder exists: %w", err)
	}
	if exists {
		return ErrBinderExists
	}

	binder.Normalize()

	if err := s.set(key, binder); err != nil {
		return fmt.Errorf("create binder: %w", err)
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.IndexBinder(ctx, binder); err != nil && s.logger != nil {
			s.logger.Warn("failed to index binder", "binder_id", binder.ID, "error", err)
		}
	}

	s.emit(sse.NewBinderCreatedEvent(binder))

	if s.logger != nil {
		s.logger.Info("binder created",
			"binder_id", binder.ID,
			"owner_id", binder.OwnerID,
			"name", binder.Name,
		)
	}

	return nil
}

// GetBinder retrieves a binder by ID. Soft-deleted binders are not found.
func (s *Store) GetBinder(_ context.Context, id string) (*domain.Binder, error) {
	key := []byte(binderPrefix + id)

	var binder domain.Binder
	if err := s.get(key, &binder); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBinderNotFound
		}
		return nil, fmt.Errorf("get binder: %w", err)
	}

	if binder.IsDeleted() {
		return nil, ErrBinderNotFound
	}

	return &binder, nil
}

// UpdateBinder persists changes to an existing binder. The slot map is
// normalized before hitting disk and the search index is refreshed.
func (s *Store) UpdateBinder(ctx context.Context, binder *domain.Binder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(binderPrefix + binder.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check binder exists: %w", err)
	}
	if !exists {
		return ErrBinderNotFound
	}

	binder.Normalize()
	binder.Touch()

	if err := s.set(key, binder); err != nil {
		return fmt.Errorf("update binder: %w", err)
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.IndexBinder(ctx, binder); err != nil && s.logger != nil {
			s.logger.Warn("failed to reindex binder", "binder_id", binder.ID, "error", err)
		}
	}

	s.emit(sse.NewBinderUpdatedEvent(binder))

	return nil
}

// UpdateBinderCards applies a mutation to a binder's slot map atomically.
// The whole read-modify-write runs inside one Badger transaction so
// concurrent edits to the same binder cannot lose slots. The mutation
// function returns the label recorded against the change, or an error to
// abort.
func (s *Store) UpdateBinderCards(ctx context.Context, binderID string, mutate func(*domain.Binder) error) (*domain.Binder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(binderPrefix + binderID)
	var binder domain.Binder

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, key, &binder); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBinderNotFound
			}
			return fmt.Errorf("get binder: %w", err)
		}

		if binder.IsDeleted() {
			return ErrBinderNotFound
		}

		if err := mutate(&binder); err != nil {
			return err
		}

		binder.Normalize()
		binder.Touch()

		return setInTxn(txn, key, &binder)
	})
	if err != nil {
		return nil, err
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.IndexBinder(ctx, &binder); err != nil && s.logger != nil {
			s.logger.Warn("failed to reindex binder", "binder_id", binder.ID, "error", err)
		}
	}

	s.emit(sse.NewBinderCardsChangedEvent(&binder))

	return &binder, nil
}

// DeleteBinder soft-deletes a binder and removes it from the search index.
// Associated share links, history and stats are cleaned up by the caller.
func (s *Store) DeleteBinder(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	binder, err := s.GetBinder(ctx, id)
	if err != nil {
		return err
	}

	binder.MarkDeleted()

	key := []byte(binderPrefix + id)
	if err := s.set(key, binder); err != nil {
		return fmt.Errorf("delete binder: %w", err)
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.DeleteBinder(ctx, id); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove binder from index", "binder_id", id, "error", err)
		}
	}

	s.emit(sse.NewBinderDeletedEvent(id, *binder.DeletedAt))

	if s.logger != nil {
		s.logger.Info("binder deleted", "binder_id", id)
	}

	return nil
}

// RestoreBinder clears a soft delete and puts the binder back in the
// search index. Ownership is checked inside the transaction; a mismatch
// reads as not found. Restoring a live binder returns ErrBinderNotDeleted.
func (s *Store) RestoreBinder(ctx context.Context, ownerID, id string) (*domain.Binder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(binderPrefix + id)
	var binder domain.Binder

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, key, &binder); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBinderNotFound
			}
			return fmt.Errorf("get binder: %w", err)
		}

		if binder.OwnerID != ownerID {
			return ErrBinderNotFound
		}
		if !binder.IsDeleted() {
			return ErrBinderNotDeleted
		}

		binder.Restore()
		return setInTxn(txn, key, &binder)
	})
	if err != nil {
		return nil, err
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.IndexBinder(ctx, &binder); err != nil && s.logger != nil {
			s.logger.Warn("failed to reindex restored binder", "binder_id", id, "error", err)
		}
	}

	s.emit(sse.NewBinderUpdatedEvent(&binder))

	if s.logger != nil {
		s.logger.Info("binder restored", "binder_id", id)
	}

	return &binder, nil
}

// ListBindersByOwner returns all non-deleted binders owned by a user,
// newest first.
func (s *Store) ListBindersByOwner(_ context.Context, ownerID string) ([]*domain.Binder, error) {
	binders, err := s.scanBinders(func(b *domain.Binder) bool {
		return b.OwnerID == ownerID
	})
	if err != nil {
		return nil, fmt.Errorf("list binders by owner: %w", err)
	}
	return binders, nil
}

// ListPublicBinders returns all non-deleted public binders, newest first.
// Used for sitemap generation and the public browse page.
func (s *Store) ListPublicBinders(_ context.Context) ([]*domain.Binder, error) {
	binders, err := s.scanBinders(func(b *domain.Binder) bool {
		return b.Public
	})
	if err != nil {
		return nil, fmt.Errorf("list public binders: %w", err)
	}
	return binders, nil
}

// ListAllBinders returns every non-deleted binder. Used for search index
// rebuilds and vault exports.
func (s *Store) ListAllBinders(_ context.Context) ([]*domain.Binder, error) {
	binders, err := s.scanBinders(func(*domain.Binder) bool {
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list all binders: %w", err)
	}
	return binders, nil
}

// scanBinders iterates the binder prefix, keeping non-deleted entries that
// match the filter.
func (s *Store) scanBinders(match func(*domain.Binder) bool) ([]*domain.Binder, error) {
	prefix := []byte(binderPrefix)
	var binders []*domain.Binder

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				var binder domain.Binder
				if unmarshalErr := json.Unmarshal(val, &binder); unmarshalErr != nil {
					// Skip malformed binders
					return nil //nolint:nilerr // intentionally skip malformed entries
				}

				if binder.IsDeleted() || !match(&binder) {
					return nil
				}

				binders = append(binders, &binder)
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

	sort.Slice(binders, func(i, j int) bool {
		return binders[i].UpdatedAt.After(binders[j].UpdatedAt)
	})

	return binders, nil
}
