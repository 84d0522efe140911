package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/binderapp/binder-server/internal/domain"
)

const historyPrefix = "history:"

// GetHistory retrieves the undo history for a binder. A binder with no
// recorded history gets a fresh empty log rather than an error.
func (s *Store) GetHistory(_ context.Context, binderID string) (*domain.History, error) {
	key := []byte(historyPrefix + binderID)

	var history domain.History
	if err := s.get(key, &history); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.NewHistory(binderID), nil
		}
		return nil, fmt.Errorf("get history: %w", err)
	}

	return &history, nil
}

// UpdateHistory applies a mutation to a binder's undo history atomically.
// Record, Undo and Redo all go through here so concurrent edits cannot
// interleave cursor moves with snapshot appends.
func (s *Store) UpdateHistory(ctx context.Context, binderID string, mutate func(*domain.History) error) (*domain.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(historyPrefix + binderID)
	history := domain.NewHistory(binderID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, key, history); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get history: %w", err)
		}

		if err := mutate(history); err != nil {
			return err
		}

		return setInTxn(txn, key, history)
	})
	if err != nil {
		return nil, err
	}

	return history, nil
}

// DeleteHistory removes a binder's undo history. Called when the binder
// itself is deleted. Idempotent.
func (s *Store) DeleteHistory(_ context.Context, binderID string) error {
	key := []byte(historyPrefix + binderID)

	if err := s.delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete history: %w", err)
	}

	return nil
}
