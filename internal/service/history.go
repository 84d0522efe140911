package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/binderapp/binder-server/internal/errors"

	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/store"
)

// HistoryService walks the snapshot undo log for a binder. The cursor
// moves inside a store transaction, then the binder's slot map is
// replaced with the snapshot the cursor landed on. Restores themselves
// don't record new history, so undo/redo never grow the log.
type HistoryService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewHistoryService creates a new history service.
func NewHistoryService(store *store.Store, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		store:  store,
		logger: logger,
	}
}

// HistoryStatus summarizes the undo log for a binder.
type HistoryStatus struct {
	BinderID string   `json:"binder_id"`
	CanUndo  bool     `json:"can_undo"`
	CanRedo  bool     `json:"can_redo"`
	Entries  int      `json:"entries"`
	Cursor   int      `json:"cursor"`
	Labels   []string `json:"labels,omitempty"`
}

// Status reports whether undo/redo are available and what the log holds.
func (s *HistoryService) Status(ctx context.Context, ownerID, binderID string) (*HistoryStatus, error) {
	if err := s.ensureOwned(ctx, ownerID, binderID); err != nil {
		return nil, err
	}

	history, err := s.store.GetHistory(ctx, binderID)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	labels := make([]string, 0, history.Len())
	for _, entry := range history.Entries {
		labels = append(labels, entry.Label)
	}

	return &HistoryStatus{
		BinderID: binderID,
		CanUndo:  history.CanUndo(),
		CanRedo:  history.CanRedo(),
		Entries:  history.Len(),
		Cursor:   history.Cursor,
		Labels:   labels,
	}, nil
}

// Undo steps the binder back to the previous snapshot.
func (s *HistoryService) Undo(ctx context.Context, ownerID, binderID string) (*domain.Binder, error) {
	return s.step(ctx, ownerID, binderID, "undo", func(h *domain.History) (domain.Snapshot, bool) {
		return h.Undo()
	})
}

// Redo steps the binder forward to the next snapshot.
func (s *HistoryService) Redo(ctx context.Context, ownerID, binderID string) (*domain.Binder, error) {
	return s.step(ctx, ownerID, binderID, "redo", func(h *domain.History) (domain.Snapshot, bool) {
		return h.Redo()
	})
}

// Clear drops the undo log for a binder. The binder itself is untouched.
func (s *HistoryService) Clear(ctx context.Context, ownerID, binderID string) error {
	if err := s.ensureOwned(ctx, ownerID, binderID); err != nil {
		return err
	}

	if err := s.store.DeleteHistory(ctx, binderID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	s.logger.Info("undo history cleared", "binder_id", binderID)
	return nil
}

// step moves the cursor and restores the snapshot it lands on. The cursor
// move commits first; if the restore then fails the log is one step out of
// sync with the binder, which the next successful step corrects.
func (s *HistoryService) step(ctx context.Context, ownerID, binderID, direction string, move func(*domain.History) (domain.Snapshot, bool)) (*domain.Binder, error) {
	if err := s.ensureOwned(ctx, ownerID, binderID); err != nil {
		return nil, err
	}

	var snapshot domain.Snapshot
	if _, err := s.store.UpdateHistory(ctx, binderID, func(h *domain.History) error {
		snap, ok := move(h)
		if !ok {
			return apperrors.Conflictf("nothing to %s", direction)
		}
		snapshot = snap
		return nil
	}); err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("%s history: %w", direction, err)
	}

	binder, err := s.store.UpdateBinderCards(ctx, binderID, func(b *domain.Binder) error {
		b.RestoreCards(snapshot.Cards)
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrBinderNotFound) {
			return nil, apperrors.NotFound("binder not found")
		}
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}

	s.logger.Info("history step applied",
		"binder_id", binderID,
		"direction", direction,
		"label", snapshot.Label,
	)

	return binder, nil
}

// ensureOwned checks the binder exists and belongs to the caller.
func (s *HistoryService) ensureOwned(ctx context.Context, ownerID, binderID string) error {
	binder, err := s.store.GetBinder(ctx, binderID)
	if err != nil {
		if errors.Is(err, store.ErrBinderNotFound) {
			return apperrors.NotFound("binder not found")
		}
		return fmt.Errorf("get binder: %w", err)
	}
	if binder.OwnerID != ownerID {
		return apperrors.NotFound("binder not found")
	}
	return nil
}
