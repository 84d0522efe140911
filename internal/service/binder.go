// Package service provides the business logic layer for binders, sharing,
// social interactions, catalog lookups and the offline vault.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/binderapp/binder-server/internal/errors"

	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/id"
	"github.com/binderapp/binder-server/internal/store"
	"github.com/binderapp/binder-server/internal/util"
)

// BinderService orchestrates binder CRUD and slot mutations. Every slot
// mutation records an undo snapshot before it lands.
type BinderService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewBinderService creates a new binder service.
func NewBinderService(store *store.Store, logger *slog.Logger) *BinderService {
	return &BinderService{
		store:  store,
		logger: logger,
	}
}

// CreateBinderInput carries the fields a user controls at creation.
type CreateBinderInput struct {
	Name        string
	Description string
	Public      bool
	Settings    *domain.BinderSettings
}

// Create makes a new empty binder for the owner.
func (s *BinderService) Create(ctx context.Context, ownerID string, input CreateBinderInput) (*domain.Binder, error) {
	if input.Name == "" {
		return nil, apperrors.Validation("binder name is required")
	}

	settings := domain.DefaultSettings()
	if input.Settings != nil {
		settings = *input.Settings
		if settings.SortOrder == "" {
			settings.SortOrder = domain.SortManual
		}
		if err := settings.Validate(); err != nil {
			return nil, apperrors.Validation(err.Error())
		}
	}

	binderID, err := id.Generate("bnd")
	if err != nil {
		return nil, fmt.Errorf("generate binder ID: %w", err)
	}

	binder := &domain.Binder{
		Syncable:    domain.Syncable{ID: binderID},
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
		Slug:        util.Slugify(input.Name),
		Public:      input.Public,
		Settings:    settings,
		Cards:       make(map[int]domain.CardRef),
	}
	binder.InitTimestamps()

	if err := s.store.CreateBinder(ctx, binder); err != nil {
		return nil, fmt.Errorf("create binder: %w", err)
	}

	s.logger.Info("binder created",
		"binder_id", binder.ID,
		"owner_id", ownerID,
		"name", binder.Name,
	)

	return binder, nil
}

// Get returns a binder if the caller may see it: owners always, everyone
// else only when it's public. An empty callerID means anonymous.
func (s *BinderService) Get(ctx context.Context, callerID, binderID string) (*domain.Binder, error) {
	binder, err := s.store.GetBinder(ctx, binderID)
	if err != nil {
		if errors.Is(err, store.ErrBinderNotFound) {
			return nil, apperrors.NotFound("binder not found")
		}
		return nil, fmt.Errorf("get binder: %w", err)
	}

	if binder.OwnerID != callerID && !binder.Public {
		// Hide private binders entirely instead of revealing they exist.
		return nil, apperrors.NotFound("binder not found")
	}

	return binder, nil
}

// ListByOwner returns the caller's binders, newest first.
func (s *BinderService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Binder, error) {
	return s.store.ListBindersByOwner(ctx, ownerID)
}

// ListPublic returns all public binders, newest first.
func (s *BinderService) ListPublic(ctx context.Context) ([]*domain.Binder, error) {
	return s.store.ListPublicBinders(ctx)
}

// UpdateBinderInput carries optional metadata updates. Nil fields are
// left unchanged.
type UpdateBinderInput struct {
	Name        *string
	Description *string
	Public      *bool
	Settings    *domain.BinderSettings
}

// Update applies metadata and settings changes. Only the owner may update.
func (s *BinderService) Update(ctx context.Context, ownerID, binderID string, input UpdateBinderInput) (*domain.Binder, error) {
	binder, err := s.getOwned(ctx, ownerID, binderID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.Validation("binder name cannot be empty")
		}
		binder.Name = *input.Name
		binder.Slug = util.Slugify(*input.Name)
	}
	if input.Description != nil {
		binder.Description = *input.Description
	}
	if input.Public != nil {
		binder.Public = *input.Public
	}
	if input.Settings != nil {
		settings := *input.Settings
		if settings.SortOrder == "" {
			settings.SortOrder = binder.Settings.SortOrder
		}
		if err := settings.Validate(); err != nil {
			return nil, apperrors.Validation(err.Error())
		}
		binder.Settings = settings
	}

	if err := s.store.UpdateBinder(ctx, binder); err != nil {
		return nil, fmt.Errorf("update binder: %w", err)
	}

	return binder, nil
}

// Archive soft-deletes a binder and tears down its share links and undo
// history. The document stays on disk for restore.
func (s *BinderService) Archive(ctx context.Context, ownerID, binderID string) error {
	if _, err := s.getOwned(ctx, ownerID, binderID); err != nil {
		return err
	}

	if err := s.store.DeleteBinder(ctx, binderID); err != nil {
		return fmt.Errorf("archive binder: %w", err)
	}
	if err := s.store.DeleteShareLinksForBinder(ctx, binderID); err != nil {
		s.logger.Warn("failed to delete share links for archived binder",
			"binder_id", binderID,
			"error", err,
		)
	}
	if err := s.store.DeleteHistory(ctx, binderID); err != nil {
		s.logger.Warn("failed to delete history for archived binder",
			"binder_id", binderID,
			"error", err,
		)
	}

	return nil
}

// Restore clears a soft delete.
func (s *BinderService) Restore(ctx context.Context, ownerID, binderID string) (*domain.Binder, error) {
	binder, err := s.store.RestoreBinder(ctx, ownerID, binderID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrBinderNotFound):
			return nil, apperrors.NotFound("binder not found")
		case errors.Is(err, store.ErrBinderNotDeleted):
			return nil, apperrors.Conflict("binder is not archived")
		default:
			return nil, fmt.Errorf("restore binder: %w", err)
		}
	}

	return binder, nil
}

// AddCard places a card in a slot. A negative position means "first free
// slot".
func (s *BinderService) AddCard(ctx context.Context, ownerID, binderID string, pos int, ref domain.CardRef) (*domain.Binder, error) {
	if ref.IsEmpty() {
		return nil, apperrors.Validation("card_id is required")
	}
	if !ref.Condition.Valid() {
		return nil, apperrors.Validationf("unknown condition %q", ref.Condition)
	}
	if ref.AddedAt.IsZero() {
		ref.AddedAt = time.Now()
	}

	return s.mutateCards(ctx, ownerID, binderID, "add "+ref.CardID, func(b *domain.Binder) error {
		target := pos
		if target < 0 {
			target = b.FirstFreeSlot()
			if target < 0 {
				return apperrors.Conflict("binder is full")
			}
		}
		if err := b.PlaceCard(target, ref); err != nil {
			return apperrors.Conflict(err.Error())
		}
		return nil
	})
}

// RemoveCard clears a slot.
func (s *BinderService) RemoveCard(ctx context.Context, ownerID, binderID string, pos int) (*domain.Binder, error) {
	return s.mutateCards(ctx, ownerID, binderID, fmt.Sprintf("remove slot %d", pos), func(b *domain.Binder) error {
		if _, removed := b.RemoveCard(pos); !removed {
			return apperrors.NotFoundf("slot %d is empty", pos)
		}
		return nil
	})
}

// MoveCard relocates a card; an occupied target swaps.
func (s *BinderService) MoveCard(ctx context.Context, ownerID, binderID string, from, to int) (*domain.Binder, error) {
	return s.mutateCards(ctx, ownerID, binderID, fmt.Sprintf("move %d to %d", from, to), func(b *domain.Binder) error {
		if err := b.MoveCard(from, to); err != nil {
			return apperrors.Conflict(err.Error())
		}
		return nil
	})
}

// SwapCards exchanges two occupied slots.
func (s *BinderService) SwapCards(ctx context.Context, ownerID, binderID string, a, b int) (*domain.Binder, error) {
	return s.mutateCards(ctx, ownerID, binderID, fmt.Sprintf("swap %d and %d", a, b), func(binder *domain.Binder) error {
		if err := binder.SwapCards(a, b); err != nil {
			return apperrors.Conflict(err.Error())
		}
		return nil
	})
}

// ClearPage removes every card on one page.
func (s *BinderService) ClearPage(ctx context.Context, ownerID, binderID string, page int) (*domain.Binder, error) {
	if page < 0 {
		return nil, apperrors.Validation("page cannot be negative")
	}
	return s.mutateCards(ctx, ownerID, binderID, fmt.Sprintf("clear page %d", page), func(b *domain.Binder) error {
		if b.ClearPage(page) == 0 {
			return apperrors.NotFoundf("page %d is already empty", page)
		}
		return nil
	})
}

// Condense shifts all cards toward slot zero, removing gaps.
func (s *BinderService) Condense(ctx context.Context, ownerID, binderID string) (*domain.Binder, error) {
	return s.mutateCards(ctx, ownerID, binderID, "condense", func(b *domain.Binder) error {
		b.Condense()
		return nil
	})
}

// mutateCards runs a slot mutation with ownership enforcement and records
// the undo snapshot. The pre-mutation state is captured inside the store
// transaction so the snapshot can't drift from what was actually replaced.
func (s *BinderService) mutateCards(ctx context.Context, ownerID, binderID, label string, mutate func(*domain.Binder) error) (*domain.Binder, error) {
	var before, after map[int]domain.CardRef

	binder, err := s.store.UpdateBinderCards(ctx, binderID, func(b *domain.Binder) error {
		if b.OwnerID != ownerID || b.IsDeleted() {
			return apperrors.NotFound("binder not found")
		}
		before = b.SnapshotCards()
		if err := mutate(b); err != nil {
			return err
		}
		after = b.SnapshotCards()
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrBinderNotFound) {
			return nil, apperrors.NotFound("binder not found")
		}
		return nil, err
	}

	if _, err := s.store.UpdateHistory(ctx, binderID, func(h *domain.History) error {
		// Seed the log with the pre-mutation state so the very first
		// operation is undoable.
		if h.Len() == 0 {
			h.Record(before, "initial")
		}
		h.Record(after, label)
		return nil
	}); err != nil {
		s.logger.Warn("failed to record undo snapshot",
			"binder_id", binderID,
			"label", label,
			"error", err,
		)
	}

	return binder, nil
}

// getOwned loads a binder and enforces ownership. Non-owners get the same
// not-found as missing binders.
func (s *BinderService) getOwned(ctx context.Context, ownerID, binderID string) (*domain.Binder, error) {
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
	return binder, nil
}
