package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/binderapp/binder-server/internal/config"
	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/sse"
	"github.com/binderapp/binder-server/internal/store"
	"github.com/binderapp/binder-server/internal/store/vault"
	"github.com/binderapp/binder-server/internal/watcher"
)

// VaultService mirrors the live store into the SQLite vault and imports
// export files dropped into the vault directory. Imports are last-write
// wins on the binder's UpdatedAt; the live store only accepts strictly
// newer documents.
type VaultService struct {
	store   *store.Store
	vault   *vault.Vault
	watcher *watcher.Watcher
	emitter store.EventEmitter
	cfg     config.VaultConfig
	logger  *slog.Logger
}

// NewVaultService creates a new vault service. watcher may be nil when
// import watching is disabled.
func NewVaultService(
	store *store.Store,
	vault *vault.Vault,
	watcher *watcher.Watcher,
	emitter store.EventEmitter,
	cfg config.VaultConfig,
	logger *slog.Logger,
) *VaultService {
	return &VaultService{
		store:   store,
		vault:   vault,
		watcher: watcher,
		emitter: emitter,
		cfg:     cfg,
		logger:  logger,
	}
}

// ExportPath returns where Export writes the vault export file.
func (s *VaultService) ExportPath() string {
	return filepath.Join(s.cfg.Path, vault.ExportFileName)
}

// Export mirrors every live binder into the vault database and writes the
// export file. Returns how many binders were exported.
func (s *VaultService) Export(ctx context.Context) (int, error) {
	binders, err := s.store.ListAllBinders(ctx)
	if err != nil {
		return 0, fmt.Errorf("list binders: %w", err)
	}

	for _, binder := range binders {
		if err := s.vault.SaveBinder(ctx, binder); err != nil {
			return 0, fmt.Errorf("mirror binder %s: %w", binder.ID, err)
		}
	}

	if err := s.vault.ExportToFile(ctx, s.ExportPath()); err != nil {
		return 0, fmt.Errorf("write export file: %w", err)
	}

	s.logger.Info("vault export written",
		"path", s.ExportPath(),
		"binders", len(binders),
	)

	return len(binders), nil
}

// ImportResult reports what an import changed.
type ImportResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ImportFile reads an export file and upserts its binders into the live
// store and the vault. Binders no newer than the stored copy are skipped.
func (s *VaultService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	base := filepath.Base(path)
	s.emitter.Emit(sse.NewVaultImportStartedEvent(base))

	export, err := vault.ReadExportFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export file: %w", err)
	}

	result := &ImportResult{}
	for _, binder := range export.Binders {
		if binder == nil || binder.ID == "" {
			result.Skipped++
			continue
		}

		outcome, err := s.importBinder(ctx, binder)
		if err != nil {
			s.logger.Warn("failed to import binder",
				"binder_id", binder.ID,
				"path", base,
				"error", err,
			)
			result.Skipped++
			continue
		}

		switch outcome {
		case importAdded:
			result.Added++
		case importUpdated:
			result.Updated++
		default:
			result.Skipped++
		}
	}

	s.emitter.Emit(sse.NewVaultImportCompleteEvent(base, result.Added, result.Updated))

	s.logger.Info("vault import complete",
		"path", base,
		"added", result.Added,
		"updated", result.Updated,
		"skipped", result.Skipped,
	)

	return result, nil
}

type importOutcome int

const (
	importSkipped importOutcome = iota
	importAdded
	importUpdated
)

// importBinder upserts one binder from an export. The vault copy always
// follows whatever the live store accepted.
func (s *VaultService) importBinder(ctx context.Context, binder *domain.Binder) (importOutcome, error) {
	existing, err := s.store.GetBinder(ctx, binder.ID)
	switch {
	case errors.Is(err, store.ErrBinderNotFound):
		if createErr := s.store.CreateBinder(ctx, binder); createErr != nil {
			if errors.Is(createErr, store.ErrBinderExists) {
				// The live document is soft-deleted; the import doesn't
				// resurrect it.
				return importSkipped, nil
			}
			return importSkipped, createErr
		}
		if saveErr := s.vault.SaveBinder(ctx, binder); saveErr != nil {
			s.logger.Warn("failed to mirror imported binder", "binder_id", binder.ID, "error", saveErr)
		}
		return importAdded, nil

	case err != nil:
		return importSkipped, err

	default:
		if !binder.UpdatedAt.After(existing.UpdatedAt) {
			return importSkipped, nil
		}
		if updateErr := s.store.UpdateBinder(ctx, binder); updateErr != nil {
			return importSkipped, updateErr
		}
		if saveErr := s.vault.SaveBinder(ctx, binder); saveErr != nil {
			s.logger.Warn("failed to mirror imported binder", "binder_id", binder.ID, "error", saveErr)
		}
		return importUpdated, nil
	}
}

// Run consumes watcher events until the context is cancelled. Call only
// when import watching is enabled.
func (s *VaultService) Run(ctx context.Context) error {
	if s.watcher == nil {
		return errors.New("vault watcher is not configured")
	}

	if err := s.watcher.Watch(s.cfg.Path); err != nil {
		return fmt.Errorf("watch vault directory: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-s.watcher.Events():
				if !ok {
					return
				}
				s.handleEvent(ctx, event)
			case err, ok := <-s.watcher.Errors():
				if !ok {
					return
				}
				s.logger.Warn("vault watcher error", "error", err)
			}
		}
	}()

	return s.watcher.Start(ctx)
}

// handleEvent reacts to a settled file event in the vault directory.
func (s *VaultService) handleEvent(ctx context.Context, event watcher.Event) {
	switch event.Type {
	case watcher.EventAdded, watcher.EventModified:
		importCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		if _, err := s.ImportFile(importCtx, event.Path); err != nil {
			s.logger.Error("vault import failed",
				"path", event.Path,
				"error", err,
			)
		}
	case watcher.EventRemoved:
		// Removing an export never removes data.
		s.logger.Info("vault export removed", "path", event.Path)
	}
}
