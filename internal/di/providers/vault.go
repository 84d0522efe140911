package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/binderapp/binder-server/internal/config"
	"github.com/binderapp/binder-server/internal/logger"
	"github.com/binderapp/binder-server/internal/service"
	"github.com/binderapp/binder-server/internal/store/vault"
	"github.com/binderapp/binder-server/internal/watcher"
)

// VaultHandle wraps the vault service with its SQLite database and
// optional import watcher for lifecycle management.
type VaultHandle struct {
	*service.VaultService
	vault   *vault.Vault
	watcher *watcher.Watcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *VaultHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	if h.watcher != nil {
		_ = h.watcher.Stop()
	}
	return h.vault.Close()
}

// ProvideVault provides the offline vault service. When import watching
// is enabled the watcher runs for the lifetime of the handle.
func ProvideVault(i do.Injector) (*VaultHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	v, err := vault.Open(filepath.Join(cfg.Vault.Path, "vault.db"), log.Logger)
	if err != nil {
		return nil, err
	}

	var w *watcher.Watcher
	if cfg.Vault.WatchImports {
		// The canonical export is excluded so Export doesn't immediately
		// re-import the file it just wrote.
		w, err = watcher.New(log.Logger, watcher.Options{
			IgnoreNames: []string{vault.ExportFileName},
		})
		if err != nil {
			_ = v.Close()
			return nil, err
		}
	}

	svc := service.NewVaultService(storeHandle.Store, v, w, sseHandle.Manager, cfg.Vault, log.Logger)

	handle := &VaultHandle{VaultService: svc, vault: v, watcher: w}

	if w != nil {
		ctx, cancel := context.WithCancel(context.Background())
		handle.cancel = cancel
		go func() {
			if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("Vault import watcher stopped", "error", err)
			}
		}()
		log.Info("Vault import watcher started", "path", cfg.Vault.Path)
	}

	return handle, nil
}
