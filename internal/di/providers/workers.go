package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/binderapp/binder-server/internal/logger"
	"github.com/binderapp/binder-server/internal/service"
)

const (
	// sharePruneInterval is how often expired share links are swept.
	sharePruneInterval = 6 * time.Hour
	// sharePruneGrace keeps expired links around briefly so owners can
	// still see their final analytics.
	sharePruneGrace = 24 * time.Hour
)

// SharePrunerHandle runs the periodic share link sweep.
type SharePrunerHandle struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SharePrunerHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideSharePruner provides the background job that removes expired
// share links.
func ProvideSharePruner(i do.Injector) (*SharePrunerHandle, error) {
	shareService := do.MustInvoke[*service.ShareService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(sharePruneInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := shareService.Prune(ctx, sharePruneGrace); err != nil {
					log.Warn("Share link prune failed", "error", err)
				}
			}
		}
	}()

	log.Info("Share link pruner started", "interval", sharePruneInterval)

	return &SharePrunerHandle{cancel: cancel}, nil
}
