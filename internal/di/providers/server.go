package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/binderapp/binder-server/internal/api"
	"github.com/binderapp/binder-server/internal/config"
	"github.com/binderapp/binder-server/internal/logger"
	"github.com/binderapp/binder-server/internal/service"
	"github.com/binderapp/binder-server/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:    do.MustInvoke[*service.AuthService](i),
		Binder:  do.MustInvoke[*service.BinderService](i),
		History: do.MustInvoke[*service.HistoryService](i),
		Share:   do.MustInvoke[*service.ShareService](i),
		Social:  do.MustInvoke[*service.SocialService](i),
		Catalog: do.MustInvoke[*service.CatalogService](i),
		Search:  do.MustInvoke[*service.SearchService](i),
		Sitemap: do.MustInvoke[*service.SitemapService](i),
	}

	vaultHandle := do.MustInvoke[*VaultHandle](i)
	services.Vault = vaultHandle.VaultService

	// SSE connections are scoped to the user the auth middleware resolved.
	sseHandler := sse.NewHandler(sseHandle.Manager, api.UserIDOrEmpty, log.Logger)

	handler := api.NewServer(storeHandle.Store, services, sseHandler, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "public_url", cfg.Server.PublicURL)

	return &HTTPServerHandle{Server: srv}, nil
}
