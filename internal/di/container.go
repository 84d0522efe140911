// Package di provides dependency injection configuration for the binder server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/binderapp/binder-server/internal/auth"
	"github.com/binderapp/binder-server/internal/catalog/ptcg"
	"github.com/binderapp/binder-server/internal/catalog/tcgdex"
	"github.com/binderapp/binder-server/internal/config"
	"github.com/binderapp/binder-server/internal/di/providers"
	"github.com/binderapp/binder-server/internal/logger"
	"github.com/binderapp/binder-server/internal/media/images"
	"github.com/binderapp/binder-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Catalog layer
	do.Provide(injector, providers.ProvidePTCGClient)
	do.Provide(injector, providers.ProvideTCGdexClient)
	do.Provide(injector, providers.ProvideImageStorage)
	do.Provide(injector, providers.ProvideImageFetcher)
	do.Provide(injector, providers.ProvideCatalogService)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBinderService)
	do.Provide(injector, providers.ProvideHistoryService)
	do.Provide(injector, providers.ProvideShareService)
	do.Provide(injector, providers.ProvideSocialService)
	do.Provide(injector, providers.ProvideSitemapService)

	// Offline vault
	do.Provide(injector, providers.ProvideVault)

	// Workers
	do.Provide(injector, providers.ProvideSharePruner)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*ptcg.Client](injector)
	_ = do.MustInvoke[*tcgdex.Client](injector)
	_ = do.MustInvoke[*images.Storage](injector)
	_ = do.MustInvoke[*images.Fetcher](injector)
	_ = do.MustInvoke[*service.CatalogService](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.BinderService](injector)
	_ = do.MustInvoke[*service.HistoryService](injector)
	_ = do.MustInvoke[*service.ShareService](injector)
	_ = do.MustInvoke[*service.SocialService](injector)
	_ = do.MustInvoke[*service.SitemapService](injector)

	// Offline vault
	_ = do.MustInvoke[*providers.VaultHandle](injector)

	// Workers
	_ = do.MustInvoke[*providers.SharePrunerHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the search index if it's empty but binders exist
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
