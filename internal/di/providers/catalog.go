package providers

import (
	"github.com/samber/do/v2"

	"github.com/binderapp/binder-server/internal/catalog/ptcg"
	"github.com/binderapp/binder-server/internal/catalog/tcgdex"
	"github.com/binderapp/binder-server/internal/config"
	"github.com/binderapp/binder-server/internal/logger"
	"github.com/binderapp/binder-server/internal/media/images"
	"github.com/binderapp/binder-server/internal/service"
)

// ProvidePTCGClient provides the primary card catalog client.
func ProvidePTCGClient(i do.Injector) (*ptcg.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	opts := []ptcg.Option{}
	if cfg.Catalog.APIKey != "" {
		opts = append(opts, ptcg.WithAPIKey(cfg.Catalog.APIKey))
	} else {
		log.Warn("No catalog API key configured, running with the unauthenticated quota")
	}

	return ptcg.New(log.Logger, opts...), nil
}

// ProvideTCGdexClient provides the fallback card catalog client.
func ProvideTCGdexClient(i do.Injector) (*tcgdex.Client, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return tcgdex.New(log.Logger), nil
}

// ProvideImageStorage provides the card image cache storage.
func ProvideImageStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return images.NewStorage(cfg.ImageCachePath())
}

// ProvideImageFetcher provides the card image fetcher.
func ProvideImageFetcher(i do.Injector) (*images.Fetcher, error) {
	storage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)
	return images.NewFetcher(storage, log.Logger), nil
}

// ProvideCatalogService provides the card catalog service with failover.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	primary := do.MustInvoke[*ptcg.Client](i)
	fallback := do.MustInvoke[*tcgdex.Client](i)
	fetcher := do.MustInvoke[*images.Fetcher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, primary, fallback, fetcher, cfg.Catalog, log.Logger), nil
}
