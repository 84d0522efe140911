package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/binderapp/binder-server/internal/errors"

	"github.com/binderapp/binder-server/internal/catalog"
	"github.com/binderapp/binder-server/internal/catalog/ptcg"
	"github.com/binderapp/binder-server/internal/catalog/tcgdex"
	"github.com/binderapp/binder-server/internal/config"
	"github.com/binderapp/binder-server/internal/media/images"
	"github.com/binderapp/binder-server/internal/store"
)

// CardProvider is the read surface both catalog clients share.
type CardProvider interface {
	GetCard(ctx context.Context, id string) (*catalog.Card, error)
	SearchCards(ctx context.Context, params catalog.SearchParams) (*catalog.SearchPage, error)
	GetSet(ctx context.Context, id string) (*catalog.Set, error)
}

// CatalogService resolves cards and sets through the cache, the primary
// provider and the fallback, in that order. Search results are never
// cached; card and set payloads are.
type CatalogService struct {
	store    *store.Store
	primary  CardProvider
	fallback CardProvider
	fetcher  *images.Fetcher
	cfg      config.CatalogConfig
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service. fallback may be nil
// when the secondary provider is disabled.
func NewCatalogService(
	store *store.Store,
	primary CardProvider,
	fallback CardProvider,
	fetcher *images.Fetcher,
	cfg config.CatalogConfig,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		store:    store,
		primary:  primary,
		fallback: fallback,
		fetcher:  fetcher,
		cfg:      cfg,
		logger:   logger,
	}
}

// GetCard resolves a single card by provider ID.
func (s *CatalogService) GetCard(ctx context.Context, cardID string) (*catalog.Card, error) {
	if cardID == "" {
		return nil, apperrors.Validation("card ID is required")
	}

	if cached, err := s.store.GetCachedCard(ctx, cardID); err != nil {
		s.logger.Warn("card cache read failed", "card_id", cardID, "error", err)
	} else if cached != nil && s.fresh(cached.FetchedAt) {
		return cached.Card, nil
	}

	card, provider, err := s.resolveCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetCachedCard(ctx, provider, card); err != nil {
		s.logger.Warn("card cache write failed", "card_id", cardID, "error", err)
	}

	return card, nil
}

// GetSet resolves a single expansion set by ID.
func (s *CatalogService) GetSet(ctx context.Context, setID string) (*catalog.Set, error) {
	if setID == "" {
		return nil, apperrors.Validation("set ID is required")
	}

	if cached, err := s.store.GetCachedSet(ctx, setID); err != nil {
		s.logger.Warn("set cache read failed", "set_id", setID, "error", err)
	} else if cached != nil && s.fresh(cached.FetchedAt) {
		return cached.Set, nil
	}

	set, err := s.primary.GetSet(ctx, setID)
	if err == nil {
		if cacheErr := s.store.SetCachedSet(ctx, catalog.ProviderPTCG, set); cacheErr != nil {
			s.logger.Warn("set cache write failed", "set_id", setID, "error", cacheErr)
		}
		return set, nil
	}
	if errors.Is(err, ptcg.ErrNotFound) {
		return nil, apperrors.NotFoundf("set %q not found", setID)
	}

	if fb := s.fallbackFor(err); fb != nil {
		set, fbErr := fb.GetSet(ctx, setID)
		if fbErr == nil {
			if cacheErr := s.store.SetCachedSet(ctx, catalog.ProviderTCGdex, set); cacheErr != nil {
				s.logger.Warn("set cache write failed", "set_id", setID, "error", cacheErr)
			}
			return set, nil
		}
		if errors.Is(fbErr, tcgdex.ErrNotFound) {
			return nil, apperrors.NotFoundf("set %q not found", setID)
		}
		s.logger.Warn("fallback set lookup failed", "set_id", setID, "error", fbErr)
	}

	return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, "card catalog is unavailable")
}

// SearchCards runs a search against the primary provider, falling back
// when the primary is down or rate limited.
func (s *CatalogService) SearchCards(ctx context.Context, params catalog.SearchParams) (*catalog.SearchPage, error) {
	if params.Name == "" && params.SetID == "" && params.Rarity == "" && params.Supertype == "" && len(params.Types) == 0 {
		return nil, apperrors.Validation("at least one search filter is required")
	}

	page, err := s.primary.SearchCards(ctx, params)
	if err == nil {
		return page, nil
	}
	if errors.Is(err, ptcg.ErrBadRequest) {
		return nil, apperrors.Validation("invalid search query")
	}

	if fb := s.fallbackFor(err); fb != nil {
		s.logger.Info("primary catalog search failed, using fallback", "error", err)
		page, fbErr := fb.SearchCards(ctx, params)
		if fbErr == nil {
			return page, nil
		}
		s.logger.Warn("fallback catalog search failed", "error", fbErr)
	}

	return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, "card catalog is unavailable")
}

// CardImage returns the PNG image for a card plus its blurhash, fetching
// and caching it on first use.
func (s *CatalogService) CardImage(ctx context.Context, cardID string) ([]byte, string, error) {
	card, err := s.GetCard(ctx, cardID)
	if err != nil {
		return nil, "", err
	}

	imageURL := card.ImageLarge
	if imageURL == "" {
		imageURL = card.ImageSmall
	}
	if imageURL == "" {
		return nil, "", apperrors.NotFoundf("card %q has no image", cardID)
	}

	data, hash, err := s.fetcher.Fetch(ctx, cardID, imageURL)
	if err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.CodeUnavailable, "card image is unavailable")
	}

	return data, hash, nil
}

// resolveCard tries the cache-missed card against primary then fallback.
func (s *CatalogService) resolveCard(ctx context.Context, cardID string) (*catalog.Card, catalog.Provider, error) {
	card, err := s.primary.GetCard(ctx, cardID)
	if err == nil {
		return card, catalog.ProviderPTCG, nil
	}
	if errors.Is(err, ptcg.ErrNotFound) {
		return nil, "", apperrors.NotFoundf("card %q not found", cardID)
	}
	if errors.Is(err, ptcg.ErrInvalidID) {
		return nil, "", apperrors.Validationf("invalid card ID %q", cardID)
	}

	if fb := s.fallbackFor(err); fb != nil {
		s.logger.Info("primary catalog lookup failed, using fallback",
			"card_id", cardID,
			"error", err,
		)
		card, fbErr := fb.GetCard(ctx, cardID)
		if fbErr == nil {
			return card, catalog.ProviderTCGdex, nil
		}
		if errors.Is(fbErr, tcgdex.ErrNotFound) {
			return nil, "", apperrors.NotFoundf("card %q not found", cardID)
		}
		s.logger.Warn("fallback catalog lookup failed", "card_id", cardID, "error", fbErr)
	}

	return nil, "", apperrors.Wrap(err, apperrors.CodeUnavailable, "card catalog is unavailable")
}

// fallbackFor returns the fallback provider when the error warrants
// failover and the fallback is configured, nil otherwise.
func (s *CatalogService) fallbackFor(err error) CardProvider {
	if s.fallback == nil || !s.cfg.FallbackEnabled {
		return nil
	}
	if !ptcg.Retryable(err) {
		return nil
	}
	return s.fallback
}

// fresh reports whether a cache entry is still inside the configured TTL.
// The store applies its own hard ceiling; this lets operators shorten it.
func (s *CatalogService) fresh(fetchedAt time.Time) bool {
	if s.cfg.CacheTTL <= 0 {
		return true
	}
	return time.Since(fetchedAt) <= s.cfg.CacheTTL
}

var (
	_ CardProvider = (*ptcg.Client)(nil)
	_ CardProvider = (*tcgdex.Client)(nil)
)
