package providers

import (
	"github.com/samber/do/v2"

	"github.com/binderapp/binder-server/internal/auth"
	"github.com/binderapp/binder-server/internal/config"
	"github.com/binderapp/binder-server/internal/logger"
	"github.com/binderapp/binder-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, log.Logger), nil
}

// ProvideBinderService provides the binder service.
func ProvideBinderService(i do.Injector) (*service.BinderService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBinderService(storeHandle.Store, log.Logger), nil
}

// ProvideHistoryService provides the undo history service.
func ProvideHistoryService(i do.Injector) (*service.HistoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewHistoryService(storeHandle.Store, log.Logger), nil
}

// ProvideShareService provides the share link service.
func ProvideShareService(i do.Injector) (*service.ShareService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewShareService(storeHandle.Store, cfg.Share, log.Logger), nil
}

// ProvideSocialService provides the likes/favorites/comments service.
func ProvideSocialService(i do.Injector) (*service.SocialService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSocialService(storeHandle.Store, log.Logger), nil
}

// ProvideSitemapService provides the sitemap/robots service.
func ProvideSitemapService(i do.Injector) (*service.SitemapService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSitemapService(storeHandle.Store, cfg.Server.PublicURL, log.Logger), nil
}
