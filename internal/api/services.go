package api

import (
	"github.com/binderapp/binder-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth    *service.AuthService
	Binder  *service.BinderService
	History *service.HistoryService
	Share   *service.ShareService
	Social  *service.SocialService
	Catalog *service.CatalogService
	Search  *service.SearchService
	Sitemap *service.SitemapService
	Vault   *service.VaultService // nil when the offline vault is disabled
}
