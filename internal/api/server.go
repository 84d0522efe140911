// Package api provides the HTTP API server and handlers for the binder server.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/binderapp/binder-server/internal/http/response"
	"github.com/binderapp/binder-server/internal/sse"
	"github.com/binderapp/binder-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       *store.Store
	services    *Services
	sseHandler  *sse.Handler
	router      *chi.Mux
	api         huma.API
	authLimiter *RateLimiter
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, services *Services, sseHandler *sse.Handler, logger *slog.Logger) *Server {
	s := &Server{
		store:       st,
		services:    services,
		sseHandler:  sseHandler,
		router:      chi.NewRouter(),
		authLimiter: NewRateLimiter(10, time.Minute, 5),
		logger:      logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Binder Server API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack. Must run before any
// routes are registered on the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(authMiddleware(s.services.Auth))
}

// setupRoutes registers all routes. JSON endpoints go through huma; the
// few that serve raw bytes or streams stay plain chi handlers.
func (s *Server) setupRoutes() {
	s.registerAuthRoutes()
	s.registerBinderRoutes()
	s.registerHistoryRoutes()
	s.registerShareRoutes()
	s.registerSocialRoutes()
	s.registerCatalogRoutes()
	s.registerSearchRoutes()
	s.registerVaultRoutes()

	s.router.Get("/health", s.handleHealthCheck)
	s.router.Get("/sitemap.xml", s.handleSitemap)
	s.router.Get("/robots.txt", s.handleRobots)

	// Share resolution is anonymous, so it gets an IP-keyed limiter to
	// keep code scanning expensive.
	shareLimiter := NewRateLimiter(60, time.Minute, 20)
	s.router.With(RateLimitMiddleware(shareLimiter, s.logger)).
		Get("/api/v1/shared/{code}", s.handleResolveShare)
	s.router.Get("/api/v1/cards/{id}/image", s.handleCardImage)
	s.router.Get("/api/v1/events/stream", s.sseHandler.ServeHTTP)
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("Health check store probe failed", "error", err)
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"}, s.logger)
		return
	}

	response.Success(w, map[string]string{"status": "healthy"}, s.logger)
}

// handleSitemap serves the public binder sitemap for crawlers.
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	out, err := s.services.Sitemap.Sitemap(r.Context())
	if err != nil {
		s.logger.Error("Failed to build sitemap", "error", err)
		response.InternalError(w, "Failed to build sitemap", s.logger)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(out)
}

// handleRobots serves robots.txt.
func (s *Server) handleRobots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(s.services.Sitemap.Robots())
}

// handleCardImage serves the cached card image bytes. The catalog service
// downloads and caches the image on first request. The blurhash placeholder
// rides along in a header so grid clients can paint it before the body
// finishes loading.
func (s *Server) handleCardImage(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "id")
	if cardID == "" {
		response.BadRequest(w, "Card ID is required", s.logger)
		return
	}

	data, blurhash, err := s.services.Catalog.CardImage(r.Context(), cardID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if blurhash != "" {
		w.Header().Set("X-Blurhash", blurhash)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}
