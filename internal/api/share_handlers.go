package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/http/response"
	"github.com/binderapp/binder-server/internal/service"
)

func (s *Server) registerShareRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createShare",
		Method:      http.MethodPost,
		Path:        "/api/v1/shares",
		Summary:     "Create a share link",
		Description: "Issues a random share code granting anonymous read access to one binder",
		Tags:        []string{"Shares"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateShare)

	huma.Register(s.api, huma.Operation{
		OperationID: "listShares",
		Method:      http.MethodGet,
		Path:        "/api/v1/shares",
		Summary:     "List the caller's share links",
		Tags:        []string{"Shares"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListShares)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBinderShares",
		Method:      http.MethodGet,
		Path:        "/api/v1/binders/{id}/shares",
		Summary:     "List share links for one binder",
		Tags:        []string{"Shares"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBinderShares)

	huma.Register(s.api, huma.Operation{
		OperationID: "revokeShare",
		Method:      http.MethodDelete,
		Path:        "/api/v1/shares/{code}",
		Summary:     "Revoke a share link",
		Description: "Revoked links keep their analytics but stop resolving",
		Tags:        []string{"Shares"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRevokeShare)
}

// === DTOs ===

// CreateShareInput contains the share creation request.
type CreateShareInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		BinderID   string `json:"binder_id"`
		TTLSeconds *int64 `json:"ttl_seconds,omitempty" doc:"Lifetime in seconds; 0 means the link never expires, omitted applies the server default"`
	}
}

// SharePathInput identifies one share link by code.
type SharePathInput struct {
	Authorization string `header:"Authorization"`
	Code          string `path:"code"`
}

// ShareResponse is the API shape of a share link.
type ShareResponse struct {
	Code      string     `json:"code"`
	BinderID  string     `json:"binder_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`

	TotalViews    int64      `json:"total_views"`
	UniqueViewers int64      `json:"unique_viewers"`
	LastViewedAt  *time.Time `json:"last_viewed_at,omitempty"`
}

// ShareOutput wraps one share link for Huma.
type ShareOutput struct {
	Body ShareResponse
}

// ShareListResponse is a list of share links.
type ShareListResponse struct {
	Shares []ShareResponse `json:"shares"`
	Total  int             `json:"total"`
}

// ShareListOutput wraps a share list for Huma.
type ShareListOutput struct {
	Body ShareListResponse
}

func shareResponse(l *domain.ShareLink) ShareResponse {
	return ShareResponse{
		Code:          l.Code,
		BinderID:      l.BinderID,
		CreatedAt:     l.CreatedAt,
		ExpiresAt:     l.ExpiresAt,
		RevokedAt:     l.RevokedAt,
		TotalViews:    l.Analytics.TotalViews,
		UniqueViewers: l.Analytics.UniqueViewers,
		LastViewedAt:  l.Analytics.LastViewedAt,
	}
}

func shareListResponse(links []*domain.ShareLink) ShareListResponse {
	out := make([]ShareResponse, len(links))
	for i, l := range links {
		out[i] = shareResponse(l)
	}
	return ShareListResponse{Shares: out, Total: len(out)}
}

// === Handlers ===

func (s *Server) handleCreateShare(ctx context.Context, input *CreateShareInput) (*ShareOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var ttl *time.Duration
	if input.Body.TTLSeconds != nil {
		d := time.Duration(*input.Body.TTLSeconds) * time.Second
		ttl = &d
	}

	share, err := s.services.Share.Create(ctx, userID, service.CreateShareInput{
		BinderID: input.Body.BinderID,
		TTL:      ttl,
	})
	if err != nil {
		return nil, err
	}

	return &ShareOutput{Body: shareResponse(share)}, nil
}

func (s *Server) handleListShares(ctx context.Context, input *AuthInput) (*ShareListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	links, err := s.services.Share.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ShareListOutput{Body: shareListResponse(links)}, nil
}

func (s *Server) handleListBinderShares(ctx context.Context, input *BinderPathInput) (*ShareListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	links, err := s.services.Share.ListByBinder(ctx, userID, input.BinderID)
	if err != nil {
		return nil, err
	}

	return &ShareListOutput{Body: shareListResponse(links)}, nil
}

func (s *Server) handleRevokeShare(ctx context.Context, input *SharePathInput) (*ShareOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	share, err := s.services.Share.Revoke(ctx, userID, input.Code)
	if err != nil {
		return nil, err
	}

	return &ShareOutput{Body: shareResponse(share)}, nil
}

// SharedBinderPayload is the anonymous view behind a share code.
type SharedBinderPayload struct {
	Share  ShareResponse  `json:"share"`
	Binder BinderResponse `json:"binder"`
}

// handleResolveShare serves anonymous share views. It stays a plain chi
// handler because view dedup needs the client address from the request.
func (s *Server) handleResolveShare(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		response.BadRequest(w, "Share code is required", s.logger)
		return
	}

	viewerKey := service.ViewerKey(getClientIP(r))

	shared, err := s.services.Share.Resolve(r.Context(), code, viewerKey)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, SharedBinderPayload{
		Share:  shareResponse(shared.Share),
		Binder: binderResponse(shared.Binder),
	}, s.logger)
}
