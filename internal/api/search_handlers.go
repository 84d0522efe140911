package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/binderapp/binder-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBinders",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/binders",
		Summary:     "Full-text binder search",
		Description: "Anonymous callers search public binders; authenticated callers default to their own",
		Tags:        []string{"Search"},
	}, s.handleSearchBinders)

	huma.Register(s.api, huma.Operation{
		OperationID: "rebuildSearchIndex",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/rebuild",
		Summary:     "Rebuild the search index from the store",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRebuildSearchIndex)
}

// === DTOs ===

// SearchBindersInput contains binder search parameters.
type SearchBindersInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search query"`
	OwnerID       string `query:"owner" doc:"Restrict to one owner's binders"`
	PublicOnly    bool   `query:"public" doc:"Restrict to public binders"`
	MinCards      int    `query:"min_cards"`
	MaxCards      int    `query:"max_cards"`
	Limit         int    `query:"limit" doc:"Max results (default 20, max 100)"`
	Offset        int    `query:"offset"`
	SortBy        string `query:"sort" enum:"relevance,name,recent,cards" default:"relevance"`
	SortOrder     string `query:"order" enum:"asc,desc" default:"desc"`
}

// SearchHitResponse is one search result.
type SearchHitResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Slug        string            `json:"slug,omitempty"`
	OwnerID     string            `json:"owner_id,omitempty"`
	Public      bool              `json:"public"`
	CardCount   int               `json:"card_count"`
	Score       float64           `json:"score"`
	Highlights  map[string]string `json:"highlights,omitempty" doc:"Highlighted match fragments by field"`
}

// SearchBindersResponse is one page of binder search results.
type SearchBindersResponse struct {
	Hits   []SearchHitResponse `json:"hits"`
	Total  uint64              `json:"total"`
	TookMs int64               `json:"took_ms" doc:"Query duration in milliseconds"`
}

// SearchBindersOutput wraps search results for Huma.
type SearchBindersOutput struct {
	Body SearchBindersResponse
}

// RebuildIndexResponse reports how many binders were reindexed.
type RebuildIndexResponse struct {
	Indexed int `json:"indexed"`
}

// RebuildIndexOutput wraps the rebuild result for Huma.
type RebuildIndexOutput struct {
	Body RebuildIndexResponse
}

// === Handlers ===

func (s *Server) handleSearchBinders(ctx context.Context, input *SearchBindersInput) (*SearchBindersOutput, error) {
	callerID, err := s.optionalAuthenticate(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Search.SearchBinders(ctx, callerID, search.SearchParams{
		Query:      input.Query,
		OwnerID:    input.OwnerID,
		PublicOnly: input.PublicOnly,
		MinCards:   input.MinCards,
		MaxCards:   input.MaxCards,
		Limit:      input.Limit,
		Offset:     input.Offset,
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResponse, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = SearchHitResponse{
			ID:          h.ID,
			Name:        h.Name,
			Description: h.Description,
			Slug:        h.Slug,
			OwnerID:     h.OwnerID,
			Public:      h.Public,
			CardCount:   h.CardCount,
			Score:       h.Score,
			Highlights:  h.Highlights,
		}
	}

	return &SearchBindersOutput{Body: SearchBindersResponse{
		Hits:   hits,
		Total:  result.Total,
		TookMs: result.TookMs,
	}}, nil
}

func (s *Server) handleRebuildSearchIndex(ctx context.Context, input *AuthInput) (*RebuildIndexOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	count, err := s.services.Search.RebuildIndex(ctx)
	if err != nil {
		return nil, err
	}

	return &RebuildIndexOutput{Body: RebuildIndexResponse{Indexed: count}}, nil
}
