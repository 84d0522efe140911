package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/binderapp/binder-server/internal/catalog"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCards",
		Method:      http.MethodGet,
		Path:        "/api/v1/cards",
		Summary:     "Search the card catalog",
		Description: "Proxies the upstream card APIs; at least one filter is required",
		Tags:        []string{"Catalog"},
	}, s.handleSearchCards)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCard",
		Method:      http.MethodGet,
		Path:        "/api/v1/cards/{id}",
		Summary:     "Get one catalog card",
		Tags:        []string{"Catalog"},
	}, s.handleGetCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSet",
		Method:      http.MethodGet,
		Path:        "/api/v1/sets/{id}",
		Summary:     "Get one expansion set",
		Tags:        []string{"Catalog"},
	}, s.handleGetSet)
}

// === DTOs ===

// SearchCardsInput contains catalog search filters.
type SearchCardsInput struct {
	Name      string `query:"name" doc:"Card name, matched loosely"`
	SetID     string `query:"set" doc:"Restrict to one set"`
	Rarity    string `query:"rarity"`
	Supertype string `query:"supertype" doc:"Pokémon, Trainer or Energy"`
	Types     string `query:"types" doc:"Comma-separated energy types"`
	Page      int    `query:"page" doc:"1-based page number"`
	PageSize  int    `query:"page_size" doc:"Results per page, provider default when omitted"`
	OrderBy   string `query:"order" doc:"Provider sort field, e.g. number"`
}

// CardPathInput identifies one catalog card.
type CardPathInput struct {
	CardID string `path:"id"`
}

// SetPathInput identifies one expansion set.
type SetPathInput struct {
	SetID string `path:"id"`
}

// CardOutput wraps one card for Huma.
type CardOutput struct {
	Body catalog.Card
}

// SetOutput wraps one set for Huma.
type SetOutput struct {
	Body catalog.Set
}

// SearchPageOutput wraps one page of search results for Huma.
type SearchPageOutput struct {
	Body catalog.SearchPage
}

// === Handlers ===

func (s *Server) handleSearchCards(ctx context.Context, input *SearchCardsInput) (*SearchPageOutput, error) {
	params := catalog.SearchParams{
		Name:      input.Name,
		SetID:     input.SetID,
		Rarity:    input.Rarity,
		Supertype: input.Supertype,
		Page:      input.Page,
		PageSize:  input.PageSize,
		OrderBy:   input.OrderBy,
	}
	if input.Types != "" {
		for _, t := range strings.Split(input.Types, ",") {
			if t = strings.TrimSpace(t); t != "" {
				params.Types = append(params.Types, t)
			}
		}
	}

	page, err := s.services.Catalog.SearchCards(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchPageOutput{Body: *page}, nil
}

func (s *Server) handleGetCard(ctx context.Context, input *CardPathInput) (*CardOutput, error) {
	card, err := s.services.Catalog.GetCard(ctx, input.CardID)
	if err != nil {
		return nil, err
	}

	return &CardOutput{Body: *card}, nil
}

func (s *Server) handleGetSet(ctx context.Context, input *SetPathInput) (*SetOutput, error) {
	set, err := s.services.Catalog.GetSet(ctx, input.SetID)
	if err != nil {
		return nil, err
	}

	return &SetOutput{Body: *set}, nil
}
