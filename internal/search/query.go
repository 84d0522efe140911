package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // User's search query

	// Filters. An empty OwnerID with PublicOnly false searches everything;
	// handlers are expected to set one of the two for non-admin callers.
	OwnerID    string // Restrict to one user's binders
	PublicOnly bool   // Restrict to public binders

	MinCards int // Minimum card count
	MaxCards int // Maximum card count (0 = unbounded)

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name", "recent", "cards"
	SortOrder string // "asc", "desc"

	Highlight bool // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     20,
		Offset:    0,
		SortBy:    "relevance",
		SortOrder: "desc",
		Highlight: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID          string            `json:"id"`
	Score       float64           `json:"score"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Slug        string            `json:"slug,omitempty"`
	OwnerID     string            `json:"owner_id,omitempty"`
	Public      bool              `json:"public"`
	CardCount   int               `json:"card_count"`
	Highlights  map[string]string `json:"highlights,omitempty"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
	}

	// Request stored fields
	searchRequest.Fields = []string{
		"id", "name", "description", "slug", "owner_id", "public", "card_count",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		// Extract stored fields
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if d, ok := hit.Fields["description"].(string); ok {
			searchHit.Description = d
		}
		if sl, ok := hit.Fields["slug"].(string); ok {
			searchHit.Slug = sl
		}
		if o, ok := hit.Fields["owner_id"].(string); ok {
			searchHit.OwnerID = o
		}
		if p, ok := hit.Fields["public"].(bool); ok {
			searchHit.Public = p
		}
		if c, ok := hit.Fields["card_count"].(float64); ok {
			searchHit.CardCount = int(c)
		}

		// Extract highlights
		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	// Main text query across name, description and card notes, with name
	// weighted highest.
	if params.Query != "" {
		textQueries := []query.Query{}

		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")
		descMatch.SetBoost(1.5)
		textQueries = append(textQueries, descMatch)

		notesMatch := bleve.NewMatchQuery(params.Query)
		notesMatch.SetField("card_notes")
		textQueries = append(textQueries, notesMatch)

		// Fuzzy matching for typo tolerance on name
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		// Combine with OR (match any field)
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Ownership filter
	if params.OwnerID != "" {
		ownerQuery := bleve.NewTermQuery(params.OwnerID)
		ownerQuery.SetField("owner_id")
		queries = append(queries, ownerQuery)
	}

	// Visibility filter
	if params.PublicOnly {
		public := true
		publicQuery := bleve.NewBoolFieldQuery(public)
		publicQuery.SetField("public")
		queries = append(queries, publicQuery)
	}

	// Card count range filter
	if params.MinCards > 0 || params.MaxCards > 0 {
		minCards := float64(params.MinCards)
		maxCards := float64(params.MaxCards)
		var minPtr, maxPtr *float64
		if params.MinCards > 0 {
			minPtr = &minCards
		}
		if params.MaxCards > 0 {
			maxPtr = &maxCards
		}
		rangeQuery := bleve.NewNumericRangeQuery(minPtr, maxPtr)
		rangeQuery.SetField("card_count")
		queries = append(queries, rangeQuery)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"updated_at"})
		} else {
			req.SortBy([]string{"-updated_at"})
		}
	case "cards":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"card_count"})
		} else {
			req.SortBy([]string{"-card_count"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}
