package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/binderapp/binder-server/internal/errors"

	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/search"
	"github.com/binderapp/binder-server/internal/store"
)

// SearchService scopes full-text binder search to what the caller may
// see and keeps the index in sync with the store. It is wired into the
// store as its indexer, so writes reindex automatically.
type SearchService struct {
	index  *search.SearchIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// IndexBinder implements store.SearchIndexer.
func (s *SearchService) IndexBinder(_ context.Context, binder *domain.Binder) error {
	return s.index.IndexDocument(search.BinderToDocument(binder))
}

// DeleteBinder implements store.SearchIndexer.
func (s *SearchService) DeleteBinder(_ context.Context, binderID string) error {
	return s.index.DeleteDocument(binderID)
}

// SearchBinders runs a scoped search. Callers only ever see their own
// binders plus public ones; an anonymous caller sees public binders only.
func (s *SearchService) SearchBinders(ctx context.Context, callerID string, params search.SearchParams) (*search.SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = search.DefaultSearchParams().Limit
	}
	if params.Limit > 100 {
		params.Limit = 100
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	// Enforce visibility regardless of what the caller asked for.
	switch {
	case callerID == "":
		params.OwnerID = ""
		params.PublicOnly = true
	case params.OwnerID != "" && params.OwnerID != callerID:
		params.PublicOnly = true
	case params.OwnerID == "" && !params.PublicOnly:
		params.OwnerID = callerID
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "search failed")
	}

	return result, nil
}

// RebuildIndex drops the index and reindexes every live binder. Returns
// how many documents were indexed.
func (s *SearchService) RebuildIndex(ctx context.Context) (int, error) {
	binders, err := s.store.ListAllBinders(ctx)
	if err != nil {
		return 0, fmt.Errorf("list binders: %w", err)
	}

	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	docs := make([]*search.BinderDocument, 0, len(binders))
	for _, binder := range binders {
		docs = append(docs, search.BinderToDocument(binder))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return 0, fmt.Errorf("index documents: %w", err)
	}

	s.logger.Info("search index rebuilt", "documents", len(docs))

	return len(docs), nil
}

var _ store.SearchIndexer = (*SearchService)(nil)
