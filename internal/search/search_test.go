package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binderapp/binder-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*SearchIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func TestNewSearchIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &BinderDocument{
		ID:      "bnd-123",
		OwnerID: "usr-1",
		Name:    "Base Set Collection",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_IndexDocuments_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BinderDocument{
		{ID: "bnd-1", OwnerID: "usr-1", Name: "Binder One"},
		{ID: "bnd-2", OwnerID: "usr-1", Name: "Binder Two"},
		{ID: "bnd-3", OwnerID: "usr-2", Name: "Binder Three"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearchIndex_DeleteDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocument(&BinderDocument{ID: "bnd-123", Name: "Test Binder"})
	require.NoError(t, err)

	err = index.DeleteDocument("bnd-123")
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearch_ByName(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BinderDocument{
		{ID: "bnd-1", OwnerID: "usr-1", Name: "Base Set Collection"},
		{ID: "bnd-2", OwnerID: "usr-1", Name: "Jungle Holos"},
		{ID: "bnd-3", OwnerID: "usr-2", Name: "Fossil Commons"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultSearchParams()
	params.Query = "jungle"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "bnd-2", result.Hits[0].ID)
	assert.Equal(t, "Jungle Holos", result.Hits[0].Name)
}

func TestSearch_FuzzyMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocument(&BinderDocument{
		ID: "bnd-1", OwnerID: "usr-1", Name: "Charizard Collection",
	}))

	params := DefaultSearchParams()
	params.Query = "charizrd" // Typo

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "bnd-1", result.Hits[0].ID)
}

func TestSearch_OwnerFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BinderDocument{
		{ID: "bnd-1", OwnerID: "usr-1", Name: "Trade Binder"},
		{ID: "bnd-2", OwnerID: "usr-2", Name: "Trade Binder"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultSearchParams()
	params.Query = "trade"
	params.OwnerID = "usr-1"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "bnd-1", result.Hits[0].ID)
}

func TestSearch_PublicOnly(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BinderDocument{
		{ID: "bnd-1", OwnerID: "usr-1", Name: "Showcase", Public: true},
		{ID: "bnd-2", OwnerID: "usr-1", Name: "Showcase Draft", Public: false},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultSearchParams()
	params.Query = "showcase"
	params.PublicOnly = true

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "bnd-1", result.Hits[0].ID)
	assert.True(t, result.Hits[0].Public)
}

func TestSearch_CardNotes(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocument(&BinderDocument{
		ID: "bnd-1", OwnerID: "usr-1", Name: "Trades",
		CardNotes: "traded with Sam at regionals",
	}))

	params := DefaultSearchParams()
	params.Query = "regionals"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "bnd-1", result.Hits[0].ID)
}

func TestSearch_SortByCardCount(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BinderDocument{
		{ID: "bnd-1", OwnerID: "usr-1", Name: "Small", CardCount: 3},
		{ID: "bnd-2", OwnerID: "usr-1", Name: "Large", CardCount: 200},
		{ID: "bnd-3", OwnerID: "usr-1", Name: "Medium", CardCount: 40},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultSearchParams()
	params.SortBy = "cards"
	params.SortOrder = "desc"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 3)
	assert.Equal(t, "bnd-2", result.Hits[0].ID)
	assert.Equal(t, "bnd-1", result.Hits[2].ID)
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BinderDocument{
		{ID: "bnd-1", OwnerID: "usr-1", Name: "One"},
		{ID: "bnd-2", OwnerID: "usr-1", Name: "Two"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultSearchParams()
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestBinderToDocument(t *testing.T) {
	binder := &domain.Binder{
		Syncable: domain.Syncable{
			ID:        "bnd-1",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		OwnerID:     "usr-1",
		Name:        "Base Set",
		Description: "First binder",
		Slug:        "base-set",
		Public:      true,
		Settings:    domain.DefaultSettings(),
		Cards: map[int]domain.CardRef{
			0: {CardID: "base1-4", Notes: "first pull"},
			4: {CardID: "base1-58"},
		},
	}

	doc := BinderToDocument(binder)

	assert.Equal(t, "bnd-1", doc.ID)
	assert.Equal(t, "usr-1", doc.OwnerID)
	assert.Equal(t, 2, doc.CardCount)
	assert.True(t, doc.Public)
	assert.Contains(t, doc.CardNotes, "first pull")
	assert.NotZero(t, doc.CreatedAt)
}
