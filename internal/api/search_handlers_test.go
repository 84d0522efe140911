package api

import (
	"encoding/json/v2"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchBinders(t *testing.T, server *Server, token, query string) SearchBindersResponse {
	t.Helper()

	w := doJSON(t, server, http.MethodGet, "/api/v1/search/binders?q="+url.QueryEscape(query), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SearchBindersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSearchBinders_Anonymous(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "wulfric@example.com")

	createBinder(t, server, token, "Legendary Birds", true)
	createBinder(t, server, token, "Legendary Secrets", false)

	// Anonymous search only surfaces the public binder.
	resp := searchBinders(t, server, "", "legendary")
	require.Equal(t, uint64(1), resp.Total)
	assert.Equal(t, "Legendary Birds", resp.Hits[0].Name)
	assert.True(t, resp.Hits[0].Public)
}

func TestSearchBinders_OwnerSeesPrivate(t *testing.T) {
	server := setupTestServer(t)
	token, userID := registerUser(t, server, "drayton@example.com")

	createBinder(t, server, token, "Dragon Vault", false)

	resp := searchBinders(t, server, token, "dragon")
	require.Equal(t, uint64(1), resp.Total)
	assert.Equal(t, userID, resp.Hits[0].OwnerID)
	assert.False(t, resp.Hits[0].Public)
}

func TestSearchBinders_StrangerCannotSeePrivate(t *testing.T) {
	server := setupTestServer(t)
	owner, ownerID := registerUser(t, server, "kieran@example.com")
	stranger, _ := registerUser(t, server, "carmine@example.com")

	createBinder(t, server, owner, "Secret Stash", false)

	// Asking for someone else's binders forces the public-only view.
	w := doJSON(t, server, http.MethodGet, "/api/v1/search/binders?q=secret&owner="+ownerID, stranger, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SearchBindersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(0), resp.Total)
}

func TestSearchBinders_UpdatesFollowMutations(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "lacey@example.com")

	binder := createBinder(t, server, token, "Water Deck", true)

	resp := searchBinders(t, server, "", "water")
	require.Equal(t, uint64(1), resp.Total)

	// Renaming reindexes under the new name.
	w := doJSON(t, server, http.MethodPatch, "/api/v1/binders/"+binder.ID, token, map[string]any{"name": "Fire Deck"})
	require.Equal(t, http.StatusOK, w.Code)

	resp = searchBinders(t, server, "", "water")
	assert.Equal(t, uint64(0), resp.Total)

	resp = searchBinders(t, server, "", "fire")
	assert.Equal(t, uint64(1), resp.Total)
}

func TestSearchBinders_ArchivedDropOut(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "crispin@example.com")

	binder := createBinder(t, server, token, "Ghost Types", true)

	resp := searchBinders(t, server, "", "ghost")
	require.Equal(t, uint64(1), resp.Total)

	w := doJSON(t, server, http.MethodDelete, "/api/v1/binders/"+binder.ID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	resp = searchBinders(t, server, "", "ghost")
	assert.Equal(t, uint64(0), resp.Total)
}

func TestRebuildSearchIndex(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "amarys@example.com")

	createBinder(t, server, token, "Steel Collection", true)
	createBinder(t, server, token, "Fairy Collection", false)

	w := doJSON(t, server, http.MethodPost, "/api/v1/search/rebuild", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RebuildIndexResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Indexed)

	// Everything is findable again after the rebuild.
	result := searchBinders(t, server, token, "collection")
	assert.Equal(t, uint64(2), result.Total)
}

func TestRebuildSearchIndex_Unauthenticated(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/search/rebuild", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
