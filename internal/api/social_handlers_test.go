package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toggleLike(t *testing.T, server *Server, token, binderID string) ReactionResponse {
	t.Helper()

	w := doJSON(t, server, http.MethodPost, "/api/v1/binders/"+binderID+"/like", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ReactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func postComment(t *testing.T, server *Server, token, binderID, body string) (CommentResponse, int) {
	t.Helper()

	w := doJSON(t, server, http.MethodPost, "/api/v1/binders/"+binderID+"/comments", token, map[string]string{"body": body})
	if w.Code != http.StatusOK {
		return CommentResponse{}, w.Code
	}

	var resp CommentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp, w.Code
}

func TestToggleLike(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "iono@example.com")
	fan, _ := registerUser(t, server, "nemona@example.com")

	binder := createBinder(t, server, owner, "Popular", true)

	state := toggleLike(t, server, fan, binder.ID)
	assert.True(t, state.Active)
	assert.Equal(t, int64(1), state.Count)
}

func TestToggleLike_DoubleClickAbsorbed(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "geeta@example.com")
	fan, _ := registerUser(t, server, "penny@example.com")

	binder := createBinder(t, server, owner, "Clicky", true)

	first := toggleLike(t, server, fan, binder.ID)
	// Inside the cooldown the toggle is a no-op, not an unlike.
	second := toggleLike(t, server, fan, binder.ID)

	assert.True(t, first.Active)
	assert.True(t, second.Active)
	assert.Equal(t, int64(1), second.Count)
}

func TestToggleLike_PrivateBinder(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "arven@example.com")
	stranger, _ := registerUser(t, server, "clavell@example.com")

	binder := createBinder(t, server, owner, "Hidden Gems", false)

	w := doJSON(t, server, http.MethodPost, "/api/v1/binders/"+binder.ID+"/like", stranger, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleLike_Unauthenticated(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "jacq@example.com")

	binder := createBinder(t, server, owner, "Anon", true)

	w := doJSON(t, server, http.MethodPost, "/api/v1/binders/"+binder.ID+"/like", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestToggleFavorite_AndList(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "rika@example.com")
	collector, _ := registerUser(t, server, "poppy@example.com")

	binder := createBinder(t, server, owner, "Bookmarkable", true)

	w := doJSON(t, server, http.MethodPost, "/api/v1/binders/"+binder.ID+"/favorite", collector, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var state ReactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.True(t, state.Active)

	w = doJSON(t, server, http.MethodGet, "/api/v1/favorites", collector, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var list BinderListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, binder.ID, list.Binders[0].ID)
}

func TestListFavorites_SkipsPrivatized(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "larry@example.com")
	collector, _ := registerUser(t, server, "hassel@example.com")

	binder := createBinder(t, server, owner, "Fickle", true)

	w := doJSON(t, server, http.MethodPost, "/api/v1/binders/"+binder.ID+"/favorite", collector, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Owner flips the binder private; the favorite silently drops out.
	w = doJSON(t, server, http.MethodPatch, "/api/v1/binders/"+binder.ID, owner, map[string]any{"public": false})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/favorites", collector, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list BinderListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Total)
}

func TestBinderStats(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "katy@example.com")
	fan, _ := registerUser(t, server, "brassius@example.com")

	binder := createBinder(t, server, owner, "Measured", true)
	toggleLike(t, server, fan, binder.ID)
	postComment(t, server, fan, binder.ID, "Great pulls!")

	// The fan sees their own reaction state.
	w := doJSON(t, server, http.MethodGet, "/api/v1/binders/"+binder.ID+"/stats", fan, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats BinderStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Likes)
	assert.Equal(t, int64(1), stats.Comments)
	assert.True(t, stats.Liked)
	assert.False(t, stats.Favorited)

	// Anonymous callers get the counters without personal flags.
	w = doJSON(t, server, http.MethodGet, "/api/v1/binders/"+binder.ID+"/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Likes)
	assert.False(t, stats.Liked)
}

func TestAddComment(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "tulip@example.com")
	fan, _ := registerUser(t, server, "grusha@example.com")

	binder := createBinder(t, server, owner, "Discussed", true)

	comment, code := postComment(t, server, fan, binder.ID, "  Nice Charizard!  ")
	require.Equal(t, http.StatusOK, code)

	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, binder.ID, comment.BinderID)
	assert.Equal(t, "Nice Charizard!", comment.Body, "body should be trimmed")
}

func TestAddComment_Cooldown(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "ryme@example.com")
	fan, _ := registerUser(t, server, "tyme@example.com")

	binder := createBinder(t, server, owner, "Chatty", true)

	_, code := postComment(t, server, fan, binder.ID, "First!")
	require.Equal(t, http.StatusOK, code)

	_, code = postComment(t, server, fan, binder.ID, "Second!")
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestAddComment_Empty(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "saguaro@example.com")

	binder := createBinder(t, server, owner, "Quiet", true)

	_, code := postComment(t, server, owner, binder.ID, "   ")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListComments_Anonymous(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "dendra@example.com")

	binder := createBinder(t, server, owner, "Readable", true)
	postComment(t, server, owner, binder.ID, "Welcome to my binder")

	w := doJSON(t, server, http.MethodGet, "/api/v1/binders/"+binder.ID+"/comments", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var list CommentListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Welcome to my binder", list.Comments[0].Body)
}

func TestDeleteComment_Permissions(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "miriam@example.com")
	author, _ := registerUser(t, server, "salvatore@example.com")
	bystander, _ := registerUser(t, server, "raifort@example.com")

	binder := createBinder(t, server, owner, "Moderated", true)
	comment, code := postComment(t, server, author, binder.ID, "Hot take")
	require.Equal(t, http.StatusOK, code)

	// A bystander may not delete.
	w := doJSON(t, server, http.MethodDelete, "/api/v1/comments/"+comment.ID, bystander, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The binder owner may moderate.
	w = doJSON(t, server, http.MethodDelete, "/api/v1/comments/"+comment.ID, owner, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Gone means gone.
	w = doJSON(t, server, http.MethodDelete, "/api/v1/comments/"+comment.ID, owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
