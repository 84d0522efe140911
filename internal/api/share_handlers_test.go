package api

import (
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binderapp/binder-server/internal/http/response"
)

// createShare issues a share link through the API.
func createShare(t *testing.T, server *Server, token, binderID string, ttlSeconds *int64) ShareResponse {
	t.Helper()

	body := map[string]any{"binder_id": binderID}
	if ttlSeconds != nil {
		body["ttl_seconds"] = *ttlSeconds
	}
	w := doJSON(t, server, http.MethodPost, "/api/v1/shares", token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ShareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Code)
	return resp
}

// resolveShare hits the anonymous share route, optionally from a fixed
// client address.
func resolveShare(t *testing.T, server *Server, code, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shared/"+code, http.NoBody)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestCreateShare(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "daisy@example.com")

	binder := createBinder(t, server, token, "Shareable", false)
	share := createShare(t, server, token, binder.ID, nil)

	assert.Len(t, share.Code, 12)
	assert.Equal(t, binder.ID, share.BinderID)
	assert.Nil(t, share.ExpiresAt, "no TTL configured, link should be permanent")
	assert.Zero(t, share.TotalViews)
}

func TestCreateShare_WithTTL(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "tracey@example.com")

	binder := createBinder(t, server, token, "Ephemeral", false)
	ttl := int64(3600)
	share := createShare(t, server, token, binder.ID, &ttl)

	require.NotNil(t, share.ExpiresAt)
	assert.True(t, share.ExpiresAt.After(share.CreatedAt))
}

func TestCreateShare_NotOwner(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "delia@example.com")
	other, _ := registerUser(t, server, "samuel@example.com")

	binder := createBinder(t, server, owner, "Not Yours", true)

	w := doJSON(t, server, http.MethodPost, "/api/v1/shares", other, map[string]any{"binder_id": binder.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResolveShare_PrivateBinder(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "ritchie@example.com")

	// Share links grant anonymous access even to private binders.
	binder := createBinder(t, server, token, "Private Showcase", false)
	addCard(t, server, token, binder.ID, 0, "base1-4")
	share := createShare(t, server, token, binder.ID, nil)

	w := resolveShare(t, server, share.Code, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env struct {
		Success bool                `json:"success"`
		Data    SharedBinderPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, binder.ID, env.Data.Binder.ID)
	assert.Equal(t, share.Code, env.Data.Share.Code)
	assert.Equal(t, 1, int(env.Data.Share.TotalViews))
}

func TestResolveShare_UnknownCode(t *testing.T) {
	server := setupTestServer(t)

	w := resolveShare(t, server, "nosuchcode12", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var result response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
}

func TestResolveShare_ViewerDedup(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "casey@example.com")

	binder := createBinder(t, server, token, "Counted", true)
	share := createShare(t, server, token, binder.ID, nil)

	// Same viewer twice inside the cooldown: views climb, uniques don't.
	resolveShare(t, server, share.Code, "10.0.0.1:1111")
	resolveShare(t, server, share.Code, "10.0.0.1:2222")
	w := resolveShare(t, server, share.Code, "10.0.0.2:3333")
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data SharedBinderPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, int64(3), env.Data.Share.TotalViews)
	assert.Equal(t, int64(2), env.Data.Share.UniqueViewers)
	assert.NotNil(t, env.Data.Share.LastViewedAt)
}

func TestRevokeShare(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "liko@example.com")

	binder := createBinder(t, server, token, "Revocable", true)
	share := createShare(t, server, token, binder.ID, nil)

	w := doJSON(t, server, http.MethodDelete, "/api/v1/shares/"+share.Code, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ShareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.RevokedAt)

	// Revoked links read as gone.
	rw := resolveShare(t, server, share.Code, "")
	assert.Equal(t, http.StatusNotFound, rw.Code)
}

func TestRevokeShare_NotOwner(t *testing.T) {
	server := setupTestServer(t)
	owner, _ := registerUser(t, server, "roy@example.com")
	other, _ := registerUser(t, server, "dot@example.com")

	binder := createBinder(t, server, owner, "Owned", true)
	share := createShare(t, server, owner, binder.ID, nil)

	w := doJSON(t, server, http.MethodDelete, "/api/v1/shares/"+share.Code, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Link still resolves.
	rw := resolveShare(t, server, share.Code, "")
	assert.Equal(t, http.StatusOK, rw.Code)
}

func TestListShares(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "friede@example.com")

	binderA := createBinder(t, server, token, "First", false)
	binderB := createBinder(t, server, token, "Second", false)
	createShare(t, server, token, binderA.ID, nil)
	createShare(t, server, token, binderA.ID, nil)
	createShare(t, server, token, binderB.ID, nil)

	w := doJSON(t, server, http.MethodGet, "/api/v1/shares", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ShareListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)

	// Per-binder listing narrows to one binder's links.
	w = doJSON(t, server, http.MethodGet, "/api/v1/binders/"+binderA.ID+"/shares", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
}

func TestResolveShare_ArchivedBinder(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "ludlow@example.com")

	binder := createBinder(t, server, token, "Doomed", true)
	share := createShare(t, server, token, binder.ID, nil)

	w := doJSON(t, server, http.MethodDelete, "/api/v1/binders/"+binder.ID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	rw := resolveShare(t, server, share.Code, "")
	assert.Equal(t, http.StatusNotFound, rw.Code)
}
