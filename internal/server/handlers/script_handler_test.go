package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenolabs/sereno/internal/server/auth"
)

func authedRequest(method, path, body string, userID int64) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := auth.ContextWithIdentity(req.Context(), auth.Identity{Authenticated: true, UserID: userID})
	return req.WithContext(ctx)
}

func createScriptForUser(t *testing.T, handler *ScriptHandler, userID int64, body string) scriptResponse {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(http.MethodPost, "/scripts", body, userID))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp scriptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestScriptHandler_List_Anonymous(t *testing.T) {
	handler := NewScriptHandler(newFakeScriptRepo(), 1<<20)

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/scripts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []scriptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, len(defaultScripts))
	assert.Equal(t, "Ask for time", resp[0].Title)

	// Defaults are synthetic, never persisted rows.
	for _, s := range resp {
		assert.Nil(t, s.CreatedAt)
	}
}

func TestScriptHandler_CreateAndList(t *testing.T) {
	handler := NewScriptHandler(newFakeScriptRepo(), 1<<20)

	created := createScriptForUser(t, handler, 1, `{"title":"Break","message":"I need a break.","category":"General"}`)
	assert.Equal(t, "Break", created.Title)
	assert.Equal(t, "I need a break.", created.Message)
	require.NotNil(t, created.Category)
	assert.Equal(t, "General", *created.Category)
	assert.NotNil(t, created.CreatedAt)

	rec := httptest.NewRecorder()
	handler.List(rec, authedRequest(http.MethodGet, "/scripts", "", 1))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []scriptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestScriptHandler_List_DoesNotLeakAcrossUsers(t *testing.T) {
	handler := NewScriptHandler(newFakeScriptRepo(), 1<<20)

	createScriptForUser(t, handler, 1, `{"title":"Mine","message":"Owned by user 1."}`)

	rec := httptest.NewRecorder()
	handler.List(rec, authedRequest(http.MethodGet, "/scripts", "", 2))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []scriptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed)
}

func TestScriptHandler_Create_MissingFields(t *testing.T) {
	handler := NewScriptHandler(newFakeScriptRepo(), 1<<20)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing message", body: `{"title":"Break"}`},
		{name: "missing title", body: `{"message":"I need a break."}`},
		{name: "empty body", body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.Create(rec, authedRequest(http.MethodPost, "/scripts", tt.body, 1))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func deleteScript(handler *ScriptHandler, userID int64, id string) *httptest.ResponseRecorder {
	req := authedRequest(http.MethodDelete, "/scripts/"+id, "", userID)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	handler.Delete(rec, req)
	return rec
}

func TestScriptHandler_Delete(t *testing.T) {
	repo := newFakeScriptRepo()
	handler := NewScriptHandler(repo, 1<<20)

	createScriptForUser(t, handler, 1, `{"title":"Break","message":"I need a break."}`)

	rec := deleteScript(handler, 1, "1")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	listRec := httptest.NewRecorder()
	handler.List(listRec, authedRequest(http.MethodGet, "/scripts", "", 1))

	var listed []scriptResponse
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &listed))
	assert.Empty(t, listed)
}

func TestScriptHandler_Delete_NotOwnedLooksLikeMissing(t *testing.T) {
	handler := NewScriptHandler(newFakeScriptRepo(), 1<<20)

	createScriptForUser(t, handler, 1, `{"title":"Mine","message":"Owned by user 1."}`)

	// Someone else's script and a script that was never created must fail
	// with the same response so IDs cannot be probed.
	notOwned := deleteScript(handler, 2, "1")
	missing := deleteScript(handler, 2, "999")

	assert.Equal(t, http.StatusNotFound, notOwned.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.JSONEq(t, notOwned.Body.String(), missing.Body.String())
}

func TestScriptHandler_Delete_InvalidID(t *testing.T) {
	handler := NewScriptHandler(newFakeScriptRepo(), 1<<20)

	rec := deleteScript(handler, 1, "not-a-number")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
