package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theimperious1/OCRAutoModerator/automod/configsync"
	"github.com/theimperious1/OCRAutoModerator/automod/engine"
)

func testServer(token string) (*Server, *configsync.MemDocumentStore) {
	eng, _ := engine.EngineTestFixture()
	docs := configsync.NewMemDocumentStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Server{
		logger:     logger,
		engine:     eng,
		configs:    configsync.NewManager(docs, eng.Snapshots, logger),
		adminToken: token,
	}, docs
}

func doRequest(s *Server, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.newEcho().ServeHTTP(rec, req)
	return rec
}

func TestAdminHealth(t *testing.T) {
	assert := assert.New(t)
	s, _ := testServer("secret")

	rec := doRequest(s, http.MethodGet, "/_health", "", "")
	assert.Equal(http.StatusOK, rec.Code)
	assert.Contains(rec.Body.String(), `"status":"ok"`)
}

func TestAdminAuth(t *testing.T) {
	assert := assert.New(t)
	s, _ := testServer("secret")

	rec := doRequest(s, http.MethodGet, "/admin/communities", "", "")
	assert.Equal(http.StatusUnauthorized, rec.Code)
	rec = doRequest(s, http.MethodGet, "/admin/communities", "", "wrong")
	assert.Equal(http.StatusUnauthorized, rec.Code)

	rec = doRequest(s, http.MethodGet, "/admin/communities", "", "secret")
	assert.Equal(http.StatusOK, rec.Code)
	var out []communityStatus
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(1, len(out))
	assert.Equal("pics", out[0].Community)
	assert.Equal(3, out[0].Rules)
}

func TestAdminCheck(t *testing.T) {
	assert := assert.New(t)
	s, _ := testServer("")

	rec := doRequest(s, http.MethodPost, "/admin/check", engine.TestRuleDocument, "")
	assert.Equal(http.StatusOK, rec.Code)
	var res checkResult
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(res.Valid)
	assert.Equal(3, len(res.Rules))
	assert.Equal(1, res.Rules[0].Priority)
	assert.Equal([]string{"kitten"}, res.Rules[0].Patterns)

	bad := "---\ntype: image\nrule: [\"x\"]\naction: remove\npriority: 1\n"
	rec = doRequest(s, http.MethodPost, "/admin/check", bad, "")
	assert.Equal(http.StatusBadRequest, rec.Code)
	res = checkResult{}
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(res.Valid)
	assert.Contains(res.Error, "action_reason")
}

func TestAdminReload(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s, docs := testServer("")

	// no document yet: the default one is created
	rec := doRequest(s, http.MethodPost, "/admin/reload/Funny", "", "")
	assert.Equal(http.StatusOK, rec.Code)
	doc, err := docs.GetDocument(ctx, "funny")
	assert.NoError(err)
	assert.Equal(configsync.DefaultDocument, doc)
	assert.NotNil(s.engine.Snapshots.Get("funny"))

	assert.NoError(docs.PutDocument(ctx, "funny", "---\ntype: image\n", "edit"))
	rec = doRequest(s, http.MethodPost, "/admin/reload/funny", "", "")
	assert.Equal(http.StatusBadRequest, rec.Code)
	assert.Contains(rec.Body.String(), `"valid":false`)
}

func TestAdminHistoryNotConfigured(t *testing.T) {
	assert := assert.New(t)
	s, _ := testServer("")

	rec := doRequest(s, http.MethodGet, "/admin/history/pics", "", "")
	assert.Equal(http.StatusNotFound, rec.Code)
}
