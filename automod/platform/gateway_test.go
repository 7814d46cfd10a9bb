package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayClient(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	var removeBody map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/submissions/new", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("Bearer secret", r.Header.Get("Authorization"))
		assert.Equal("5", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(map[string]any{
			"submissions": []Submission{{ID: "t3_abc", Community: "pics", Kind: "image"}},
		})
	})
	mux.HandleFunc("POST /v1/submissions/{id}/remove", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("t3_abc", r.PathValue("id"))
		json.NewDecoder(r.Body).Decode(&removeBody)
		w.Write([]byte("{}"))
	})
	mux.HandleFunc("GET /v1/authors/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"NotFound","message":"account deleted"}`))
	})
	mux.HandleFunc("GET /v1/communities/{c}/moderators/{user}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"moderator": r.PathValue("user") == "bob"})
	})
	mux.HandleFunc("GET /v1/communities/{c}/wiki/{page}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": "---\nrule: []"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	gc := GatewayClient{Client: srv.Client(), Host: srv.URL, Token: "secret"}

	subs, err := gc.NewSubmissions(ctx, 5)
	require.NoError(err)
	require.Len(subs, 1)
	assert.Equal("pics", subs[0].Community)

	require.NoError(gc.Remove(ctx, "t3_abc", true, "ads"))
	assert.Equal(true, removeBody["spam"])
	assert.Equal("ads", removeBody["mod_note"])

	_, err = gc.AuthorInfo(ctx, "ghost", "pics")
	assert.True(errors.Is(err, ErrNotFound))
	var ge *GatewayError
	require.True(errors.As(err, &ge))
	assert.Equal("account deleted", ge.Message)

	isMod, err := gc.IsModerator(ctx, "pics", "bob")
	require.NoError(err)
	assert.True(isMod)

	page, err := gc.GetPage(ctx, "pics", "ocr_auto_moderator")
	require.NoError(err)
	assert.Equal("---\nrule: []", page)

	// not routed by this server
	err = gc.Approve(ctx, "t3_abc")
	assert.Error(err)
}
