package extract

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theimperious1/OCRAutoModerator/automod/cachestore"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"
)

func TestHTTPExtractor(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	var last extractRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/extract", r.URL.Path)
		assert.NoError(json.NewDecoder(r.Body).Decode(&last))
		json.NewEncoder(w).Encode(extractResponse{Fragments: []string{"A KITTEN", "caption"}})
	}))
	defer srv.Close()

	ex := HTTPExtractor{Host: srv.URL, Client: srv.Client()}
	media := MediaRef{URL: "https://i.example.com/a.png", Kind: rules.ContentImage}

	frags, err := ex.Extract(ctx, media, rules.DefaultLanguage)
	require.NoError(err)
	assert.Equal([]string{"A KITTEN", "caption"}, frags)
	assert.Equal("en", last.NeuralLang)
	assert.Equal("eng", last.TesseractLang)
	assert.Equal(media.URL, last.URL)

	// invalid backends are left out of the request
	_, err = ex.Extract(ctx, media, rules.LanguagePair{Neural: "abq", Tesseract: rules.LanguageInvalid})
	require.NoError(err)
	assert.Equal("abq", last.NeuralLang)
	assert.Empty(last.TesseractLang)

	// nothing to run
	last = extractRequest{}
	frags, err = ex.Extract(ctx, media, rules.LanguagePair{Neural: rules.LanguageInvalid, Tesseract: rules.LanguageInvalid})
	require.NoError(err)
	assert.Nil(frags)
	assert.Empty(last.URL)
}

func TestHTTPExtractorFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	ex := HTTPExtractor{Host: srv.URL, Client: srv.Client()}
	_, err := ex.Extract(context.Background(), MediaRef{URL: "x"}, rules.DefaultLanguage)
	assert.Error(t, err)
}

type countingExtractor struct {
	calls atomic.Int32
	inner Extractor
}

func (c *countingExtractor) Extract(ctx context.Context, media MediaRef, langs rules.LanguagePair) ([]string, error) {
	c.calls.Add(1)
	return c.inner.Extract(ctx, media, langs)
}

func TestCachingExtractor(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	inner := &countingExtractor{inner: &StaticExtractor{Fragments: map[string][]string{"a": {"kitten"}}}}
	ce := CachingExtractor{
		Inner:  inner,
		Cache:  cachestore.NewMemCacheStore(10, time.Hour),
		Logger: slog.Default(),
	}

	for range 3 {
		frags, err := ce.Extract(ctx, MediaRef{URL: "a"}, rules.DefaultLanguage)
		require.NoError(err)
		assert.Equal([]string{"kitten"}, frags)
	}
	assert.Equal(int32(1), inner.calls.Load())

	// a different language pair is a different cache entry
	_, err := ce.Extract(ctx, MediaRef{URL: "a"}, rules.LanguagePair{Neural: "ar", Tesseract: "ara"})
	require.NoError(err)
	assert.Equal(int32(2), inner.calls.Load())

	// empty results are cached too
	_, err = ce.Extract(ctx, MediaRef{URL: "b"}, rules.DefaultLanguage)
	require.NoError(err)
	_, err = ce.Extract(ctx, MediaRef{URL: "b"}, rules.DefaultLanguage)
	require.NoError(err)
	assert.Equal(int32(3), inner.calls.Load())
}

func TestExtractAll(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ex := &StaticExtractor{Fragments: map[string][]string{"a": {"one", "two"}}}
	pairs := []rules.LanguagePair{rules.DefaultLanguage, {Neural: "ar", Tesseract: "ara"}}

	frags, err := ExtractAll(ctx, ex, MediaRef{URL: "a"}, pairs)
	assert.NoError(err)
	assert.Equal([]string{"one", "two", "one", "two"}, frags)

	ex.Err = errors.New("sidecar down")
	_, err = ExtractAll(ctx, ex, MediaRef{URL: "a"}, pairs)
	assert.Error(err)
}
