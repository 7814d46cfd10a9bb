package extract

import (
	"context"
	"log/slog"

	"github.com/theimperious1/OCRAutoModerator/automod/cachestore"
	"github.com/theimperious1/OCRAutoModerator/automod/helpers"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"
)

// Remembers extraction results per (media URL, language pair), so reposts and retries skip the OCR sidecar.
type CachingExtractor struct {
	Inner  Extractor
	Cache  cachestore.CacheStore
	Logger *slog.Logger
}

var _ Extractor = (*CachingExtractor)(nil)

const cacheName = "extract"

func cacheKey(media MediaRef, langs rules.LanguagePair) string {
	return helpers.HashOfString(media.URL + "|" + langs.String())
}

func (c *CachingExtractor) Extract(ctx context.Context, media MediaRef, langs rules.LanguagePair) ([]string, error) {
	key := cacheKey(media, langs)
	cached, err := cachestore.GetJSON[[]string](ctx, c.Cache, cacheName, key)
	if err != nil {
		c.Logger.Warn("extract cache read failed", "url", media.URL, "err", err)
	} else if cached != nil {
		extractCacheHits.Inc()
		return *cached, nil
	}

	frags, err := c.Inner.Extract(ctx, media, langs)
	if err != nil {
		return nil, err
	}
	if frags == nil {
		frags = []string{}
	}
	if err := cachestore.SetJSON(ctx, c.Cache, cacheName, key, frags); err != nil {
		c.Logger.Warn("extract cache write failed", "url", media.URL, "err", err)
	}
	return frags, nil
}
