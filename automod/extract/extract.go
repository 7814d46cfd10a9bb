// Clients for the text recognition (OCR) sidecar which turns submission media in to text fragments.
package extract

import (
	"context"

	"github.com/theimperious1/OCRAutoModerator/automod/rules"
)

type MediaRef struct {
	URL  string            `json:"url"`
	Kind rules.ContentType `json:"kind"`
}

type Extractor interface {
	// Recognizes text in the media using the language pair's backends. Backends marked invalid are skipped.
	Extract(ctx context.Context, media MediaRef, langs rules.LanguagePair) ([]string, error)
}

// Runs the extractor once per language pair, concatenating fragments in pair order.
func ExtractAll(ctx context.Context, ex Extractor, media MediaRef, pairs []rules.LanguagePair) ([]string, error) {
	var out []string
	for _, lp := range pairs {
		frags, err := ex.Extract(ctx, media, lp)
		if err != nil {
			return nil, err
		}
		out = append(out, frags...)
	}
	return out, nil
}

// Returns canned fragments per media URL. Safe for concurrent reads.
type StaticExtractor struct {
	Fragments map[string][]string
	// optional error for every call
	Err error
}

var _ Extractor = (*StaticExtractor)(nil)

func (s *StaticExtractor) Extract(ctx context.Context, media MediaRef, langs rules.LanguagePair) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Fragments[media.URL], nil
}
