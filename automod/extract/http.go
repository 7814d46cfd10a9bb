package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/carlmjohnson/versioninfo"

	"github.com/theimperious1/OCRAutoModerator/automod/rules"
	"github.com/theimperious1/OCRAutoModerator/util"
)

// Client for the OCR sidecar's JSON API.
type HTTPExtractor struct {
	Host      string
	Client    *http.Client
	UserAgent string
}

var _ Extractor = (*HTTPExtractor)(nil)

func NewHTTPExtractor(host string, logger *slog.Logger) *HTTPExtractor {
	client := util.RobustHTTPClient(logger)
	// video and gif frames are read one by one
	client.Timeout = 120 * time.Second
	return &HTTPExtractor{
		Host:      host,
		Client:    client,
		UserAgent: "ocrmod/" + versioninfo.Short(),
	}
}

type extractRequest struct {
	URL  string            `json:"url"`
	Kind rules.ContentType `json:"kind"`
	// empty when that backend should not run
	NeuralLang    string `json:"neural_lang,omitempty"`
	TesseractLang string `json:"tesseract_lang,omitempty"`
}

type extractResponse struct {
	Fragments []string `json:"fragments"`
}

func backendLang(code string) string {
	if code == rules.LanguageInvalid {
		return ""
	}
	return code
}

func (e *HTTPExtractor) Extract(ctx context.Context, media MediaRef, langs rules.LanguagePair) ([]string, error) {
	if !langs.Usable() {
		return nil, nil
	}
	body, err := json.Marshal(extractRequest{
		URL:           media.URL,
		Kind:          media.Kind,
		NeuralLang:    backendLang(langs.Neural),
		TesseractLang: backendLang(langs.Tesseract),
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Host+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.UserAgent != "" {
		req.Header.Set("User-Agent", e.UserAgent)
	}

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	start := time.Now()
	resp, err := client.Do(req)
	extractDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		extractCount.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("text extraction request: %w", err)
	}
	defer resp.Body.Close()
	extractCount.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("text extraction failed: status=%d url=%s", resp.StatusCode, media.URL)
	}
	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding text extraction response: %w", err)
	}
	return out.Fragments, nil
}
