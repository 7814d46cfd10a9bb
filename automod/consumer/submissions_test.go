package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/theimperious1/OCRAutoModerator/automod/cachestore"
	"github.com/theimperious1/OCRAutoModerator/automod/engine"
	"github.com/theimperious1/OCRAutoModerator/automod/extract"
	"github.com/theimperious1/OCRAutoModerator/automod/platform"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"
	"github.com/theimperious1/OCRAutoModerator/automod/seenstore"
)

func testConsumer() (*SubmissionConsumer, *platform.MockClient, *extract.StaticExtractor, *engine.CaptureNotifier) {
	eng, notif := engine.EngineTestFixture()
	mock := platform.NewMockClient()
	mock.Authors["alice"] = platform.AuthorInfo{Name: "alice", PostKarma: 120, CommentKarma: 40}
	ex := &extract.StaticExtractor{Fragments: map[string][]string{}}
	sc := &SubmissionConsumer{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Platform:  mock,
		Engine:    eng,
		Extractor: ex,
		Seen:      seenstore.NewMemSeenStore(),
		Workers:   2,
	}
	return sc, mock, ex, notif
}

func imageSubmission(id, mediaURL string) platform.Submission {
	return platform.Submission{
		ID:        id,
		Community: "pics",
		Kind:      rules.ContentImage,
		Author:    "alice",
		Title:     "look at this",
		Permalink: "/r/pics/comments/" + id + "/look_at_this/",
		URL:       mediaURL,
	}
}

func TestHandleSubmissionRemove(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sc, mock, ex, notif := testConsumer()

	ex.Fragments["https://i.example.com/one.png"] = []string{"a very cute KITTEN"}
	sub := imageSubmission("one", "https://i.example.com/one.png")

	dec, err := sc.HandleSubmission(ctx, &sub)
	assert.NoError(err)
	assert.NotNil(dec)
	assert.Equal(engine.DecisionRemove, dec.Action)
	assert.Equal("no cats", dec.ActionReason)

	removes := mock.ActionsOf("remove")
	assert.Equal(1, len(removes))
	assert.Equal("one", removes[0].Target)
	comments := mock.ActionsOf("comment")
	assert.Equal(1, len(comments))
	assert.Contains(comments[0].Value, "alice")
	assert.Equal(1, len(notif.Decisions))
}

func TestHandleSubmissionMultipleMedia(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sc, mock, ex, _ := testConsumer()

	ex.Fragments["https://i.example.com/a.png"] = []string{"nothing here"}
	ex.Fragments["https://i.example.com/b.png"] = []string{"discount code inside"}
	sub := imageSubmission("gallery", "https://example.com/gallery/xyz")
	sub.MediaURLs = []string{"https://i.example.com/a.png", "https://i.example.com/b.png"}

	dec, err := sc.HandleSubmission(ctx, &sub)
	assert.NoError(err)
	assert.Equal(engine.DecisionReport, dec.Action)
	reports := mock.ActionsOf("report")
	assert.Equal(1, len(reports))
	assert.Contains(reports[0].Value, "advertising")
}

func TestHandleSubmissionTextPost(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sc, mock, ex, _ := testConsumer()
	ex.Err = errors.New("extractor should not be called")

	sub := platform.Submission{
		ID:        "txt",
		Community: "pics",
		Kind:      engine.MediaText,
		Author:    "alice",
		Title:     "hello",
		Body:      "BUY NOW while stocks last",
		Self:      true,
	}
	dec, err := sc.HandleSubmission(ctx, &sub)
	assert.NoError(err)
	assert.Equal(engine.DecisionReport, dec.Action)
	assert.Equal(1, len(mock.ActionsOf("report")))
}

func TestHandleSubmissionSkips(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sc, mock, ex, notif := testConsumer()
	ex.Fragments["https://i.example.com/k.png"] = []string{"kitten"}

	removed := imageSubmission("gone", "https://i.example.com/k.png")
	removed.Removed = true
	dec, err := sc.HandleSubmission(ctx, &removed)
	assert.NoError(err)
	assert.Nil(dec)

	other := imageSubmission("elsewhere", "https://i.example.com/k.png")
	other.Community = "aww"
	dec, err = sc.HandleSubmission(ctx, &other)
	assert.NoError(err)
	assert.Nil(dec)

	assert.Equal(0, len(mock.Actions))
	assert.Equal(0, len(notif.Decisions))
}

func TestHandleSubmissionReadOnly(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sc, mock, ex, notif := testConsumer()
	sc.ReadOnly = true
	ex.Fragments["https://i.example.com/k.png"] = []string{"kitten"}

	sub := imageSubmission("ro", "https://i.example.com/k.png")
	dec, err := sc.HandleSubmission(ctx, &sub)
	assert.NoError(err)
	assert.Equal(engine.DecisionRemove, dec.Action)
	assert.Equal(0, len(mock.Actions))
	assert.Equal(1, len(notif.Decisions))
}

func TestHandleSubmissionDeletedAuthor(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sc, mock, ex, notif := testConsumer()
	ex.Fragments["https://i.example.com/k.png"] = []string{"kitten"}

	// an author unknown to the platform is treated like a deleted account, which no rule matches
	sub := imageSubmission("anon", "https://i.example.com/k.png")
	sub.Author = "nobody"
	dec, err := sc.HandleSubmission(ctx, &sub)
	assert.NoError(err)
	assert.Equal(engine.DecisionNone, dec.Action)
	assert.Equal(0, len(mock.Actions))
	assert.Equal(0, len(notif.Decisions))
}

func TestHandleSubmissionExtractError(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sc, mock, ex, _ := testConsumer()
	ex.Err = errors.New("ocr sidecar down")

	sub := imageSubmission("err", "https://i.example.com/k.png")
	_, err := sc.HandleSubmission(ctx, &sub)
	assert.Error(err)
	assert.Equal(0, len(mock.Actions))
}

func TestAuthorCache(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sc, mock, _, _ := testConsumer()
	sc.Cache = cachestore.NewMemCacheStore(100, 0)

	sub := imageSubmission("c1", "https://i.example.com/c.png")
	info, err := sc.fetchAuthor(ctx, &sub)
	assert.NoError(err)
	assert.Equal(int64(120), info.PostKarma)

	// later changes on the platform are masked by the cache
	mock.Authors["alice"] = platform.AuthorInfo{Name: "alice", PostKarma: 5}
	info, err = sc.fetchAuthor(ctx, &sub)
	assert.NoError(err)
	assert.Equal(int64(120), info.PostKarma)
}

func TestPollOnce(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sc, mock, ex, notif := testConsumer()
	ex.Fragments["https://i.example.com/1.png"] = []string{"kitten"}
	ex.Fragments["https://i.example.com/2.png"] = []string{"landscape"}
	mock.Queue = []platform.Submission{
		imageSubmission("p1", "https://i.example.com/1.png"),
		imageSubmission("p2", "https://i.example.com/2.png"),
	}

	n, err := sc.PollOnce(ctx)
	assert.NoError(err)
	assert.Equal(2, n)
	assert.Equal(1, len(mock.ActionsOf("remove")))
	assert.Equal(1, len(notif.Decisions))

	// second poll sees the same queue, but nothing is new
	n, err = sc.PollOnce(ctx)
	assert.NoError(err)
	assert.Equal(0, n)
	assert.Equal(1, len(mock.ActionsOf("remove")))
}

// fails every lookup after the first
type flakySeenStore struct {
	seenstore.SeenStore
	mu    sync.Mutex
	calls int
}

func (s *flakySeenStore) Seen(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()
	if n > 1 {
		return false, errors.New("seen store unavailable")
	}
	return s.SeenStore.Seen(ctx, id)
}

type slowExtractor struct {
	extract.Extractor
	delay time.Duration
}

func (s *slowExtractor) Extract(ctx context.Context, media extract.MediaRef, langs rules.LanguagePair) ([]string, error) {
	time.Sleep(s.delay)
	return s.Extractor.Extract(ctx, media, langs)
}

func TestPollOnceSeenStoreError(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sc, mock, ex, notif := testConsumer()
	sc.Seen = &flakySeenStore{SeenStore: seenstore.NewMemSeenStore()}
	sc.Extractor = &slowExtractor{Extractor: ex, delay: 50 * time.Millisecond}
	ex.Fragments["https://i.example.com/1.png"] = []string{"kitten"}
	mock.Queue = []platform.Submission{
		imageSubmission("p1", "https://i.example.com/1.png"),
		imageSubmission("p2", "https://i.example.com/2.png"),
	}

	n, err := sc.PollOnce(ctx)
	assert.Error(err)
	assert.Equal(1, n)
	// the submission already handed to a worker is finished before returning
	assert.Equal(1, len(mock.ActionsOf("remove")))
	assert.Equal(1, len(notif.Decisions))
}
