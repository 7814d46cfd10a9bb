package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theimperious1/OCRAutoModerator/automod/cachestore"
	"github.com/theimperious1/OCRAutoModerator/automod/engine"
	"github.com/theimperious1/OCRAutoModerator/automod/extract"
	"github.com/theimperious1/OCRAutoModerator/automod/platform"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"
	"github.com/theimperious1/OCRAutoModerator/automod/seenstore"
)

const authorCacheName = "author"

// Platform capabilities needed to scan and act on submissions.
type SubmissionPlatform interface {
	platform.Submissions
	platform.Authors
	platform.Moderation
}

// Polls for new submissions, extracts their text, runs them through the engine, and applies the decisions.
type SubmissionConsumer struct {
	Logger    *slog.Logger
	Platform  SubmissionPlatform
	Engine    *engine.Engine
	Extractor extract.Extractor
	Seen      seenstore.SeenStore
	// author info cache (optional)
	Cache cachestore.CacheStore

	PollInterval time.Duration
	BatchSize    int
	Workers      int
	// evaluate and record decisions, but never act on the platform
	ReadOnly bool
}

func (sc *SubmissionConsumer) Run(ctx context.Context) error {
	if sc.Engine == nil {
		return fmt.Errorf("nil engine")
	}
	if sc.Platform == nil || sc.Extractor == nil || sc.Seen == nil {
		return fmt.Errorf("submission consumer missing platform, extractor, or seen store")
	}
	period := sc.PollInterval
	if period <= 0 {
		period = 10 * time.Second
	}
	sc.Logger.Info("polling for new submissions", "period", period.String(), "workers", sc.Workers, "readOnly", sc.ReadOnly)

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		n, err := sc.PollOnce(ctx)
		if err != nil {
			sc.Logger.Warn("submission poll failed; will retry", "err", err, "period", period.String())
		} else if n > 0 {
			sc.Logger.Debug("processed submission batch", "count", n)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Fetches and processes one batch, returning the number of submissions which were new.
func (sc *SubmissionConsumer) PollOnce(ctx context.Context) (int, error) {
	limit := sc.BatchSize
	if limit <= 0 {
		limit = 100
	}
	subs, err := sc.Platform.NewSubmissions(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("fetching new submissions: %w", err)
	}

	workers := sc.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	count := 0
	for i := range subs {
		sub := subs[i]
		seen, err := sc.Seen.Seen(ctx, sub.ID)
		if err != nil {
			_ = g.Wait()
			return count, fmt.Errorf("checking seen store: %w", err)
		}
		if seen {
			continue
		}
		// marked before scanning, so a submission which crashes the scan is not retried forever
		if err := sc.Seen.MarkSeen(ctx, sub.ID); err != nil {
			_ = g.Wait()
			return count, fmt.Errorf("updating seen store: %w", err)
		}
		count++
		g.Go(func() error {
			if _, err := sc.HandleSubmission(gctx, &sub); err != nil {
				sc.Logger.Error("failed to process submission", "submission", sub.ID, "community", sub.Community, "err", err)
			}
			return nil
		})
	}
	return count, g.Wait()
}

// Processes one submission end to end. Returns a nil decision when the submission was skipped.
func (sc *SubmissionConsumer) HandleSubmission(ctx context.Context, sub *platform.Submission) (*engine.Decision, error) {
	logger := sc.Logger.With("submission", sub.ID, "community", sub.Community)
	if sub.Removed {
		skippedCount.WithLabelValues("removed").Inc()
		return nil, nil
	}
	snap := sc.Engine.Snapshots.Get(sub.Community)
	if snap == nil {
		skippedCount.WithLabelValues("no_rules").Inc()
		logger.Debug("no rules loaded for community")
		return nil, nil
	}
	if !snap.Rules.Covers(sub.Kind) {
		skippedCount.WithLabelValues("kind").Inc()
		return nil, nil
	}

	author, err := sc.fetchAuthor(ctx, sub)
	if err != nil {
		return nil, err
	}
	view := sub.View(author, time.Now())

	start := time.Now()
	fragments, err := sc.fragments(ctx, sub, snap.Rules.LanguagePairs())
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	logger.Debug("extracted text", "fragments", len(fragments), "duration", time.Since(start))

	dec, err := sc.Engine.ProcessSubmission(ctx, view, fragments)
	if err != nil {
		return nil, err
	}
	if dec.Action == engine.DecisionNone || sc.ReadOnly {
		return dec, nil
	}
	if err := platform.Apply(ctx, sc.Platform, sub, dec); err != nil {
		applyErrorCount.WithLabelValues(string(dec.Action)).Inc()
		return dec, fmt.Errorf("applying %s decision: %w", dec.Action, err)
	}
	appliedCount.WithLabelValues(string(dec.Action)).Inc()
	return dec, nil
}

func (sc *SubmissionConsumer) fragments(ctx context.Context, sub *platform.Submission, pairs []rules.LanguagePair) ([]string, error) {
	if sub.Kind == engine.MediaText {
		return []string{sub.Body}, nil
	}
	media := sub.MediaURLs
	if len(media) == 0 {
		media = []string{sub.URL}
	}
	var out []string
	for _, u := range media {
		frags, err := extract.ExtractAll(ctx, sc.Extractor, extract.MediaRef{URL: u, Kind: sub.Kind}, pairs)
		if err != nil {
			return nil, err
		}
		out = append(out, frags...)
	}
	return out, nil
}

// Author info for the submission's community, or nil for deleted accounts.
func (sc *SubmissionConsumer) fetchAuthor(ctx context.Context, sub *platform.Submission) (*platform.AuthorInfo, error) {
	if sub.Author == "" {
		return nil, nil
	}
	key := sub.Community + "/" + sub.Author
	if sc.Cache != nil {
		cached, err := cachestore.GetJSON[platform.AuthorInfo](ctx, sc.Cache, authorCacheName, key)
		if err != nil {
			sc.Logger.Warn("author cache read failed", "author", sub.Author, "err", err)
		} else if cached != nil {
			return cached, nil
		}
	}
	info, err := sc.Platform.AuthorInfo(ctx, sub.Author, sub.Community)
	if errors.Is(err, platform.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching author %s: %w", sub.Author, err)
	}
	authorFetchCount.Inc()
	if sc.Cache != nil {
		if err := cachestore.SetJSON(ctx, sc.Cache, authorCacheName, key, info); err != nil {
			sc.Logger.Warn("author cache write failed", "author", sub.Author, "err", err)
		}
	}
	return info, nil
}
