package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/theimperious1/OCRAutoModerator/automod/countstore"
	"github.com/theimperious1/OCRAutoModerator/automod/helpers"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"
	"github.com/theimperious1/OCRAutoModerator/automod/snapshot"
)

var tracer = otel.Tracer("automod/engine")

var ErrUnknownCommunity = errors.New("no rules loaded for community")

// runtime for evaluating submissions against the current rule snapshots, and recording the outcome.
//
// Snapshots and Logger must be set. Counters and Notifier are optional.
type Engine struct {
	Logger    *slog.Logger
	Snapshots *snapshot.Table
	Counters  countstore.CountStore
	// used to publish decisions (optional)
	Notifier Notifier
	Config   EngineConfig
}

type EngineConfig struct {
	// prefix for relative permalinks when rendering templates
	BaseURL string
	// removal comment used when the winning rule has none
	DefaultComment string
	// gather "nothing" rules in to the audit bucket
	IncludeNoop bool
	// max remove/spam decisions per community per day; zero disables the check
	QuotaRemovalsPerDay int
}

func (eng *Engine) renderOptions() RenderOptions {
	return RenderOptions{
		BaseURL:        eng.Config.BaseURL,
		DefaultComment: eng.Config.DefaultComment,
	}
}

// Evaluates fragments against a rule set without touching any state. Used by dry-run tooling as well as the engine itself.
func Decide(rs *rules.RuleSet, sub SubmissionView, fragments []string, aopts AggregateOptions, ropts RenderOptions) (*Decision, *Buckets) {
	b := Aggregate(rs, sub, helpers.DedupeFragments(fragments), aopts)
	d := Resolve(&b)
	d.Render(sub, ropts)
	return &d, &b
}

// Evaluates a submission against the snapshot for its community, then records and publishes the decision.
//
// The caller is responsible for applying the decision on the platform.
func (eng *Engine) ProcessSubmission(ctx context.Context, sub SubmissionView, fragments []string) (dec *Decision, err error) {
	// similar to an HTTP server, we want to recover any panics from rule evaluation
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("automod submission execution exception", "err", r, "submission", sub.ID(), "community", sub.Community())
			submissionErrorCount.WithLabelValues(string(sub.Kind())).Inc()
			dec = nil
			err = fmt.Errorf("rule evaluation panic: %v", r)
		}
	}()

	ctx, span := tracer.Start(ctx, "ProcessSubmission", trace.WithAttributes(
		attribute.String("community", sub.Community()),
		attribute.String("submission", sub.ID()),
	))
	defer span.End()

	start := time.Now()
	kind := string(sub.Kind())
	defer func() {
		submissionProcessDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()
	submissionProcessCount.WithLabelValues(kind).Inc()

	snap := eng.Snapshots.Get(sub.Community())
	if snap == nil {
		submissionErrorCount.WithLabelValues(kind).Inc()
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommunity, sub.Community())
	}
	logger := eng.Logger.With("community", snap.Community, "submission", sub.ID(), "revision", snap.Revision)

	dec, b := Decide(snap.Rules, sub, fragments, AggregateOptions{IncludeNoop: eng.Config.IncludeNoop}, eng.renderOptions())

	if dec.Action == DecisionRemove || dec.Action == DecisionSpam {
		over, err := eng.removalQuotaReached(ctx, snap.Community)
		if err != nil {
			logger.Warn("failed to check removal quota", "err", err)
		} else if over {
			logger.Warn("daily removal quota reached, downgrading to report", "action", dec.Action, "quota", eng.Config.QuotaRemovalsPerDay)
			quotaDowngradeCount.Inc()
			eng.downgrade(dec)
		}
	}
	if dec.Action != DecisionNone {
		dec.EventID = uuid.NewString()
	}
	decisionCount.WithLabelValues(string(dec.Action)).Inc()
	span.SetAttributes(attribute.String("action", string(dec.Action)))

	if err := eng.persistCounters(ctx, snap.Community, sub, dec, b); err != nil {
		logger.Error("failed to persist counters", "err", err)
	}

	canonicalLogLine(logger, dec, b, len(fragments), time.Since(start))

	if eng.Notifier != nil && dec.Action != DecisionNone {
		if err := eng.Notifier.SendDecision(ctx, sub, dec); err != nil {
			logger.Error("failed to send decision notification", "err", err)
		}
	}
	return dec, nil
}

// Turns a removal in to a report, keeping the removal reason visible to moderators. The removal rule's directives are dropped along with the comment.
func (eng *Engine) downgrade(d *Decision) {
	reason := fmt.Sprintf("Removal quota reached (%s): %s", d.Action, d.ActionReason)
	if n := []rune(reason); len(n) > rules.MaxReasonLength {
		reason = string(n[:rules.MaxReasonLength])
	}
	d.Action = DecisionReport
	d.Comment = ""
	d.ReportReason = reason
	d.Directives = rules.Directives{}
}

func (eng *Engine) removalQuotaReached(ctx context.Context, community string) (bool, error) {
	if eng.Config.QuotaRemovalsPerDay <= 0 || eng.Counters == nil {
		return false, nil
	}
	total := 0
	for _, act := range []DecisionAction{DecisionRemove, DecisionSpam} {
		n, err := eng.Counters.GetCount(ctx, countstore.CounterDecision, community+"/"+string(act), countstore.PeriodDay)
		if err != nil {
			return false, err
		}
		total += n
	}
	return total >= eng.Config.QuotaRemovalsPerDay, nil
}

func (eng *Engine) persistCounters(ctx context.Context, community string, sub SubmissionView, d *Decision, b *Buckets) error {
	if eng.Counters == nil {
		return nil
	}
	for _, l := range [][]MatchResult{b.Remove, b.Spam, b.Approve, b.Report} {
		for _, m := range l {
			val := community + "/" + strconv.Itoa(m.Rule.Priority)
			if err := eng.Counters.Increment(ctx, countstore.CounterRuleMatch, val); err != nil {
				return err
			}
		}
	}
	if d.Action == DecisionNone {
		return nil
	}
	if err := eng.Counters.Increment(ctx, countstore.CounterDecision, community+"/"+string(d.Action)); err != nil {
		return err
	}
	if a := sub.Author(); a != nil {
		if err := eng.Counters.IncrementDistinct(ctx, countstore.CounterAuthor, community+"/"+string(d.Action), a.Name()); err != nil {
			return err
		}
	}
	return nil
}

func canonicalLogLine(logger *slog.Logger, d *Decision, b *Buckets, fragments int, dur time.Duration) {
	priority := 0
	trigger := ""
	if d.Winner != nil {
		priority = d.Winner.Rule.Priority
		trigger = d.Winner.Trigger
	}
	logger.Info("canonical-submission-line",
		"event", d.EventID,
		"action", d.Action,
		"priority", priority,
		"reason", d.ActionReason,
		"trigger", trigger,
		"fragments", fragments,
		"remove", len(b.Remove),
		"spam", len(b.Spam),
		"approve", len(b.Approve),
		"report", len(b.Report),
		"noop", len(b.Noop),
		"duration", dur,
	)
}
