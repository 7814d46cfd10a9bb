package engine

import (
	"slices"

	"github.com/theimperious1/OCRAutoModerator/automod/keyword"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"
)

// One satisfied (rule, fragment) combination.
type MatchResult struct {
	// matched pattern, or matched author link for link-list rules
	Trigger    string
	Fragment   string
	Rule       *rules.Rule
	Submission SubmissionView
}

// Matches grouped by rule action, each ordered by ascending rule priority.
type Buckets struct {
	Remove  []MatchResult
	Spam    []MatchResult
	Approve []MatchResult
	Report  []MatchResult
	// only populated when "nothing" rules are included
	Noop []MatchResult
}

type AggregateOptions struct {
	IncludeNoop bool
}

func (b *Buckets) bucket(a rules.Action) *[]MatchResult {
	switch a {
	case rules.ActionRemove:
		return &b.Remove
	case rules.ActionSpam:
		return &b.Spam
	case rules.ActionApprove:
		return &b.Approve
	case rules.ActionReport:
		return &b.Report
	case rules.ActionNothing:
		return &b.Noop
	}
	return nil
}

// Number of matches which can affect a decision (excludes Noop).
func (b *Buckets) Total() int {
	return len(b.Remove) + len(b.Spam) + len(b.Approve) + len(b.Report)
}

// Runs every fragment against every rule and groups the results. The output depends only on the inputs.
func Aggregate(rs *rules.RuleSet, sub SubmissionView, fragments []string, opts AggregateOptions) Buckets {
	var b Buckets
	if rs == nil {
		return b
	}
	eo := EvalOptions{IncludeNoop: opts.IncludeNoop}
	for _, frag := range fragments {
		folded := keyword.Fold(frag)
		for i := range rs.Rules {
			rule := &rs.Rules[i]
			for _, trig := range Triggers(rule, sub, folded, eo) {
				dst := b.bucket(rule.Action)
				if dst == nil {
					continue
				}
				*dst = append(*dst, MatchResult{
					Trigger:    trig,
					Fragment:   frag,
					Rule:       rule,
					Submission: sub,
				})
			}
		}
	}
	for _, l := range []*[]MatchResult{&b.Remove, &b.Spam, &b.Approve, &b.Report, &b.Noop} {
		slices.SortStableFunc(*l, func(x, y MatchResult) int {
			return x.Rule.Priority - y.Rule.Priority
		})
	}
	return b
}
