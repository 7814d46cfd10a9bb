package engine

import (
	"strings"

	"github.com/theimperious1/OCRAutoModerator/automod/helpers"
	"github.com/theimperious1/OCRAutoModerator/automod/keyword"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"
)

type EvalOptions struct {
	// evaluate rules with action "nothing" (for auditing and dry runs)
	IncludeNoop bool
}

// Reports whether every predicate on the rule is satisfied by the submission and candidate text.
func Evaluate(rule *rules.Rule, sub SubmissionView, text string) bool {
	return len(Triggers(rule, sub, keyword.Fold(text), EvalOptions{})) > 0
}

// Returns the triggering values for a rule against one (already folded) text fragment, or nil if the rule is not satisfied.
//
// Usually this is the single rule pattern which matched. For rules with an author link list, it is each of the author's recent links found in the list.
//
// Checks are ordered cheapest first, and return on the first failing predicate. Missing attributes never satisfy a predicate.
func Triggers(rule *rules.Rule, sub SubmissionView, folded string, opts EvalOptions) []string {
	if !rule.AppliesTo(sub.Kind()) {
		return nil
	}
	if rule.Action == rules.ActionNothing && !opts.IncludeNoop {
		return nil
	}
	author := sub.Author()
	if author == nil {
		return nil
	}
	if rule.ModeratorsExempt {
		if isMod, ok := author.Flag(FlagCommunityModerator); ok && isMod {
			return nil
		}
	}

	if !boolMatches(rule.Locked, sub.Locked()) ||
		!boolMatches(rule.OriginalContent, sub.OriginalContent()) ||
		!boolMatches(rule.Self, sub.Self()) ||
		!boolMatches(rule.NSFW, sub.NSFW()) {
		return nil
	}
	ap := rule.Author
	if ap != nil {
		flags := []struct {
			want *bool
			flag AuthorFlag
		}{
			{ap.VerifiedEmail, FlagVerifiedEmail},
			{ap.Mod, FlagMod},
			{ap.Gold, FlagGold},
			{ap.Suspended, FlagSuspended},
			{ap.NSFW, FlagNSFW},
		}
		for _, f := range flags {
			if f.want == nil {
				continue
			}
			have, ok := author.Flag(f.flag)
			if !ok || have != *f.want {
				return nil
			}
		}
	}

	flair := sub.Flair()
	if !flairMatches(rule.FlairText, flair.Text) ||
		!flairMatches(rule.FlairCSSClass, flair.CSSClass) ||
		!flairMatches(rule.FlairTemplateID, flair.TemplateID) {
		return nil
	}

	if rule.NumComments != nil {
		n, ok := sub.NumComments()
		if !ok || !rule.NumComments.Match(n) {
			return nil
		}
	}
	if ap != nil && !thresholdsMatch(ap, author) {
		return nil
	}

	if ap != nil && len(ap.DescriptionContains) > 0 {
		if !searchMatches(&rules.TextSearch{Contains: ap.DescriptionContains, SatisfyAny: true}, []string{author.Description()}) {
			return nil
		}
	}
	if ap != nil && ap.ModNotes != nil {
		if !searchMatches(ap.ModNotes, author.ModNotes()) {
			return nil
		}
	}

	var links []string
	if ap != nil && ap.Links != nil {
		links = matchedLinks(ap.Links, author.RecentLinks())
		if links == nil {
			return nil
		}
	}

	idx := keyword.FirstMatch(folded, rule.FoldedPatterns())
	if idx < 0 {
		return nil
	}
	if links != nil {
		return links
	}
	return []string{rule.Patterns[idx]}
}

func boolMatches(want *bool, have bool) bool {
	return want == nil || *want == have
}

func flairMatches(want *string, have string) bool {
	if want == nil {
		return true
	}
	return have != "" && have == *want
}

// Author numeric thresholds. With SatisfyAny set, one passing threshold is enough.
func thresholdsMatch(ap *rules.AuthorPredicates, author AuthorView) bool {
	stats := []struct {
		cmp  *rules.Comparison
		stat AuthorStat
	}{
		{ap.PostKarma, StatPostKarma},
		{ap.CommentKarma, StatCommentKarma},
		{ap.Followers, StatFollowers},
		{ap.Trophies, StatTrophies},
		{ap.Submissions, StatSubmissions},
		{ap.Comments, StatComments},
	}
	var results []bool
	for _, s := range stats {
		if s.cmp == nil {
			continue
		}
		v, ok := author.Stat(s.stat)
		results = append(results, ok && s.cmp.Match(v))
	}
	if ap.AccountAge != nil {
		age, ok := author.AccountAge()
		results = append(results, ok && ap.AccountAge.MatchDuration(age))
	}
	if len(results) == 0 {
		return true
	}

	satisfyAny := ap.SatisfyAny != nil && *ap.SatisfyAny
	for _, ok := range results {
		if ok && satisfyAny {
			return true
		}
		if !ok && !satisfyAny {
			return false
		}
	}
	return !satisfyAny
}

// Case-insensitive substring search of each configured item across a list of values.
func searchMatches(ts *rules.TextSearch, values []string) bool {
	folded := keyword.FoldAll(values)
	found := 0
	for _, item := range ts.Contains {
		needle := keyword.Fold(item)
		hit := false
		for _, v := range folded {
			if strings.Contains(v, needle) {
				hit = true
				break
			}
		}
		if hit {
			found++
			if ts.SatisfyAny {
				return true
			}
		} else if !ts.SatisfyAny {
			return false
		}
	}
	return !ts.SatisfyAny && found == len(ts.Contains)
}

// Returns the author's recent links which appear in the configured list (one entry per authored submission), or nil when the predicate fails.
func matchedLinks(ts *rules.TextSearch, recent []string) []string {
	wanted := make(map[string]bool, len(ts.Contains))
	for _, l := range ts.Contains {
		if n := helpers.NormalizeURL(l); n != "" {
			wanted[n] = true
		}
	}
	var out []string
	covered := make(map[string]bool)
	for _, l := range recent {
		n := helpers.NormalizeURL(l)
		if n == "" || !wanted[n] {
			continue
		}
		out = append(out, l)
		covered[n] = true
	}
	if len(out) == 0 {
		return nil
	}
	if !ts.SatisfyAny && len(covered) < len(wanted) {
		return nil
	}
	return out
}
