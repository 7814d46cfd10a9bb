package rules

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/theimperious1/OCRAutoModerator/automod/keyword"
	"github.com/theimperious1/OCRAutoModerator/automod/ruledoc"
)

const (
	MinPriority       = 1
	MaxPriority       = 2000
	MaxPatterns       = 2000
	MaxPatternLength  = 1000
	MaxReasonLength   = 99
	MaxCommentLength  = 9999
	FlairTemplateSize = 36
)

// record keys, as written in rule documents
const (
	keyType         = "type"
	keyRule         = "rule"
	keyAction       = "action"
	keyActionReason = "action_reason"
	keyPriority     = "priority"
	keyLanguage     = "language"
	keyLang         = "lang"
	keyAuthor       = "author"
	keyHasComments  = "has_comments"
	keySatisfyAny   = "satisfy_any_threshold"
	keyContains     = "contains"
)

var requiredKeys = []string{keyType, keyRule, keyAction, keyActionReason, keyPriority}

// Parses and validates a rule document in one step.
func Load(doc string) (*RuleSet, error) {
	recs, err := ruledoc.Parse(doc)
	if err != nil {
		return nil, err
	}
	return Validate(recs)
}

// Type-checks and normalizes every record, then checks document-wide invariants.
//
// Either every record validates and a priority-sorted rule set is returned, or the first error is returned.
func Validate(recs []ruledoc.Record) (*RuleSet, error) {
	out := make([]Rule, 0, len(recs))
	for i, rec := range recs {
		r, err := validateRecord(rec)
		if err != nil {
			return nil, &RuleError{Index: i + 1, Err: err}
		}
		out = append(out, *r)
	}

	counts := make(map[int]int, len(out))
	for _, r := range out {
		counts[r.Priority]++
	}
	var dupes []int
	for p, c := range counts {
		if c > 1 {
			dupes = append(dupes, p)
		}
	}
	if len(dupes) > 0 {
		slices.Sort(dupes)
		return nil, &DuplicatePriorityError{Priorities: dupes}
	}

	slices.SortStableFunc(out, func(a, b Rule) int {
		return a.Priority - b.Priority
	})
	return &RuleSet{Rules: out}, nil
}

// reads typed values out of a record; prefix qualifies field names in errors (eg, "author.")
type fields struct {
	rec    map[string]any
	prefix string
}

func (f fields) name(key string) string {
	return f.prefix + key
}

func (f fields) has(key string) bool {
	_, ok := f.rec[key]
	return ok
}

func (f fields) str(key string) (*string, error) {
	v, ok := f.rec[key]
	if !ok {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, &TypeError{Field: f.name(key), Expected: "text"}
	}
	return &s, nil
}

func (f fields) boolean(key string) (*bool, error) {
	v, ok := f.rec[key]
	if !ok {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, &TypeError{Field: f.name(key), Expected: "a boolean (true or false)"}
	}
	return &b, nil
}

// accepts a single text value or a list of text values
func (f fields) textList(key string) ([]string, error) {
	v, ok := f.rec[key]
	if !ok {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		return []string{val}, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Field: f.name(key), Expected: "text or a list of text"}
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, &TypeError{Field: f.name(key), Expected: "text or a list of text"}
}

func (f fields) mapping(key string) (map[string]any, error) {
	v, ok := f.rec[key]
	if !ok {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &TypeError{Field: f.name(key), Expected: "a group of settings"}
	}
	return m, nil
}

func (f fields) comparison(key string) (*Comparison, error) {
	raw, err := f.str(key)
	if err != nil || raw == nil {
		return nil, err
	}
	c, err := ParseComparison(f.name(key), *raw)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (f fields) timeComparison(key string) (*Comparison, error) {
	raw, err := f.str(key)
	if err != nil || raw == nil {
		return nil, err
	}
	c, err := ParseTimeComparison(f.name(key), *raw)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func maxLength(field string, s *string, limit int) error {
	if s != nil && utf8.RuneCountInString(*s) > limit {
		return &ValueRangeError{Field: field, Reason: fmt.Sprintf("cannot contain more than %d characters", limit)}
	}
	return nil
}

func exactLength(field string, s *string, size int) error {
	if s != nil && utf8.RuneCountInString(*s) != size {
		return &ValueRangeError{Field: field, Reason: fmt.Sprintf("must be exactly %d characters (a flair template ID)", size)}
	}
	return nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func validateRecord(rec ruledoc.Record) (*Rule, error) {
	f := fields{rec: rec}
	r := &Rule{}

	// required fields: presence, then types
	for _, k := range requiredKeys {
		if !f.has(k) {
			return nil, &MissingFieldError{Field: k}
		}
	}
	ct, err := f.str(keyType)
	if err != nil {
		return nil, err
	}
	patterns, ok := rec[keyRule].([]any)
	if !ok {
		return nil, &TypeError{Field: keyRule, Expected: "a list of text, e.g. [\"example1\", \"example2\"]"}
	}
	for _, p := range patterns {
		s, ok := p.(string)
		if !ok {
			return nil, &TypeError{Field: keyRule, Expected: "a list of text, e.g. [\"example1\", \"example2\"]"}
		}
		r.Patterns = append(r.Patterns, s)
	}
	action, err := f.str(keyAction)
	if err != nil {
		return nil, err
	}
	reason, err := f.str(keyActionReason)
	if err != nil {
		return nil, err
	}
	prio, ok := asInt(rec[keyPriority])
	if !ok {
		return nil, &TypeError{Field: keyPriority, Expected: "a whole number, e.g. 1"}
	}
	r.ContentType = ContentType(strings.ToLower(*ct))
	r.Action = Action(strings.ToLower(*action))
	r.ActionReason = *reason
	r.Priority = prio

	if err := readOptional(f, r); err != nil {
		return nil, err
	}
	if err := checkRanges(r); err != nil {
		return nil, err
	}
	r.folded = keyword.FoldAll(r.Patterns)

	// conditionals
	if r.NumComments, err = f.comparison(keyHasComments); err != nil {
		return nil, err
	}

	if am, err := f.mapping(keyAuthor); err != nil {
		return nil, err
	} else if am != nil {
		if r.Author, err = validateAuthor(fields{rec: am, prefix: keyAuthor + "."}); err != nil {
			return nil, err
		}
	}
	if r.Author != nil && r.Author.SatisfyAny == nil && r.SatisfyAnyThreshold != nil {
		v := *r.SatisfyAnyThreshold
		r.Author.SatisfyAny = &v
	}

	lang, err := f.str(keyLanguage)
	if err != nil {
		return nil, err
	}
	if lang == nil {
		if lang, err = f.str(keyLang); err != nil {
			return nil, err
		}
	}
	if lang != nil {
		r.Language = strings.TrimSpace(*lang)
	}
	if r.Recognizers, err = ResolveLanguage(r.Language); err != nil {
		return nil, err
	}
	return r, nil
}

// type and shape checks for optional predicates and directives
func readOptional(f fields, r *Rule) error {
	var err error
	bools := []struct {
		key string
		dst **bool
	}{
		{"is_locked", &r.Locked},
		{"is_original_content", &r.OriginalContent},
		{"is_self", &r.Self},
		{"is_nsfw", &r.NSFW},
		{keySatisfyAny, &r.SatisfyAnyThreshold},
		{"set_locked", &r.Directives.SetLocked},
		{"set_sticky", &r.Directives.SetSticky},
		{"set_nsfw", &r.Directives.SetNSFW},
		{"set_spoiler", &r.Directives.SetSpoiler},
		{"set_contest_mode", &r.Directives.SetContestMode},
		{"set_original_content", &r.Directives.SetOriginalContent},
		{"ignore_reports", &r.Directives.IgnoreReports},
	}
	strs := []struct {
		key string
		dst **string
	}{
		{"flair_text", &r.FlairText},
		{"flair_css_class", &r.FlairCSSClass},
		{"flair_template_id", &r.FlairTemplateID},
		{"comment", &r.Directives.Comment},
		{"set_flair", &r.Directives.SetFlair},
		{"set_suggested_sort", &r.Directives.SetSuggestedSort},
		{"report_reason", &r.Directives.ReportReason},
	}
	for _, s := range strs {
		if *s.dst, err = f.str(s.key); err != nil {
			return err
		}
	}
	for _, b := range bools {
		if *b.dst, err = f.boolean(b.key); err != nil {
			return err
		}
	}
	flags := []struct {
		key string
		dst *bool
	}{
		{"moderators_exempt", &r.ModeratorsExempt},
		{"comment_stickied", &r.Directives.CommentStickied},
		{"comment_locked", &r.Directives.CommentLocked},
		{"overwrite_flair", &r.Directives.OverwriteFlair},
	}
	for _, fl := range flags {
		v, err := f.boolean(fl.key)
		if err != nil {
			return err
		}
		*fl.dst = v != nil && *v
	}
	// comparison text is parsed later, but must be text
	if _, err := f.str(keyHasComments); err != nil {
		return err
	}
	return nil
}

func checkRanges(r *Rule) error {
	switch r.ContentType {
	case ContentImage, ContentVideo, ContentGIF, ContentAny:
	default:
		return &ValueRangeError{Field: keyType, Reason: "must be one of image, video, gif, any"}
	}
	switch r.Action {
	case ActionRemove, ActionReport, ActionSpam, ActionApprove, ActionNothing:
	default:
		return &ValueRangeError{Field: keyAction, Reason: "must be one of remove, report, spam, approve, nothing"}
	}
	if r.Priority < MinPriority || r.Priority > MaxPriority {
		return &ValueRangeError{Field: keyPriority, Reason: fmt.Sprintf("must be between %d and %d", MinPriority, MaxPriority)}
	}
	if err := maxLength(keyActionReason, &r.ActionReason, MaxReasonLength); err != nil {
		return err
	}
	if len(r.Patterns) == 0 {
		return &ValueRangeError{Field: keyRule, Reason: "must contain at least one item"}
	}
	if len(r.Patterns) > MaxPatterns {
		return &ValueRangeError{Field: keyRule, Reason: fmt.Sprintf("cannot contain more than %d items", MaxPatterns)}
	}
	for _, p := range r.Patterns {
		if utf8.RuneCountInString(p) > MaxPatternLength {
			return &ValueRangeError{Field: keyRule, Reason: fmt.Sprintf("items cannot be longer than %d characters", MaxPatternLength)}
		}
	}
	d := &r.Directives
	checks := []error{
		maxLength("report_reason", d.ReportReason, MaxReasonLength),
		maxLength("flair_text", r.FlairText, MaxReasonLength),
		maxLength("flair_css_class", r.FlairCSSClass, MaxReasonLength),
		exactLength("flair_template_id", r.FlairTemplateID, FlairTemplateSize),
		exactLength("set_flair", d.SetFlair, FlairTemplateSize),
		maxLength("comment", d.Comment, MaxCommentLength),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if d.SetSuggestedSort != nil {
		sort := strings.ToLower(*d.SetSuggestedSort)
		if !slices.Contains(SuggestedSorts, sort) {
			return &ValueRangeError{Field: "set_suggested_sort", Reason: "must be one of " + strings.Join(SuggestedSorts, ", ")}
		}
		d.SetSuggestedSort = &sort
	}
	return nil
}

func validateAuthor(f fields) (*AuthorPredicates, error) {
	a := &AuthorPredicates{}
	var err error

	bools := []struct {
		key string
		dst **bool
	}{
		{keySatisfyAny, &a.SatisfyAny},
		{"has_verified_email", &a.VerifiedEmail},
		{"is_mod", &a.Mod},
		{"is_gold", &a.Gold},
		{"is_suspended", &a.Suspended},
		{"is_nsfw", &a.NSFW},
	}
	for _, b := range bools {
		if *b.dst, err = f.boolean(b.key); err != nil {
			return nil, err
		}
	}

	comps := []struct {
		key string
		dst **Comparison
	}{
		{"post_karma", &a.PostKarma},
		{"comment_karma", &a.CommentKarma},
		{"has_followers", &a.Followers},
		{"has_trophies", &a.Trophies},
		{"has_submissions", &a.Submissions},
		{"has_comments", &a.Comments},
	}
	for _, c := range comps {
		if *c.dst, err = f.comparison(c.key); err != nil {
			return nil, err
		}
	}
	if a.AccountAge, err = f.timeComparison("account_age"); err != nil {
		return nil, err
	}

	if a.DescriptionContains, err = f.textList("description_contains"); err != nil {
		return nil, err
	}

	if nm, err := f.mapping("mod_notes"); err != nil {
		return nil, err
	} else if nm != nil {
		if a.ModNotes, err = validateSearch(fields{rec: nm, prefix: f.name("mod_notes") + "."}, true); err != nil {
			return nil, err
		}
	}

	if f.has("links") {
		switch f.rec["links"].(type) {
		case map[string]any:
			lm, _ := f.mapping("links")
			if a.Links, err = validateSearch(fields{rec: lm, prefix: f.name("links") + "."}, true); err != nil {
				return nil, err
			}
		default:
			l, err := f.textList("links")
			if err != nil {
				return nil, err
			}
			if len(l) == 0 {
				return nil, &ValueRangeError{Field: f.name("links"), Reason: "must contain at least one item"}
			}
			a.Links = &TextSearch{Contains: l, SatisfyAny: true}
		}
	}
	return a, nil
}

// a group with a required "contains" text-or-list and an optional satisfy_any_threshold
func validateSearch(f fields, defaultAny bool) (*TextSearch, error) {
	if !f.has(keyContains) {
		return nil, &MissingFieldError{Field: f.name(keyContains)}
	}
	contains, err := f.textList(keyContains)
	if err != nil {
		return nil, err
	}
	if len(contains) == 0 {
		return nil, &ValueRangeError{Field: f.name(keyContains), Reason: "must contain at least one item"}
	}
	anyv, err := f.boolean(keySatisfyAny)
	if err != nil {
		return nil, err
	}
	ts := &TextSearch{Contains: contains, SatisfyAny: defaultAny}
	if anyv != nil {
		ts.SatisfyAny = *anyv
	}
	return ts, nil
}
