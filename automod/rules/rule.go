package rules

import (
	"github.com/theimperious1/OCRAutoModerator/automod/keyword"
)

type ContentType string

const (
	ContentImage ContentType = "image"
	ContentVideo ContentType = "video"
	ContentGIF   ContentType = "gif"
	ContentAny   ContentType = "any"
)

type Action string

const (
	ActionRemove  Action = "remove"
	ActionReport  Action = "report"
	ActionSpam    Action = "spam"
	ActionApprove Action = "approve"
	ActionNothing Action = "nothing"
)

var SuggestedSorts = []string{"best", "top", "new", "controversial", "old", "qa"}

// A single validated moderation rule. Values are only constructed by Validate, and are not modified afterwards.
//
// Pointer fields are optional predicates or directives; nil means "not checked" or "not applied".
type Rule struct {
	ContentType  ContentType
	Patterns     []string
	Action       Action
	ActionReason string
	Priority     int

	// language code as written in the document, if any
	Language    string
	Recognizers LanguagePair

	Locked           *bool
	OriginalContent  *bool
	Self             *bool
	NSFW             *bool
	FlairText        *string
	FlairCSSClass    *string
	FlairTemplateID  *string
	NumComments      *Comparison
	ModeratorsExempt bool
	// default for Author.SatisfyAny when the author block doesn't say
	SatisfyAnyThreshold *bool
	Author              *AuthorPredicates

	Directives Directives

	// case-folded Patterns, computed at validation
	folded []string
}

// Predicates about the submission's author.
type AuthorPredicates struct {
	PostKarma    *Comparison
	CommentKarma *Comparison
	AccountAge   *Comparison
	Followers    *Comparison
	Trophies     *Comparison
	Submissions  *Comparison
	Comments     *Comparison

	VerifiedEmail *bool
	Mod           *bool
	Gold          *bool
	Suspended     *bool
	NSFW          *bool

	DescriptionContains []string
	ModNotes            *TextSearch
	Links               *TextSearch

	// when true, any single passing numeric threshold satisfies all of them
	SatisfyAny *bool
}

// Substring search over a list of values. With SatisfyAny unset, every item must be found.
type TextSearch struct {
	Contains   []string
	SatisfyAny bool
}

// Post-action side effects from the winning rule, applied by the platform client.
type Directives struct {
	Comment            *string
	CommentStickied    bool
	CommentLocked      bool
	SetFlair           *string
	OverwriteFlair     bool
	SetLocked          *bool
	SetSticky          *bool
	SetNSFW            *bool
	SetSpoiler         *bool
	SetContestMode     *bool
	SetOriginalContent *bool
	SetSuggestedSort   *string
	IgnoreReports      *bool
	ReportReason       *string
}

// Reports whether the rule applies to media of the given class.
func (r *Rule) AppliesTo(kind ContentType) bool {
	return r.ContentType == ContentAny || r.ContentType == kind
}

// Patterns in case-folded form, for matching against folded text.
func (r *Rule) FoldedPatterns() []string {
	if r.folded == nil {
		return keyword.FoldAll(r.Patterns)
	}
	return r.folded
}
