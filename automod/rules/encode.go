package rules

import (
	"strings"

	"gopkg.in/yaml.v3"
)

type encodedSearch struct {
	Contains   []string `yaml:"contains"`
	SatisfyAny bool     `yaml:"satisfy_any_threshold"`
}

type encodedAuthor struct {
	SatisfyAny          *bool          `yaml:"satisfy_any_threshold,omitempty"`
	PostKarma           string         `yaml:"post_karma,omitempty"`
	CommentKarma        string         `yaml:"comment_karma,omitempty"`
	AccountAge          string         `yaml:"account_age,omitempty"`
	Followers           string         `yaml:"has_followers,omitempty"`
	Trophies            string         `yaml:"has_trophies,omitempty"`
	Submissions         string         `yaml:"has_submissions,omitempty"`
	Comments            string         `yaml:"has_comments,omitempty"`
	VerifiedEmail       *bool          `yaml:"has_verified_email,omitempty"`
	Mod                 *bool          `yaml:"is_mod,omitempty"`
	Gold                *bool          `yaml:"is_gold,omitempty"`
	Suspended           *bool          `yaml:"is_suspended,omitempty"`
	NSFW                *bool          `yaml:"is_nsfw,omitempty"`
	DescriptionContains []string       `yaml:"description_contains,omitempty"`
	ModNotes            *encodedSearch `yaml:"mod_notes,omitempty"`
	Links               *encodedSearch `yaml:"links,omitempty"`
}

type encodedRule struct {
	Type                string         `yaml:"type"`
	Rule                []string       `yaml:"rule"`
	Action              string         `yaml:"action"`
	ActionReason        string         `yaml:"action_reason"`
	Priority            int            `yaml:"priority"`
	Language            string         `yaml:"language,omitempty"`
	IsLocked            *bool          `yaml:"is_locked,omitempty"`
	IsOriginalContent   *bool          `yaml:"is_original_content,omitempty"`
	IsSelf              *bool          `yaml:"is_self,omitempty"`
	IsNSFW              *bool          `yaml:"is_nsfw,omitempty"`
	FlairText           *string        `yaml:"flair_text,omitempty"`
	FlairCSSClass       *string        `yaml:"flair_css_class,omitempty"`
	FlairTemplateID     *string        `yaml:"flair_template_id,omitempty"`
	HasComments         string         `yaml:"has_comments,omitempty"`
	ModeratorsExempt    bool           `yaml:"moderators_exempt,omitempty"`
	SatisfyAnyThreshold *bool          `yaml:"satisfy_any_threshold,omitempty"`
	Author              *encodedAuthor `yaml:"author,omitempty"`
	Comment             *string        `yaml:"comment,omitempty"`
	CommentStickied     bool           `yaml:"comment_stickied,omitempty"`
	CommentLocked       bool           `yaml:"comment_locked,omitempty"`
	SetFlair            *string        `yaml:"set_flair,omitempty"`
	OverwriteFlair      bool           `yaml:"overwrite_flair,omitempty"`
	SetLocked           *bool          `yaml:"set_locked,omitempty"`
	SetSticky           *bool          `yaml:"set_sticky,omitempty"`
	SetNSFW             *bool          `yaml:"set_nsfw,omitempty"`
	SetSpoiler          *bool          `yaml:"set_spoiler,omitempty"`
	SetContestMode      *bool          `yaml:"set_contest_mode,omitempty"`
	SetOriginalContent  *bool          `yaml:"set_original_content,omitempty"`
	SetSuggestedSort    *string        `yaml:"set_suggested_sort,omitempty"`
	IgnoreReports       *bool          `yaml:"ignore_reports,omitempty"`
	ReportReason        *string        `yaml:"report_reason,omitempty"`
}

func comparisonText(c *Comparison) string {
	if c == nil {
		return ""
	}
	return c.String()
}

func encodeSearch(ts *TextSearch) *encodedSearch {
	if ts == nil {
		return nil
	}
	return &encodedSearch{Contains: ts.Contains, SatisfyAny: ts.SatisfyAny}
}

func encodeRule(r *Rule) encodedRule {
	d := r.Directives
	out := encodedRule{
		Type:                string(r.ContentType),
		Rule:                r.Patterns,
		Action:              string(r.Action),
		ActionReason:        r.ActionReason,
		Priority:            r.Priority,
		Language:            r.Language,
		IsLocked:            r.Locked,
		IsOriginalContent:   r.OriginalContent,
		IsSelf:              r.Self,
		IsNSFW:              r.NSFW,
		FlairText:           r.FlairText,
		FlairCSSClass:       r.FlairCSSClass,
		FlairTemplateID:     r.FlairTemplateID,
		HasComments:         comparisonText(r.NumComments),
		ModeratorsExempt:    r.ModeratorsExempt,
		SatisfyAnyThreshold: r.SatisfyAnyThreshold,
		Comment:             d.Comment,
		CommentStickied:     d.CommentStickied,
		CommentLocked:       d.CommentLocked,
		SetFlair:            d.SetFlair,
		OverwriteFlair:      d.OverwriteFlair,
		SetLocked:           d.SetLocked,
		SetSticky:           d.SetSticky,
		SetNSFW:             d.SetNSFW,
		SetSpoiler:          d.SetSpoiler,
		SetContestMode:      d.SetContestMode,
		SetOriginalContent:  d.SetOriginalContent,
		SetSuggestedSort:    d.SetSuggestedSort,
		IgnoreReports:       d.IgnoreReports,
		ReportReason:        d.ReportReason,
	}
	if a := r.Author; a != nil {
		out.Author = &encodedAuthor{
			SatisfyAny:          a.SatisfyAny,
			PostKarma:           comparisonText(a.PostKarma),
			CommentKarma:        comparisonText(a.CommentKarma),
			AccountAge:          comparisonText(a.AccountAge),
			Followers:           comparisonText(a.Followers),
			Trophies:            comparisonText(a.Trophies),
			Submissions:         comparisonText(a.Submissions),
			Comments:            comparisonText(a.Comments),
			VerifiedEmail:       a.VerifiedEmail,
			Mod:                 a.Mod,
			Gold:                a.Gold,
			Suspended:           a.Suspended,
			NSFW:                a.NSFW,
			DescriptionContains: a.DescriptionContains,
			ModNotes:            encodeSearch(a.ModNotes),
			Links:               encodeSearch(a.Links),
		}
	}
	return out
}

// Serializes a rule set back to document form, one section per rule in priority order.
func Encode(rs *RuleSet) (string, error) {
	var b strings.Builder
	for i := range rs.Rules {
		raw, err := yaml.Marshal(encodeRule(&rs.Rules[i]))
		if err != nil {
			return "", err
		}
		b.WriteString("---\n")
		b.Write(raw)
	}
	return b.String(), nil
}
