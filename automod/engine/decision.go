package engine

import (
	"fmt"
	"strings"

	"github.com/theimperious1/OCRAutoModerator/automod/helpers"
	"github.com/theimperious1/OCRAutoModerator/automod/placeholder"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"
)

type DecisionAction string

const (
	DecisionRemove  DecisionAction = "remove"
	DecisionSpam    DecisionAction = "spam"
	DecisionApprove DecisionAction = "approve"
	DecisionReport  DecisionAction = "report"
	DecisionNone    DecisionAction = "none"
)

const (
	DefaultRemovalComment = "Sorry, your submission appears to violate our rules and has been removed."
	DefaultBaseURL        = "https://www.reddit.com"
)

func defaultReportReason(n int) string {
	return fmt.Sprintf("This content appears to violate the rules. It matched %d times.", n)
}

type Counts struct {
	Remove  int
	Spam    int
	Approve int
	Report  int
	Noop    int
}

// Final outcome for one submission, to be applied by the platform client.
type Decision struct {
	// set by the engine when the decision is recorded
	EventID string

	Action DecisionAction
	// top match which drove the decision; nil for DecisionNone
	Winner       *MatchResult
	ActionReason string
	// rendered; set for remove and spam
	Comment string
	// rendered; set for report
	ReportReason string
	// post-action side effects from the winning rule
	Directives rules.Directives
	Counts     Counts
}

// Applies remove/spam > approve > report > none precedence to aggregated matches.
func Resolve(b *Buckets) Decision {
	d := Decision{
		Action: DecisionNone,
		Counts: Counts{
			Remove:  len(b.Remove),
			Spam:    len(b.Spam),
			Approve: len(b.Approve),
			Report:  len(b.Report),
			Noop:    len(b.Noop),
		},
	}

	var win *MatchResult
	switch {
	case len(b.Remove) > 0 || len(b.Spam) > 0:
		d.Action = DecisionRemove
		win = first(b.Remove)
		if sp := first(b.Spam); sp != nil && (win == nil || sp.Rule.Priority < win.Rule.Priority) {
			d.Action = DecisionSpam
			win = sp
		}
	case len(b.Approve) > 0:
		d.Action = DecisionApprove
		win = &b.Approve[0]
	case len(b.Report) > 0:
		d.Action = DecisionReport
		win = &b.Report[0]
	}
	if win != nil {
		d.Winner = win
		d.ActionReason = win.Rule.ActionReason
		d.Directives = win.Rule.Directives
	}
	return d
}

func first(l []MatchResult) *MatchResult {
	if len(l) == 0 {
		return nil
	}
	return &l[0]
}

type RenderOptions struct {
	// prefix for relative permalinks
	BaseURL string
	// comment for remove/spam decisions when the rule has none
	DefaultComment string
}

// Builds the template context for a decision on a submission.
func (d *Decision) TemplateContext(sub SubmissionView, opts RenderOptions) placeholder.Context {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	permalink := sub.Permalink()
	if strings.HasPrefix(permalink, "/") {
		permalink = strings.TrimSuffix(base, "/") + permalink
	}
	c := placeholder.Context{
		Community:    sub.Community(),
		Permalink:    permalink,
		URL:          sub.URL(),
		Kind:         string(sub.Kind()),
		Title:        sub.Title(),
		Domain:       helpers.Domain(sub.LinkURL()),
		ActionReason: d.ActionReason,
		MatchCount:   d.Counts.Remove + d.Counts.Spam + d.Counts.Approve + d.Counts.Report,
		RemoveCount:  d.Counts.Remove,
		SpamCount:    d.Counts.Spam,
		ApproveCount: d.Counts.Approve,
		ReportCount:  d.Counts.Report,
	}
	if a := sub.Author(); a != nil {
		c.Author = a.Name()
		f := a.Flair()
		c.AuthorFlairText = f.Text
		c.AuthorFlairCSSClass = f.CSSClass
		c.AuthorFlairTemplate = f.TemplateID
	}
	if d.Winner != nil {
		c.Match = d.Winner.Trigger
	}
	return c
}

// Fills in the rendered comment or report text for the decision.
func (d *Decision) Render(sub SubmissionView, opts RenderOptions) {
	c := d.TemplateContext(sub, opts)
	switch d.Action {
	case DecisionRemove, DecisionSpam:
		tmpl := opts.DefaultComment
		if tmpl == "" {
			tmpl = DefaultRemovalComment
		}
		if d.Directives.Comment != nil && strings.TrimSpace(*d.Directives.Comment) != "" {
			tmpl = *d.Directives.Comment
		}
		d.Comment = markdownBreaks(placeholder.Render(tmpl, c))
	case DecisionReport:
		if d.Directives.ReportReason != nil && *d.Directives.ReportReason != "" {
			d.ReportReason = placeholder.Render(*d.Directives.ReportReason, c)
		} else {
			d.ReportReason = defaultReportReason(d.Counts.Report)
		}
	}
}

// turns single newlines in to markdown hard line breaks
func markdownBreaks(s string) string {
	s = strings.TrimRight(s, "\n")
	return strings.ReplaceAll(s, "\n", "  \n")
}
