// Expands {{token}} placeholders in rule comment and report text.
//
// Substitution is a single pass: substituted values are never themselves expanded. Unknown tokens are written back unchanged.
package placeholder

import (
	"io"
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	DeletedMarker = "[deleted]"
	NoFlairMarker = "[no flair]"
)

// Values available to templates. Empty strings mean "absent"; see the token docs on Render for fallbacks.
type Context struct {
	Author              string
	Community           string
	AuthorFlairText     string
	AuthorFlairCSSClass string
	AuthorFlairTemplate string
	Permalink           string
	URL                 string
	Kind                string
	Title               string
	Domain              string
	ActionReason        string
	Match               string

	MatchCount   int
	RemoveCount  int
	SpamCount    int
	ApproveCount int
	ReportCount  int
}

func orDefault(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}

// returns the substitution for a token, and false if the token should be left as-is
func (c *Context) lookup(tag string) (string, bool) {
	switch tag {
	case "author":
		return orDefault(c.Author, DeletedMarker), true
	case "subreddit", "community":
		return c.Community, true
	case "author_flair_text":
		return orDefault(c.AuthorFlairText, NoFlairMarker), true
	case "author_flair_css_class":
		return orDefault(c.AuthorFlairCSSClass, NoFlairMarker), true
	case "author_flair_template_id":
		return orDefault(c.AuthorFlairTemplate, NoFlairMarker), true
	case "permalink":
		return c.Permalink, true
	case "url":
		return c.URL, true
	case "kind":
		return c.Kind, true
	case "title":
		return c.Title, true
	case "domain":
		return c.Domain, c.Domain != ""
	case "action_reason":
		return c.ActionReason, true
	case "match":
		return c.Match, true
	case "match_count":
		return strconv.Itoa(c.MatchCount), true
	case "remove_count":
		return strconv.Itoa(c.RemoveCount), true
	case "spam_count":
		return strconv.Itoa(c.SpamCount), true
	case "approve_count":
		return strconv.Itoa(c.ApproveCount), true
	case "report_count":
		return strconv.Itoa(c.ReportCount), true
	}
	return "", false
}

// Expands tokens in tmpl.
//
// Supported tokens: author, subreddit (alias community), author_flair_text, author_flair_css_class, author_flair_template_id, permalink, url, kind, title, domain, action_reason, match, and the counters match_count, remove_count, spam_count, approve_count, report_count.
//
// A missing author renders as DeletedMarker, missing author flair as NoFlairMarker. The domain token is left unexpanded when the submission has no link URL.
func Render(tmpl string, c Context) string {
	if !strings.Contains(tmpl, "{{") {
		return tmpl
	}
	return fasttemplate.ExecuteFuncString(tmpl, "{{", "}}", func(w io.Writer, tag string) (int, error) {
		if val, ok := c.lookup(strings.TrimSpace(tag)); ok {
			return io.WriteString(w, val)
		}
		return io.WriteString(w, "{{"+tag+"}}")
	})
}
