package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullDoc = `
# leading comment section
---
type: image
rule: ["kitten", "puppy"]
action: remove
action_reason: "cute animals"
priority: 10
is_nsfw: false
flair_text: "Meme"
has_comments: "< 5"
moderators_exempt: true
comment: "Hi {{author}}, no animals please."
comment_stickied: true
set_flair: "0123456789abcdef0123456789abcdef0123"
set_suggested_sort: "New"
author:
    post_karma: ">= 80"
    account_age: "< 7 days"
    is_gold: false
    description_contains: "onlyfans"
    mod_notes:
        contains: ["spam", "ban evasion"]
    links: ["https://example.com/a"]
---
type: any
rule: ["buy now"]
action: report
action_reason: "ads"
priority: 2
lang: ar
report_reason: "possible advertising"
`

func TestValidateFullDocument(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	rs, err := Load(fullDoc)
	require.NoError(err)
	require.Equal(2, rs.Len())

	// sorted by priority
	assert.Equal(2, rs.Rules[0].Priority)
	assert.Equal(10, rs.Rules[1].Priority)

	ads := rs.Rules[0]
	assert.Equal(ContentAny, ads.ContentType)
	assert.Equal(ActionReport, ads.Action)
	assert.Equal("ar", ads.Language)
	assert.Equal(LanguagePair{Neural: "ar", Tesseract: "ara"}, ads.Recognizers)
	assert.Equal("possible advertising", *ads.Directives.ReportReason)

	kit := rs.Rules[1]
	assert.Equal(ContentImage, kit.ContentType)
	assert.Equal([]string{"kitten", "puppy"}, kit.Patterns)
	assert.Equal(DefaultLanguage, kit.Recognizers)
	assert.False(*kit.NSFW)
	assert.Nil(kit.Locked)
	assert.Equal("Meme", *kit.FlairText)
	assert.Equal(Comparison{Op: OpLess, Threshold: 5}, *kit.NumComments)
	assert.True(kit.ModeratorsExempt)
	assert.True(kit.Directives.CommentStickied)
	assert.False(kit.Directives.CommentLocked)
	assert.Equal("new", *kit.Directives.SetSuggestedSort)

	a := kit.Author
	require.NotNil(a)
	assert.Equal(Comparison{Op: OpGreaterEqual, Threshold: 80}, *a.PostKarma)
	assert.Equal(Comparison{Op: OpLess, Threshold: 7, Unit: UnitDays}, *a.AccountAge)
	assert.False(*a.Gold)
	assert.Equal([]string{"onlyfans"}, a.DescriptionContains)
	assert.Equal(&TextSearch{Contains: []string{"spam", "ban evasion"}, SatisfyAny: true}, a.ModNotes)
	assert.Equal(&TextSearch{Contains: []string{"https://example.com/a"}, SatisfyAny: true}, a.Links)
	assert.Nil(a.SatisfyAny)

	assert.Equal([]LanguagePair{{Neural: "ar", Tesseract: "ara"}, DefaultLanguage}, rs.LanguagePairs())
	assert.True(rs.Covers(ContentVideo))
	r, ok := rs.ByPriority(10)
	assert.True(ok)
	assert.Equal("cute animals", r.ActionReason)
}

func TestValidateMissingActionReason(t *testing.T) {
	assert := assert.New(t)

	doc := "type: any\nrule: [x]\naction: remove\npriority: 1\n"
	rs, err := Load(doc)
	assert.Nil(rs)

	var mfe *MissingFieldError
	assert.True(errors.As(err, &mfe))
	assert.Equal("action_reason", mfe.Field)

	var re *RuleError
	assert.True(errors.As(err, &re))
	assert.Equal(1, re.Index)

	var te *TypeError
	assert.False(errors.As(err, &te))
	var dpe *DuplicatePriorityError
	assert.False(errors.As(err, &dpe))
}

func TestValidateRequiredFieldOrder(t *testing.T) {
	assert := assert.New(t)

	// both action and priority missing: action is reported first
	_, err := Load("type: any\nrule: [x]\naction_reason: r\n")
	var mfe *MissingFieldError
	assert.True(errors.As(err, &mfe))
	assert.Equal("action", mfe.Field)

	// presence checks happen before type checks
	_, err = Load("type: 5\nrule: [x]\naction: remove\naction_reason: r\n")
	assert.True(errors.As(err, &mfe))
	assert.Equal("priority", mfe.Field)
}

func TestValidateErrors(t *testing.T) {
	assert := assert.New(t)

	base := "type: any\nrule: [x]\naction: remove\naction_reason: r\npriority: 1\n"

	typeCases := []struct {
		doc   string
		field string
	}{
		{"type: any\nrule: x\naction: remove\naction_reason: r\npriority: 1\n", "rule"},
		{"type: any\nrule: [x, 3]\naction: remove\naction_reason: r\npriority: 1\n", "rule"},
		{"type: any\nrule: [x]\naction: remove\naction_reason: r\npriority: \"1\"\n", "priority"},
		{"type: any\nrule: [x]\naction: remove\naction_reason: 12\npriority: 1\n", "action_reason"},
		{base + "is_locked: \"yes\"\n", "is_locked"},
		{base + "set_flair: 12\n", "set_flair"},
		{base + "author: \"someone\"\n", "author"},
		{base + "author:\n    is_mod: 1\n", "author.is_mod"},
		{base + "author:\n    description_contains: {a: b}\n", "author.description_contains"},
		{base + "author:\n    mod_notes: [x]\n", "author.mod_notes"},
		{base + "has_comments: 5\n", "has_comments"},
	}
	for _, tc := range typeCases {
		_, err := Load(tc.doc)
		var te *TypeError
		if assert.True(errors.As(err, &te), tc.doc) {
			assert.Equal(tc.field, te.Field)
		}
	}

	rangeCases := []struct {
		doc   string
		field string
	}{
		{"type: audio\nrule: [x]\naction: remove\naction_reason: r\npriority: 1\n", "type"},
		{"type: any\nrule: [x]\naction: delete\naction_reason: r\npriority: 1\n", "action"},
		{"type: any\nrule: [x]\naction: remove\naction_reason: r\npriority: 0\n", "priority"},
		{"type: any\nrule: [x]\naction: remove\naction_reason: r\npriority: 2001\n", "priority"},
		{"type: any\nrule: []\naction: remove\naction_reason: r\npriority: 1\n", "rule"},
		{"type: any\nrule: [x]\naction: remove\naction_reason: " + strings.Repeat("a", 100) + "\npriority: 1\n", "action_reason"},
		{"type: any\nrule: [" + strings.Repeat("a", 1001) + "]\naction: remove\naction_reason: r\npriority: 1\n", "rule"},
		{base + "set_flair: \"abc\"\n", "set_flair"},
		{base + "flair_template_id: \"abc\"\n", "flair_template_id"},
		{base + "set_suggested_sort: hot\n", "set_suggested_sort"},
		{base + "report_reason: " + strings.Repeat("b", 100) + "\n", "report_reason"},
		{base + "author:\n    mod_notes:\n        contains: []\n        satisfy_any_threshold: false\n", "author.mod_notes.contains"},
		{base + "author:\n    links:\n        contains: []\n", "author.links.contains"},
		{base + "author:\n    links: []\n", "author.links"},
		{base + "author:\n    account_age: \"> 1000000 years\"\n", "author.account_age"},
	}
	for _, tc := range rangeCases {
		_, err := Load(tc.doc)
		var ve *ValueRangeError
		if assert.True(errors.As(err, &ve), tc.doc) {
			assert.Equal(tc.field, ve.Field)
		}
	}

	// length limits count characters, not bytes
	_, err := Load("type: any\nrule: [x]\naction: remove\naction_reason: " + strings.Repeat("é", 99) + "\npriority: 1\n")
	assert.NoError(err)

	condCases := []struct {
		doc   string
		field string
	}{
		{base + "has_comments: \"=> 5\"\n", "has_comments"},
		{base + "has_comments: \"> five\"\n", "has_comments"},
		{base + "has_comments: \">5\"\n", "has_comments"},
		{base + "author:\n    account_age: \"> 7\"\n", "author.account_age"},
		{base + "author:\n    account_age: \"> 7 fortnights\"\n", "author.account_age"},
		{base + "author:\n    post_karma: \"> 7 days\"\n", "author.post_karma"},
	}
	for _, tc := range condCases {
		_, err := Load(tc.doc)
		var ce *ConditionalSyntaxError
		if assert.True(errors.As(err, &ce), tc.doc) {
			assert.Equal(tc.field, ce.Field)
		}
	}

	_, err = Load(base + "author:\n    mod_notes:\n        satisfy_any_threshold: true\n")
	var mfe *MissingFieldError
	assert.True(errors.As(err, &mfe))
	assert.Equal("author.mod_notes.contains", mfe.Field)

	_, err = Load(base + "language: klingon\n")
	var ule *UnsupportedLanguageError
	assert.True(errors.As(err, &ule))
	assert.Equal("klingon", ule.Code)
}

func TestValidateDuplicatePriorities(t *testing.T) {
	assert := assert.New(t)

	rule := func(p string) string {
		return "type: any\nrule: [x]\naction: report\naction_reason: r\npriority: " + p + "\n"
	}
	doc := strings.Join([]string{rule("5"), rule("3"), rule("5"), rule("7"), rule("3"), rule("5")}, "---\n")
	rs, err := Load(doc)
	assert.Nil(rs)
	var dpe *DuplicatePriorityError
	assert.True(errors.As(err, &dpe))
	assert.Equal([]int{3, 5}, dpe.Priorities)

	rs, err = Load(strings.Join([]string{rule("5"), rule("3"), rule("7")}, "---\n"))
	assert.NoError(err)
	assert.Equal(3, rs.Len())
}

func TestValidateSatisfyAnyDefaults(t *testing.T) {
	assert := assert.New(t)

	base := "type: any\nrule: [x]\naction: remove\naction_reason: r\npriority: 1\n"
	rs, err := Load(base + "satisfy_any_threshold: true\nauthor:\n    post_karma: \"> 1\"\n    mod_notes:\n        contains: a\n        satisfy_any_threshold: false\n    links:\n        contains: [\"https://a.example\"]\n")
	assert.NoError(err)
	a := rs.Rules[0].Author
	assert.True(*a.SatisfyAny)
	assert.False(a.ModNotes.SatisfyAny)
	assert.True(a.Links.SatisfyAny)

	rs, err = Load(base + "satisfy_any_threshold: true\nauthor:\n    satisfy_any_threshold: false\n")
	assert.NoError(err)
	assert.False(*rs.Rules[0].Author.SatisfyAny)
}

func TestEncodeRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	rs, err := Load(fullDoc)
	require.NoError(err)

	doc, err := Encode(rs)
	require.NoError(err)
	assert.Equal(2, strings.Count(doc, "---\n"))

	again, err := Load(doc)
	require.NoError(err)
	assert.Equal(rs, again)

	for i := range rs.Rules {
		assert.Equal(rs.Rules[i].ContentType, again.Rules[i].ContentType)
		assert.Equal(rs.Rules[i].Patterns, again.Rules[i].Patterns)
		assert.Equal(rs.Rules[i].Action, again.Rules[i].Action)
		assert.Equal(rs.Rules[i].ActionReason, again.Rules[i].ActionReason)
		assert.Equal(rs.Rules[i].Priority, again.Rules[i].Priority)
	}
}
