// Capability interfaces for the moderated platform (submissions, inbox, moderator lists, wiki pages, moderation actions), plus an in-memory mock and an HTTP gateway client.
package platform

import (
	"context"
	"errors"
	"time"

	"github.com/theimperious1/OCRAutoModerator/automod/engine"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"
)

var ErrNotFound = errors.New("not found")

type Submission struct {
	ID        string            `json:"id"`
	Community string            `json:"community"`
	Kind      rules.ContentType `json:"kind"`
	// empty when the account was deleted
	Author    string       `json:"author,omitempty"`
	Title     string       `json:"title"`
	// self text of text posts
	Body      string       `json:"body,omitempty"`
	Permalink string       `json:"permalink"`
	URL       string       `json:"url"`
	LinkURL   string       `json:"link_url,omitempty"`
	MediaURLs []string     `json:"media_urls,omitempty"`
	Flair     engine.Flair `json:"flair"`
	// nil when the platform did not report it
	NumComments     *int64    `json:"num_comments,omitempty"`
	Locked          bool      `json:"locked"`
	Stickied        bool      `json:"stickied"`
	NSFW            bool      `json:"nsfw"`
	Spoiler         bool      `json:"spoiler"`
	ContestMode     bool      `json:"contest_mode"`
	OriginalContent bool      `json:"original_content"`
	IgnoreReports   bool      `json:"ignore_reports"`
	Self            bool      `json:"self"`
	Removed         bool      `json:"removed"`
	SuggestedSort   string    `json:"suggested_sort,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Account attributes of a submission author, as seen from one community.
type AuthorInfo struct {
	Name string `json:"name"`
	// the author's flair in the community
	Flair        engine.Flair `json:"flair"`
	PostKarma    int64        `json:"post_karma"`
	CommentKarma int64        `json:"comment_karma"`
	// optional counts, not every platform exposes these
	Followers   *int64    `json:"followers,omitempty"`
	Trophies    *int64    `json:"trophies,omitempty"`
	Submissions *int64    `json:"submissions,omitempty"`
	Comments    *int64    `json:"comments,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	VerifiedEmail bool `json:"verified_email"`
	Mod           bool `json:"mod"`
	Gold          bool `json:"gold"`
	Suspended     bool `json:"suspended"`
	NSFW          bool `json:"nsfw"`
	// moderator of the community this info was fetched for
	CommunityModerator bool `json:"community_moderator"`

	Description string   `json:"description,omitempty"`
	ModNotes    []string `json:"mod_notes,omitempty"`
	RecentLinks []string `json:"recent_links,omitempty"`
}

type MessageKind string

const (
	MessagePrivate MessageKind = "private"
	// invitation to moderate a community
	MessageModInvite MessageKind = "mod_invite"
	// the bot was removed as a moderator of a community
	MessageModRemoved MessageKind = "mod_removed"
)

type Message struct {
	ID      string      `json:"id"`
	Kind    MessageKind `json:"kind"`
	Author  string      `json:"author"`
	Subject string      `json:"subject"`
	Body    string      `json:"body"`
	// set for invites and removal notices
	Community string `json:"community,omitempty"`
}

// Boolean submission states which rule directives can toggle.
type Attribute string

const (
	AttrLocked          Attribute = "locked"
	AttrSticky          Attribute = "sticky"
	AttrNSFW            Attribute = "nsfw"
	AttrSpoiler         Attribute = "spoiler"
	AttrContestMode     Attribute = "contest_mode"
	AttrOriginalContent Attribute = "original_content"
	AttrIgnoreReports   Attribute = "ignore_reports"
)

type Submissions interface {
	// newest submissions across every community the bot moderates
	NewSubmissions(ctx context.Context, limit int) ([]Submission, error)
}

type Authors interface {
	// returns ErrNotFound for deleted or suspended accounts
	AuthorInfo(ctx context.Context, name, community string) (*AuthorInfo, error)
}

type Moderation interface {
	Remove(ctx context.Context, submissionID string, spam bool, modNote string) error
	Approve(ctx context.Context, submissionID string) error
	Report(ctx context.Context, submissionID, reason string) error
	// posts a distinguished moderator comment, returning its id
	Comment(ctx context.Context, submissionID, body string, sticky, lock bool) (string, error)
	SetFlair(ctx context.Context, submissionID, templateID string) error
	SetAttribute(ctx context.Context, submissionID string, attr Attribute, on bool) error
	SetSuggestedSort(ctx context.Context, submissionID, sort string) error
}

type Inbox interface {
	UnreadMessages(ctx context.Context) ([]Message, error)
	MarkRead(ctx context.Context, ids ...string) error
	Reply(ctx context.Context, messageID, body string) error
	// modmail to a community
	SendCommunityMessage(ctx context.Context, community, subject, body string) error
	AcceptInvite(ctx context.Context, community string) error
}

type Directory interface {
	IsModerator(ctx context.Context, community, user string) (bool, error)
	// communities the bot account moderates
	Moderated(ctx context.Context) ([]string, error)
}

type Wiki interface {
	// returns ErrNotFound if the page does not exist
	GetPage(ctx context.Context, community, page string) (string, error)
	// creates or overwrites a page
	PutPage(ctx context.Context, community, page, content, reason string) error
}

type Client interface {
	Submissions
	Authors
	Moderation
	Inbox
	Directory
	Wiki
}
