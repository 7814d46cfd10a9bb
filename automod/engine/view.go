package engine

import (
	"time"

	"github.com/theimperious1/OCRAutoModerator/automod/rules"
)

// Media class of a text (self) post. Only rules with content type "any" apply to these.
const MediaText rules.ContentType = "text"

// Flair attributes. Empty strings mean the attribute is absent.
type Flair struct {
	Text       string `json:"text,omitempty"`
	CSSClass   string `json:"css_class,omitempty"`
	TemplateID string `json:"template_id,omitempty"`
}

type AuthorStat int

const (
	StatPostKarma AuthorStat = iota
	StatCommentKarma
	StatFollowers
	StatTrophies
	StatSubmissions
	StatComments
)

type AuthorFlag int

const (
	FlagVerifiedEmail AuthorFlag = iota
	FlagMod
	FlagGold
	FlagSuspended
	FlagNSFW
	// moderator of the community the submission was posted to
	FlagCommunityModerator
)

// Read-only view of the fields of a submission which rules can inspect.
//
// Implementations must be safe for concurrent reads and must not do I/O; the caller fetches everything up front.
type SubmissionView interface {
	ID() string
	Community() string
	Kind() rules.ContentType
	// nil if the author account was deleted or could not be resolved
	Author() AuthorView
	Locked() bool
	OriginalContent() bool
	Self() bool
	NSFW() bool
	Flair() Flair
	NumComments() (int64, bool)
	Title() string
	// relative or absolute
	Permalink() string
	URL() string
	// destination of a link post, if any
	LinkURL() string
}

type AuthorView interface {
	Name() string
	Flair() Flair
	Stat(s AuthorStat) (int64, bool)
	AccountAge() (time.Duration, bool)
	Flag(f AuthorFlag) (bool, bool)
	Description() string
	// moderator notes on this author, for the submission's community
	ModNotes() []string
	// link URLs of the author's recent submissions
	RecentLinks() []string
}

// Plain-data SubmissionView, populated by the caller before evaluation.
type StaticSubmission struct {
	SubmissionID      string
	CommunityName     string
	MediaKind         rules.ContentType
	AuthorInfo        *StaticAuthor
	IsLocked          bool
	IsOriginalContent bool
	IsSelf            bool
	IsNSFW            bool
	LinkFlair         Flair
	CommentCount      *int64
	TitleText         string
	PermalinkPath     string
	SubmissionURL     string
	LinkDest          string
}

var _ SubmissionView = (*StaticSubmission)(nil)

func (s *StaticSubmission) ID() string              { return s.SubmissionID }
func (s *StaticSubmission) Community() string       { return s.CommunityName }
func (s *StaticSubmission) Kind() rules.ContentType { return s.MediaKind }
func (s *StaticSubmission) Locked() bool            { return s.IsLocked }
func (s *StaticSubmission) OriginalContent() bool   { return s.IsOriginalContent }
func (s *StaticSubmission) Self() bool              { return s.IsSelf }
func (s *StaticSubmission) NSFW() bool              { return s.IsNSFW }
func (s *StaticSubmission) Flair() Flair            { return s.LinkFlair }
func (s *StaticSubmission) Title() string           { return s.TitleText }
func (s *StaticSubmission) Permalink() string       { return s.PermalinkPath }
func (s *StaticSubmission) URL() string             { return s.SubmissionURL }
func (s *StaticSubmission) LinkURL() string         { return s.LinkDest }

func (s *StaticSubmission) Author() AuthorView {
	// avoid returning a typed nil
	if s.AuthorInfo == nil {
		return nil
	}
	return s.AuthorInfo
}

func (s *StaticSubmission) NumComments() (int64, bool) {
	if s.CommentCount == nil {
		return 0, false
	}
	return *s.CommentCount, true
}

// Plain-data AuthorView. Missing map entries are treated as unknown attributes.
type StaticAuthor struct {
	Username    string
	AuthorFlair Flair
	Stats       map[AuthorStat]int64
	Age         *time.Duration
	Flags       map[AuthorFlag]bool
	Bio         string
	Notes       []string
	Links       []string
}

var _ AuthorView = (*StaticAuthor)(nil)

func (a *StaticAuthor) Name() string          { return a.Username }
func (a *StaticAuthor) Flair() Flair          { return a.AuthorFlair }
func (a *StaticAuthor) Description() string   { return a.Bio }
func (a *StaticAuthor) ModNotes() []string    { return a.Notes }
func (a *StaticAuthor) RecentLinks() []string { return a.Links }

func (a *StaticAuthor) Stat(s AuthorStat) (int64, bool) {
	v, ok := a.Stats[s]
	return v, ok
}

func (a *StaticAuthor) AccountAge() (time.Duration, bool) {
	if a.Age == nil {
		return 0, false
	}
	return *a.Age, true
}

func (a *StaticAuthor) Flag(f AuthorFlag) (bool, bool) {
	v, ok := a.Flags[f]
	return v, ok
}
