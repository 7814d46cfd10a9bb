package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/theimperious1/OCRAutoModerator/automod/countstore"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"
	"github.com/theimperious1/OCRAutoModerator/automod/snapshot"
	"github.com/theimperious1/OCRAutoModerator/automod/util"
)

// Rule document loaded for community "pics" by EngineTestFixture.
var TestRuleDocument = `
---
type: image
rule: ["kitten"]
action: remove
action_reason: "no cats"
priority: 1
comment: "Removed for {{match}}, sorry {{author}}."
---
type: any
rule: ["buy now", "discount"]
action: report
action_reason: "advertising"
priority: 5
---
type: image
rule: ["meme"]
action: approve
action_reason: "memes welcome"
priority: 7
`

// Records every decision it is handed.
type CaptureNotifier struct {
	mtx       sync.Mutex
	Decisions []Decision
}

var _ Notifier = (*CaptureNotifier)(nil)

func (n *CaptureNotifier) SendDecision(ctx context.Context, sub SubmissionView, d *Decision) error {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	n.Decisions = append(n.Decisions, *d)
	return nil
}

// Engine with in-memory stores and TestRuleDocument loaded for "pics".
func EngineTestFixture() (*Engine, *CaptureNotifier) {
	rs := util.MustResult(rules.Load(TestRuleDocument))
	table := snapshot.NewTable()
	table.Replace(snapshot.New("pics", rs, TestRuleDocument))
	notif := &CaptureNotifier{}
	eng := Engine{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Snapshots: table,
		Counters:  countstore.NewMemCountStore(),
		Notifier:  notif,
	}
	return &eng, notif
}

// Image submission in "pics" by a regular, non-moderator author.
func TestSubmission(id string) *StaticSubmission {
	return &StaticSubmission{
		SubmissionID:  id,
		CommunityName: "pics",
		MediaKind:     rules.ContentImage,
		AuthorInfo: &StaticAuthor{
			Username: "alice",
			Stats:    map[AuthorStat]int64{StatPostKarma: 120, StatCommentKarma: 40},
			Flags:    map[AuthorFlag]bool{FlagCommunityModerator: false},
		},
		TitleText:     "look at this",
		PermalinkPath: "/r/pics/comments/" + id + "/look_at_this/",
		SubmissionURL: "https://i.example.com/" + id + ".png",
	}
}
