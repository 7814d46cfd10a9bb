package platform

import (
	"time"

	"github.com/theimperious1/OCRAutoModerator/automod/engine"
)

// Builds the engine view of an author. Optional counts which were not reported stay unknown.
func (a *AuthorInfo) View(now time.Time) *engine.StaticAuthor {
	stats := map[engine.AuthorStat]int64{
		engine.StatPostKarma:    a.PostKarma,
		engine.StatCommentKarma: a.CommentKarma,
	}
	optional := []struct {
		v    *int64
		stat engine.AuthorStat
	}{
		{a.Followers, engine.StatFollowers},
		{a.Trophies, engine.StatTrophies},
		{a.Submissions, engine.StatSubmissions},
		{a.Comments, engine.StatComments},
	}
	for _, o := range optional {
		if o.v != nil {
			stats[o.stat] = *o.v
		}
	}
	out := &engine.StaticAuthor{
		Username:    a.Name,
		AuthorFlair: a.Flair,
		Stats:       stats,
		Flags: map[engine.AuthorFlag]bool{
			engine.FlagVerifiedEmail:      a.VerifiedEmail,
			engine.FlagMod:                a.Mod,
			engine.FlagGold:               a.Gold,
			engine.FlagSuspended:          a.Suspended,
			engine.FlagNSFW:               a.NSFW,
			engine.FlagCommunityModerator: a.CommunityModerator,
		},
		Bio:   a.Description,
		Notes: a.ModNotes,
		Links: a.RecentLinks,
	}
	if !a.CreatedAt.IsZero() {
		age := now.Sub(a.CreatedAt)
		out.Age = &age
	}
	return out
}

// Builds the engine view of a submission. author may be nil for deleted accounts.
func (s *Submission) View(author *AuthorInfo, now time.Time) *engine.StaticSubmission {
	out := &engine.StaticSubmission{
		SubmissionID:      s.ID,
		CommunityName:     s.Community,
		MediaKind:         s.Kind,
		IsLocked:          s.Locked,
		IsOriginalContent: s.OriginalContent,
		IsSelf:            s.Self,
		IsNSFW:            s.NSFW,
		LinkFlair:         s.Flair,
		CommentCount:      s.NumComments,
		TitleText:         s.Title,
		PermalinkPath:     s.Permalink,
		SubmissionURL:     s.URL,
		LinkDest:          s.LinkURL,
	}
	if author != nil {
		out.AuthorInfo = author.View(now)
	}
	return out
}
