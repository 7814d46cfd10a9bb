package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/theimperious1/OCRAutoModerator/automod/engine"
)

// Carries out a decision on the platform: the primary action first, then the winning rule's directives.
//
// A failure of the primary action is returned right away. Directive failures are collected, so one rejected directive does not prevent the rest.
func Apply(ctx context.Context, mod Moderation, sub *Submission, d *engine.Decision) error {
	switch d.Action {
	case engine.DecisionNone:
		return nil
	case engine.DecisionRemove, engine.DecisionSpam:
		if err := mod.Remove(ctx, sub.ID, d.Action == engine.DecisionSpam, d.ActionReason); err != nil {
			return fmt.Errorf("removing %s: %w", sub.ID, err)
		}
		if strings.TrimSpace(d.Comment) != "" {
			if _, err := mod.Comment(ctx, sub.ID, d.Comment, d.Directives.CommentStickied, d.Directives.CommentLocked); err != nil {
				return fmt.Errorf("commenting on %s: %w", sub.ID, err)
			}
		}
	case engine.DecisionApprove:
		if err := mod.Approve(ctx, sub.ID); err != nil {
			return fmt.Errorf("approving %s: %w", sub.ID, err)
		}
	case engine.DecisionReport:
		if err := mod.Report(ctx, sub.ID, d.ReportReason); err != nil {
			return fmt.Errorf("reporting %s: %w", sub.ID, err)
		}
	default:
		return fmt.Errorf("unhandled decision action: %s", d.Action)
	}
	return applyDirectives(ctx, mod, sub, d)
}

func applyDirectives(ctx context.Context, mod Moderation, sub *Submission, d *engine.Decision) error {
	dir := d.Directives
	var errs []error

	if dir.SetFlair != nil && *dir.SetFlair != "" {
		hasFlair := sub.Flair.Text != "" || sub.Flair.TemplateID != ""
		if !hasFlair || dir.OverwriteFlair {
			if err := mod.SetFlair(ctx, sub.ID, *dir.SetFlair); err != nil {
				errs = append(errs, fmt.Errorf("set flair: %w", err))
			}
		}
	}

	toggles := []struct {
		want    *bool
		current bool
		attr    Attribute
	}{
		{dir.SetLocked, sub.Locked, AttrLocked},
		{dir.SetSticky, sub.Stickied, AttrSticky},
		{dir.SetNSFW, sub.NSFW, AttrNSFW},
		{dir.SetSpoiler, sub.Spoiler, AttrSpoiler},
		{dir.SetContestMode, sub.ContestMode, AttrContestMode},
		{dir.SetOriginalContent, sub.OriginalContent, AttrOriginalContent},
		{dir.IgnoreReports, sub.IgnoreReports, AttrIgnoreReports},
	}
	for _, t := range toggles {
		if t.want == nil || *t.want == t.current {
			continue
		}
		if err := mod.SetAttribute(ctx, sub.ID, t.attr, *t.want); err != nil {
			errs = append(errs, fmt.Errorf("set %s: %w", t.attr, err))
		}
	}

	if dir.SetSuggestedSort != nil && *dir.SetSuggestedSort != sub.SuggestedSort {
		if err := mod.SetSuggestedSort(ctx, sub.ID, *dir.SetSuggestedSort); err != nil {
			errs = append(errs, fmt.Errorf("set suggested sort: %w", err))
		}
	}
	return errors.Join(errs...)
}
