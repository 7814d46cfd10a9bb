package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/theimperious1/OCRAutoModerator/automod/configsync"
	"github.com/theimperious1/OCRAutoModerator/automod/engine"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"

	cli "github.com/urfave/cli/v2"
)

var checkRulesCmd = &cli.Command{
	Name:      "check-rules",
	Usage:     "parse and validate a rule document, printing a summary of the rules",
	ArgsUsage: `<file>`,
	Action: func(cctx *cli.Context) error {
		doc, err := readDocument(cctx.Args().First())
		if err != nil {
			return err
		}
		rs, err := rules.Load(doc)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid rule document: %s", err), 1)
		}
		fmt.Fprintf(cctx.App.Writer, "%d rules\n", rs.Len())
		printRuleSummary(cctx.App.Writer, rs)
		return nil
	},
}

var defaultConfigCmd = &cli.Command{
	Name:  "default-config",
	Usage: "print the rule document new communities start with",
	Action: func(cctx *cli.Context) error {
		_, err := io.WriteString(cctx.App.Writer, configsync.DefaultDocument)
		return err
	},
}

var evaluateCmd = &cli.Command{
	Name:      "evaluate",
	Usage:     "dry-run a rule document against text fragments, printing the decision as JSON",
	ArgsUsage: `<file>`,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:     "text",
			Usage:    "recognized text fragment (may be repeated)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "kind",
			Usage: "media class of the submission (image, video, gif, text)",
			Value: string(rules.ContentImage),
		},
		&cli.StringFlag{
			Name:  "community",
			Value: "example",
		},
		&cli.StringFlag{
			Name:  "author",
			Usage: "author name; empty for a deleted account",
			Value: "example_user",
		},
		&cli.Int64Flag{
			Name:  "post-karma",
			Value: 100,
		},
		&cli.Int64Flag{
			Name:  "comment-karma",
			Value: 100,
		},
		&cli.BoolFlag{
			Name:  "moderator",
			Usage: "author moderates the community",
		},
		&cli.BoolFlag{
			Name:  "include-noop",
			Usage: "also list matches of 'nothing' rules",
		},
	},
	Action: func(cctx *cli.Context) error {
		doc, err := readDocument(cctx.Args().First())
		if err != nil {
			return err
		}
		rs, err := rules.Load(doc)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid rule document: %s", err), 1)
		}

		sub := &engine.StaticSubmission{
			SubmissionID:  "dryrun",
			CommunityName: cctx.String("community"),
			MediaKind:     rules.ContentType(cctx.String("kind")),
			TitleText:     "dry run",
			PermalinkPath: fmt.Sprintf("/r/%s/comments/dryrun/", cctx.String("community")),
		}
		if name := cctx.String("author"); name != "" {
			sub.AuthorInfo = &engine.StaticAuthor{
				Username: name,
				Stats: map[engine.AuthorStat]int64{
					engine.StatPostKarma:    cctx.Int64("post-karma"),
					engine.StatCommentKarma: cctx.Int64("comment-karma"),
				},
				Flags: map[engine.AuthorFlag]bool{
					engine.FlagCommunityModerator: cctx.Bool("moderator"),
				},
			}
		}

		dec, buckets := engine.Decide(rs, sub, cctx.StringSlice("text"), engine.AggregateOptions{IncludeNoop: cctx.Bool("include-noop")}, engine.RenderOptions{})
		out := dryRunResult{
			Action:       string(dec.Action),
			ActionReason: dec.ActionReason,
			Comment:      dec.Comment,
			ReportReason: dec.ReportReason,
			Counts:       dec.Counts,
		}
		for _, bucket := range [][]engine.MatchResult{buckets.Remove, buckets.Spam, buckets.Approve, buckets.Report, buckets.Noop} {
			for _, m := range bucket {
				out.Matches = append(out.Matches, dryRunMatch{
					Priority: m.Rule.Priority,
					Action:   string(m.Rule.Action),
					Trigger:  m.Trigger,
					Fragment: m.Fragment,
				})
			}
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cctx.App.Writer, string(b))
		return nil
	},
}

type dryRunMatch struct {
	Priority int    `json:"priority"`
	Action   string `json:"action"`
	Trigger  string `json:"trigger"`
	Fragment string `json:"fragment"`
}

type dryRunResult struct {
	Action       string        `json:"action"`
	ActionReason string        `json:"action_reason,omitempty"`
	Comment      string        `json:"comment,omitempty"`
	ReportReason string        `json:"report_reason,omitempty"`
	Counts       engine.Counts `json:"counts"`
	Matches      []dryRunMatch `json:"matches"`
}

// Reads a rule document from a file path, or stdin for "-".
func readDocument(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("expected a rule document file path (or '-' for stdin)")
	}
	var b []byte
	var err error
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading rule document: %w", err)
	}
	return string(b), nil
}
