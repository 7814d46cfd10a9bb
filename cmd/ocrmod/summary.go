package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/theimperious1/OCRAutoModerator/automod/rules"
)

type ruleSummary struct {
	Priority     int      `json:"priority"`
	Type         string   `json:"type"`
	Action       string   `json:"action"`
	ActionReason string   `json:"action_reason"`
	Patterns     []string `json:"patterns"`
	Language     string   `json:"language,omitempty"`
	Recognizers  string   `json:"recognizers"`
}

func summarizeRules(rs *rules.RuleSet) []ruleSummary {
	out := make([]ruleSummary, 0, rs.Len())
	for i := range rs.Rules {
		r := &rs.Rules[i]
		out = append(out, ruleSummary{
			Priority:     r.Priority,
			Type:         string(r.ContentType),
			Action:       string(r.Action),
			ActionReason: r.ActionReason,
			Patterns:     r.Patterns,
			Language:     r.Language,
			Recognizers:  r.Recognizers.String(),
		})
	}
	return out
}

func printRuleSummary(w io.Writer, rs *rules.RuleSet) {
	for _, r := range summarizeRules(rs) {
		fmt.Fprintf(w, "%4d  %-7s %-8s %q  [%s]  (%s)\n", r.Priority, r.Type, r.Action, r.ActionReason, strings.Join(r.Patterns, ", "), r.Recognizers)
	}
}
