// Publishes engine decisions to chat webhooks and message buses.
package notify

import (
	"time"

	"github.com/theimperious1/OCRAutoModerator/automod/engine"
)

// JSON payload describing one decision, as published on the message bus.
type DecisionEvent struct {
	EventID      string    `json:"event_id"`
	Timestamp    time.Time `json:"timestamp"`
	Community    string    `json:"community"`
	SubmissionID string    `json:"submission_id"`
	Kind         string    `json:"kind"`
	Author       string    `json:"author,omitempty"`
	Permalink    string    `json:"permalink,omitempty"`
	Action       string    `json:"action"`
	ActionReason string    `json:"action_reason,omitempty"`
	Priority     int       `json:"priority,omitempty"`
	Trigger      string    `json:"trigger,omitempty"`
	ReportReason string    `json:"report_reason,omitempty"`
	Counts       Counts    `json:"counts"`
}

type Counts struct {
	Remove  int `json:"remove"`
	Spam    int `json:"spam"`
	Approve int `json:"approve"`
	Report  int `json:"report"`
}

func NewDecisionEvent(sub engine.SubmissionView, d *engine.Decision) DecisionEvent {
	evt := DecisionEvent{
		EventID:      d.EventID,
		Timestamp:    time.Now().UTC(),
		Community:    sub.Community(),
		SubmissionID: sub.ID(),
		Kind:         string(sub.Kind()),
		Permalink:    sub.Permalink(),
		Action:       string(d.Action),
		ActionReason: d.ActionReason,
		ReportReason: d.ReportReason,
		Counts: Counts{
			Remove:  d.Counts.Remove,
			Spam:    d.Counts.Spam,
			Approve: d.Counts.Approve,
			Report:  d.Counts.Report,
		},
	}
	if a := sub.Author(); a != nil {
		evt.Author = a.Name()
	}
	if d.Winner != nil {
		evt.Priority = d.Winner.Rule.Priority
		evt.Trigger = d.Winner.Trigger
	}
	return evt
}
