package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/theimperious1/OCRAutoModerator/automod/engine"
	"github.com/theimperious1/OCRAutoModerator/util"
)

type SlackNotifier struct {
	SlackWebhookURL string
	// which decision actions to post; all non-none actions when empty
	Actions []engine.DecisionAction
	Client  *http.Client
}

var _ engine.Notifier = (*SlackNotifier)(nil)

func NewSlackNotifier(webhookURL string, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		SlackWebhookURL: webhookURL,
		Client:          util.RobustHTTPClient(logger),
	}
}

func (n *SlackNotifier) wants(a engine.DecisionAction) bool {
	if a == engine.DecisionNone {
		return false
	}
	if len(n.Actions) == 0 {
		return true
	}
	for _, want := range n.Actions {
		if want == a {
			return true
		}
	}
	return false
}

func (n *SlackNotifier) SendDecision(ctx context.Context, sub engine.SubmissionView, d *engine.Decision) error {
	if !n.wants(d.Action) {
		return nil
	}
	return n.sendSlackMsg(ctx, slackBody(sub, d))
}

type SlackWebhookBody struct {
	Text string `json:"text"`
}

// Sends a simple slack message to a channel via "incoming webhook".
//
// The slack incoming webhook must be already configured in the slack workplace.
func (n *SlackNotifier) sendSlackMsg(ctx context.Context, msg string) error {
	body, err := json.Marshal(SlackWebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.SlackWebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != 200 || buf.String() != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}

func slackBody(sub engine.SubmissionView, d *engine.Decision) string {
	evt := NewDecisionEvent(sub, d)
	msg := fmt.Sprintf("⚠️ Automod Decision: %s ⚠️\n", evt.Action)
	msg += fmt.Sprintf("`r/%s` / `%s` / `u/%s`\n", evt.Community, evt.SubmissionID, evt.Author)
	if evt.ActionReason != "" {
		msg += fmt.Sprintf("Reason: `%s` (priority %d)\n", evt.ActionReason, evt.Priority)
	}
	if evt.Trigger != "" {
		msg += fmt.Sprintf("Matched: `%s`\n", evt.Trigger)
	}
	if evt.ReportReason != "" {
		msg += fmt.Sprintf("Report: %s\n", evt.ReportReason)
	}
	if evt.Permalink != "" {
		msg += fmt.Sprintf("<%s|submission>\n", d.TemplateContext(sub, engine.RenderOptions{}).Permalink)
	}
	if evt.EventID != "" {
		msg += fmt.Sprintf("`%s`\n", evt.EventID)
	}
	return msg
}
