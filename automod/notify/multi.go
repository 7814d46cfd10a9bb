package notify

import (
	"context"
	"errors"

	"github.com/theimperious1/OCRAutoModerator/automod/engine"
)

// Fans a decision out to several notifiers. Every notifier is tried; errors are joined.
type MultiNotifier []engine.Notifier

var _ engine.Notifier = MultiNotifier(nil)

func (m MultiNotifier) SendDecision(ctx context.Context, sub engine.SubmissionView, d *engine.Decision) error {
	var errs []error
	for _, n := range m {
		if err := n.SendDecision(ctx, sub, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
