package engine

import (
	"context"
)

// Interface for a type that can publish decisions (chat webhooks, message buses)
type Notifier interface {
	SendDecision(ctx context.Context, sub SubmissionView, d *Decision) error
}
