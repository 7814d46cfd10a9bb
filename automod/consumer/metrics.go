package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var skippedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_submissions_skipped",
	Help: "Number of submissions not evaluated, by reason",
}, []string{"reason"})

var appliedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_decisions_applied",
	Help: "Number of decisions applied on the platform, by action",
}, []string{"action"})

var applyErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_decision_apply_errors",
	Help: "Number of decisions which failed to apply, by action",
}, []string{"action"})

var authorFetchCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_author_fetches",
	Help: "Number of author info reads (API calls)",
})

var inboxMessageCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_inbox_messages",
	Help: "Number of inbox messages handled, by kind and outcome",
}, []string{"kind", "outcome"})
