package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var submissionProcessDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "automod_submission_duration_sec",
	Help: "Total duration of automod submission evaluation",
}, []string{"kind"})

var submissionProcessCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_submission_processed",
	Help: "Number of submissions evaluated",
}, []string{"kind"})

var submissionErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_submission_errors",
	Help: "Number of submissions which failed evaluation",
}, []string{"kind"})

var decisionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_decisions",
	Help: "Number of decisions reached, by action",
}, []string{"action"})

var quotaDowngradeCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_quota_downgrades",
	Help: "Number of removals downgraded to reports by the daily quota",
})
