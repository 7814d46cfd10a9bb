package automod

import (
	"github.com/theimperious1/OCRAutoModerator/automod/countstore"
	"github.com/theimperious1/OCRAutoModerator/automod/engine"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"
	"github.com/theimperious1/OCRAutoModerator/automod/snapshot"
)

type Engine = engine.Engine
type EngineConfig = engine.EngineConfig
type Notifier = engine.Notifier

type SubmissionView = engine.SubmissionView
type AuthorView = engine.AuthorView
type StaticSubmission = engine.StaticSubmission
type StaticAuthor = engine.StaticAuthor
type Flair = engine.Flair

type MatchResult = engine.MatchResult
type Buckets = engine.Buckets
type Decision = engine.Decision
type DecisionAction = engine.DecisionAction

type Rule = rules.Rule
type RuleSet = rules.RuleSet
type ContentType = rules.ContentType
type Snapshot = snapshot.Snapshot

var (
	DecisionRemove  = engine.DecisionRemove
	DecisionSpam    = engine.DecisionSpam
	DecisionApprove = engine.DecisionApprove
	DecisionReport  = engine.DecisionReport
	DecisionNone    = engine.DecisionNone

	ContentImage = rules.ContentImage
	ContentVideo = rules.ContentVideo
	ContentGIF   = rules.ContentGIF
	ContentAny   = rules.ContentAny
	MediaText    = engine.MediaText

	PeriodTotal = countstore.PeriodTotal
	PeriodDay   = countstore.PeriodDay
	PeriodHour  = countstore.PeriodHour
)
