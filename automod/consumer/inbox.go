package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/RussellLuo/slidingwindow"

	"github.com/theimperious1/OCRAutoModerator/automod/configsync"
	"github.com/theimperious1/OCRAutoModerator/automod/platform"
	"github.com/theimperious1/OCRAutoModerator/automod/setstore"
)

// Message subjects for configuration requests. Matched case-insensitively.
const (
	SubjectUpdate = "update"
	SubjectReset  = "reset"
)

// Handles moderator invites, removal notices, and rule update/reset requests arriving in the bot's inbox.
type InboxConsumer struct {
	Logger   *slog.Logger
	Platform platform.Client
	Configs  *configsync.Manager
	// "maintainers" may update any community (optional)
	Sets    setstore.SetStore
	BotName string
	// account named in rejection replies
	Contact string

	PollInterval time.Duration
	// max update/reset requests per sender per hour; zero for no limit
	RequestsPerHour int64

	limitersMu sync.Mutex
	limiters   map[string]*slidingwindow.Limiter
}

func windowFunc() (slidingwindow.Window, slidingwindow.StopFunc) {
	return slidingwindow.NewLocalWindow()
}

// Whether the sender may make another config request now. Counts the request if so.
func (ic *InboxConsumer) allowRequest(sender string) bool {
	if ic.RequestsPerHour <= 0 {
		return true
	}
	ic.limitersMu.Lock()
	defer ic.limitersMu.Unlock()
	if ic.limiters == nil {
		ic.limiters = make(map[string]*slidingwindow.Limiter)
	}
	key := strings.ToLower(sender)
	lim, ok := ic.limiters[key]
	if !ok {
		lim, _ = slidingwindow.NewLimiter(time.Hour, ic.RequestsPerHour, windowFunc)
		ic.limiters[key] = lim
	}
	return lim.Allow()
}

func (ic *InboxConsumer) Run(ctx context.Context) error {
	if ic.Platform == nil || ic.Configs == nil {
		return fmt.Errorf("inbox consumer missing platform or config manager")
	}
	period := ic.PollInterval
	if period <= 0 {
		period = 30 * time.Second
	}
	ic.Logger.Info("polling inbox", "period", period.String())

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		if err := ic.PollOnce(ctx); err != nil {
			ic.Logger.Warn("inbox poll failed; will retry", "err", err, "period", period.String())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (ic *InboxConsumer) PollOnce(ctx context.Context) error {
	msgs, err := ic.Platform.UnreadMessages(ctx)
	if err != nil {
		return fmt.Errorf("fetching inbox: %w", err)
	}
	if len(msgs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if err := ic.HandleMessage(ctx, msg); err != nil {
			ic.Logger.Error("failed to handle inbox message", "id", msg.ID, "kind", msg.Kind, "author", msg.Author, "err", err)
		}
		ids = append(ids, msg.ID)
	}
	return ic.Platform.MarkRead(ctx, ids...)
}

// Extracts a community name from a request body such as "r/Pics", "/r/pics/" or "pics".
func ParseCommunity(body string) string {
	s := strings.TrimSpace(body)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "/")
	s = strings.TrimPrefix(s, "r/")
	return strings.Trim(s, "/ ")
}

func (ic *InboxConsumer) HandleMessage(ctx context.Context, msg platform.Message) error {
	switch msg.Kind {
	case platform.MessageModInvite:
		return ic.handleInvite(ctx, msg)
	case platform.MessageModRemoved:
		ic.Configs.Forget(msg.Community)
		inboxMessageCount.WithLabelValues(string(msg.Kind), "ok").Inc()
		return nil
	case platform.MessagePrivate:
		subject := strings.ToLower(strings.TrimSpace(msg.Subject))
		if subject == SubjectUpdate || subject == SubjectReset {
			return ic.handleConfigRequest(ctx, msg, subject)
		}
		ic.Logger.Debug("ignoring private message", "id", msg.ID, "author", msg.Author, "subject", msg.Subject)
		inboxMessageCount.WithLabelValues(string(msg.Kind), "ignored").Inc()
		return nil
	default:
		inboxMessageCount.WithLabelValues(string(msg.Kind), "ignored").Inc()
		return nil
	}
}

func (ic *InboxConsumer) handleInvite(ctx context.Context, msg platform.Message) error {
	community := msg.Community
	if err := ic.Platform.AcceptInvite(ctx, community); err != nil {
		inboxMessageCount.WithLabelValues(string(msg.Kind), "error").Inc()
		return fmt.Errorf("accepting invite to %s: %w", community, err)
	}
	if _, err := ic.Configs.Join(ctx, community); err != nil {
		ic.Logger.Warn("could not set up rules after joining", "community", community, "err", err)
		inboxMessageCount.WithLabelValues(string(msg.Kind), "permission_error").Inc()
		subject, body := configsync.PermissionErrorMessage(ic.BotName, community)
		return ic.Platform.SendCommunityMessage(ctx, community, subject, body)
	}
	ic.Logger.Info("joined community", "community", community)
	inboxMessageCount.WithLabelValues(string(msg.Kind), "ok").Inc()
	subject, body := configsync.JoinSuccessMessage(ic.BotName, community)
	return ic.Platform.SendCommunityMessage(ctx, community, subject, body)
}

func (ic *InboxConsumer) authorized(ctx context.Context, community, user string) (bool, error) {
	if ic.Sets != nil {
		ok, err := ic.Sets.InSet(ctx, setstore.SetMaintainers, user)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return ic.Platform.IsModerator(ctx, community, user)
}

func (ic *InboxConsumer) handleConfigRequest(ctx context.Context, msg platform.Message, subject string) error {
	community := ParseCommunity(msg.Body)
	logger := ic.Logger.With("community", community, "author", msg.Author, "subject", subject)
	if !ic.allowRequest(msg.Author) {
		logger.Warn("config request rate limited")
		inboxMessageCount.WithLabelValues(subject, "rate_limited").Inc()
		return ic.Platform.Reply(ctx, msg.ID, "You're sending requests too quickly. Please wait a while before trying again.")
	}
	if community == "" {
		inboxMessageCount.WithLabelValues(subject, "invalid").Inc()
		return ic.Platform.Reply(ctx, msg.ID, "Please put the name of the subreddit in the body of your message, e.g. r/example.")
	}

	ok, err := ic.authorized(ctx, community, msg.Author)
	if errors.Is(err, platform.ErrNotFound) {
		logger.Info("config request for unknown community")
		inboxMessageCount.WithLabelValues(subject, "unknown_community").Inc()
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking moderator status: %w", err)
	}
	if !ok {
		logger.Info("rejected config request from non-moderator")
		inboxMessageCount.WithLabelValues(subject, "unauthorized").Inc()
		return ic.Platform.Reply(ctx, msg.ID, NotModeratorReply(ic.Contact))
	}

	switch subject {
	case SubjectUpdate:
		if _, err := ic.Configs.Load(ctx, community); err != nil {
			logger.Info("rule update failed", "err", err)
			inboxMessageCount.WithLabelValues(subject, "invalid").Inc()
			return ic.Platform.Reply(ctx, msg.ID, ConfigErrorReply(err))
		}
		inboxMessageCount.WithLabelValues(subject, "ok").Inc()
		return ic.Platform.Reply(ctx, msg.ID, fmt.Sprintf("Wiki revision was successful! Changes have been applied to /r/%s.", community))
	case SubjectReset:
		_, getErr := ic.Configs.Docs.GetDocument(ctx, community)
		if _, err := ic.Configs.Reset(ctx, community); err != nil {
			logger.Info("rule reset failed", "err", err)
			inboxMessageCount.WithLabelValues(subject, "error").Inc()
			return ic.Platform.Reply(ctx, msg.ID, ConfigErrorReply(err))
		}
		inboxMessageCount.WithLabelValues(subject, "ok").Inc()
		if errors.Is(getErr, configsync.ErrNoDocument) {
			// first time setup: greet the whole mod team
			mailSubject, body := configsync.JoinSuccessMessage(ic.BotName, community)
			return ic.Platform.SendCommunityMessage(ctx, community, mailSubject, body)
		}
		return ic.Platform.Reply(ctx, msg.ID, fmt.Sprintf("Wiki was reset successfully! Changes have been applied to /r/%s.", community))
	}
	return nil
}

func ConfigErrorReply(err error) string {
	return fmt.Sprintf("Sorry, seems like there's an error with your configuration. Here's the error: %s", err)
}

func NotModeratorReply(contact string) string {
	msg := "Sorry, seems like you're not a moderator of that subreddit."
	if contact != "" {
		msg += fmt.Sprintf(" If this is in error, contact /u/%s.", contact)
	}
	return msg
}
