package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/theimperious1/OCRAutoModerator/automod/engine"
)

// Decisions are published on this prefix plus the lower-cased community name.
const SubjectDecision = "automod.decision"

// Subset of *nats.Conn used for publishing.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type NATSConfig struct {
	URL           string
	Name          string
	ReconnectWait time.Duration
	// -1 for infinite
	MaxReconnects int
}

func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		Name:          "ocrmod",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

type NATSNotifier struct {
	Conn   Publisher
	Logger *slog.Logger
}

var _ engine.Notifier = (*NATSNotifier)(nil)

// Connects to NATS and returns a notifier which publishes over that connection. The connection is returned so the caller can drain it on shutdown.
func DialNATS(config NATSConfig, logger *slog.Logger) (*NATSNotifier, *nats.Conn, error) {
	logger = logger.With("component", "nats")
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("nats connection closed")
		}),
	}
	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}
	logger.Info("nats connected", "url", nc.ConnectedUrl())
	return &NATSNotifier{Conn: nc, Logger: logger}, nc, nil
}

func DecisionSubject(community string) string {
	return SubjectDecision + "." + strings.ToLower(community)
}

func (n *NATSNotifier) SendDecision(ctx context.Context, sub engine.SubmissionView, d *engine.Decision) error {
	if d.Action == engine.DecisionNone {
		return nil
	}
	data, err := json.Marshal(NewDecisionEvent(sub, d))
	if err != nil {
		return err
	}
	if err := n.Conn.Publish(DecisionSubject(sub.Community()), data); err != nil {
		return fmt.Errorf("publishing decision %s: %w", d.EventID, err)
	}
	return nil
}
