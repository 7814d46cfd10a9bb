// Loads, resets and publishes per-community rule documents.
//
// Documents are read from a DocumentStore, parsed and validated, and then published to the snapshot table as one atomic replace. A document which fails validation never replaces the snapshot already in place.
package configsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/theimperious1/OCRAutoModerator/automod/rules"
	"github.com/theimperious1/OCRAutoModerator/automod/snapshot"
)

type Manager struct {
	Docs   DocumentStore
	Table  *snapshot.Table
	Logger *slog.Logger
}

func NewManager(docs DocumentStore, table *snapshot.Table, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		Docs:   docs,
		Table:  table,
		Logger: logger.With("component", "configsync"),
	}
}

// Wraps errors from the document store, as opposed to errors in the document itself.
type StoreError struct {
	Community string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("rule document storage for %s: %v", e.Community, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Checks a document without publishing anything.
func Check(doc string) (*rules.RuleSet, error) {
	return rules.Load(doc)
}

func (m *Manager) publish(community, doc string, rs *rules.RuleSet) *snapshot.Snapshot {
	snap := snapshot.New(community, rs, doc)
	prev := m.Table.Replace(snap)
	prevRev := ""
	if prev != nil {
		prevRev = prev.Revision
	}
	m.Logger.Info("published rule snapshot", "community", snap.Community, "revision", snap.Revision, "previous", prevRev, "rules", rs.Len())
	snapshotPublishCount.Inc()
	return snap
}

// Reads the community's document and publishes it. A community without a document gets the default one written first.
//
// On any error the snapshot already in the table is left untouched. Validation failures are returned as the typed errors from the rules package.
func (m *Manager) Load(ctx context.Context, community string) (*snapshot.Snapshot, error) {
	doc, err := m.Docs.GetDocument(ctx, community)
	if errors.Is(err, ErrNoDocument) {
		m.Logger.Info("no rule document, creating default", "community", community)
		if err := m.Docs.PutDocument(ctx, community, DefaultDocument, "created default configuration"); err != nil {
			configLoadCount.WithLabelValues("store_error").Inc()
			return nil, &StoreError{Community: community, Err: err}
		}
		doc = DefaultDocument
	} else if err != nil {
		configLoadCount.WithLabelValues("store_error").Inc()
		return nil, &StoreError{Community: community, Err: err}
	}

	rs, err := rules.Load(doc)
	if err != nil {
		configLoadCount.WithLabelValues("invalid").Inc()
		m.Logger.Warn("rule document failed validation", "community", community, "err", err)
		return nil, err
	}
	configLoadCount.WithLabelValues("ok").Inc()
	return m.publish(community, doc, rs), nil
}

// Overwrites (or creates) the community's document with the default one, and publishes it.
func (m *Manager) Reset(ctx context.Context, community string) (*snapshot.Snapshot, error) {
	rs, err := rules.Load(DefaultDocument)
	if err != nil {
		return nil, fmt.Errorf("default rule document is invalid: %w", err)
	}
	if err := m.Docs.PutDocument(ctx, community, DefaultDocument, "reset to default configuration"); err != nil {
		return nil, &StoreError{Community: community, Err: err}
	}
	m.Logger.Info("reset rule document", "community", community)
	return m.publish(community, DefaultDocument, rs), nil
}

// First load after the bot starts moderating a community. Like Load, except that a document which fails validation is replaced in memory by the default rules, so the community is never left unconfigured. Storage errors are still returned.
func (m *Manager) Join(ctx context.Context, community string) (*snapshot.Snapshot, error) {
	snap, err := m.Load(ctx, community)
	if err == nil {
		return snap, nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return nil, err
	}
	m.Logger.Warn("falling back to default rules", "community", community, "err", err)
	rs, derr := rules.Load(DefaultDocument)
	if derr != nil {
		return nil, fmt.Errorf("default rule document is invalid: %w", derr)
	}
	return m.publish(community, DefaultDocument, rs), nil
}

// Joins every community concurrently. Failures are logged and counted; the number of communities with a published snapshot is returned.
func (m *Manager) JoinAll(ctx context.Context, communities []string, parallel int) int {
	if parallel < 1 {
		parallel = 1
	}
	var g errgroup.Group
	g.SetLimit(parallel)
	for _, c := range communities {
		g.Go(func() error {
			if _, err := m.Join(ctx, c); err != nil {
				m.Logger.Error("failed to load community rules", "community", c, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	n := 0
	for _, c := range communities {
		if m.Table.Get(c) != nil {
			n++
		}
	}
	return n
}

// Drops the community's snapshot, after the bot stops moderating it.
func (m *Manager) Forget(community string) {
	m.Table.Remove(community)
	m.Logger.Info("dropped rule snapshot", "community", community)
}
