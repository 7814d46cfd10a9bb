// Per-community table of validated rule sets.
//
// Snapshots are immutable. Updates publish a new *Snapshot with a single map store, so concurrent readers observe either the old or the new rule set, never a mix.
package snapshot

import (
	"sort"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/theimperious1/OCRAutoModerator/automod/helpers"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"
)

type Snapshot struct {
	Community string
	Rules     *rules.RuleSet
	LoadedAt  time.Time
	// hash of the source document text
	Revision string
}

func New(community string, rs *rules.RuleSet, doc string) *Snapshot {
	return &Snapshot{
		Community: Key(community),
		Rules:     rs,
		LoadedAt:  time.Now().UTC(),
		Revision:  helpers.HashOfString(doc),
	}
}

// Normalizes a community name for table lookups.
func Key(community string) string {
	return strings.ToLower(strings.TrimSpace(community))
}

type Table struct {
	m *xsync.Map[string, *Snapshot]
}

func NewTable() *Table {
	return &Table{
		m: xsync.NewMap[string, *Snapshot](),
	}
}

// Returns the current snapshot for a community, or nil.
func (t *Table) Get(community string) *Snapshot {
	s, ok := t.m.Load(Key(community))
	if !ok {
		return nil
	}
	return s
}

// Publishes a snapshot, replacing any previous one for the community. Returns the replaced snapshot, if any.
func (t *Table) Replace(s *Snapshot) *Snapshot {
	prev, _ := t.m.LoadAndStore(Key(s.Community), s)
	return prev
}

func (t *Table) Remove(community string) {
	t.m.Delete(Key(community))
}

// Sorted list of communities with a snapshot.
func (t *Table) Communities() []string {
	var out []string
	t.m.Range(func(k string, _ *Snapshot) bool {
		out = append(out, k)
		return true
	})
	sort.Strings(out)
	return out
}

func (t *Table) Len() int {
	return t.m.Size()
}
