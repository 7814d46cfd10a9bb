// Automod component for named sets of strings, loaded at startup.
//
// The daemon uses the "maintainers" set to recognize operators who may update any community's rules.
package setstore

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// set names used by the daemon
const (
	SetMaintainers = "maintainers"
)

type SetStore interface {
	InSet(ctx context.Context, name, val string) (bool, error)
}

// Case-insensitive in-process sets. Not safe for concurrent writes; populate before use.
type MemSetStore struct {
	Sets map[string]map[string]bool
}

var _ SetStore = MemSetStore{}

func NewMemSetStore() MemSetStore {
	return MemSetStore{
		Sets: make(map[string]map[string]bool),
	}
}

func (s MemSetStore) InSet(ctx context.Context, name, val string) (bool, error) {
	set, ok := s.Sets[name]
	if !ok {
		// NOTE: currently returns false when entire set isn't found
		return false, nil
	}
	return set[strings.ToLower(val)], nil
}

func (s MemSetStore) Add(name string, vals ...string) {
	set, ok := s.Sets[name]
	if !ok {
		set = make(map[string]bool, len(vals))
		s.Sets[name] = set
	}
	for _, v := range vals {
		set[strings.ToLower(v)] = true
	}
}

// Loads sets from a JSON object mapping set names to lists of values.
func (s *MemSetStore) LoadFromFileJSON(p string) error {

	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var sets map[string][]string
	if err := json.Unmarshal(raw, &sets); err != nil {
		return err
	}

	for name, l := range sets {
		s.Add(name, l...)
	}
	return nil
}
