// Package queries loads batches of connection lookups from YAML/JSON files.
package queries

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samvad-hq/bacon-oracle/internal/regfile"
	"github.com/samvad-hq/bacon-oracle/pkg/oracle"
)

// Entry is one lookup declared in a queries file. Either side may be left
// empty to fall back to the anchor name.
type Entry struct {
	ID   string `json:"id" yaml:"id"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Spec builds the lookup for this entry, anchored on anchor.
func (e Entry) Spec(anchor string) *oracle.QuerySpec {
	q := oracle.NewQueryWithAnchor(anchor)
	q.SetFrom(e.From)
	q.SetTo(e.To)
	return q
}

type fileFormat struct {
	Queries []Entry `json:"queries" yaml:"queries"`
}

// Registry holds the loaded entries in file order.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	idx     map[string]Entry
}

// LoadRegistry loads queries from file.
func LoadRegistry(path string) (*Registry, error) {
	parsed, err := regfile.Load[fileFormat](path, "queries")
	if err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Queries)
}

// NewRegistry validates entries and indexes them by id.
func NewRegistry(entries []Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, errors.New("queries file contains no queries entries")
	}

	reg := &Registry{
		entries: make([]Entry, len(entries)),
		idx:     make(map[string]Entry, len(entries)),
	}
	for i := range entries {
		e := sanitizeEntry(entries[i])
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("queries[%d]: %w", i, err)
		}
		if _, exists := reg.idx[e.ID]; exists {
			return nil, fmt.Errorf("duplicate query id %q", e.ID)
		}
		reg.entries[i] = e
		reg.idx[e.ID] = e
	}
	return reg, nil
}

func sanitizeEntry(e Entry) Entry {
	e.ID = strings.TrimSpace(e.ID)
	e.From = strings.TrimSpace(e.From)
	e.To = strings.TrimSpace(e.To)
	return e
}

func validateEntry(e Entry) error {
	if e.ID == "" {
		return errors.New("id is required")
	}
	if e.From == "" && e.To == "" {
		return fmt.Errorf("from or to is required for query %q", e.ID)
	}
	return nil
}

// All returns a copy of the loaded entries in file order.
func (r *Registry) All() []Entry {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ByID returns the entry for the given id, if loaded.
func (r *Registry) ByID(id string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Entry{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.idx[id]
	return e, ok
}
