// Package nxpt implements the NXPT tracker: an
// open-hashed set recording which plugins have had their rule file
// loaded, keyed by the FNV-1a hash of the plugin name, with each slot
// additionally carrying the resolved rule-file path.
package nxpt

import "github.com/Qhunliv13/NexusPlugins-sub000/internal/ruleset"

type entry struct {
	name string
	path string
}

// Tracker is the NXPT tracker. Loading the same plugin's rule file
// twice is a no-op.
type Tracker struct {
	buckets map[uint64][]entry
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{buckets: make(map[uint64][]entry)}
}

// Loaded reports whether plugin is already marked as loaded, and if so,
// the rule-file path it was loaded from.
func (t *Tracker) Loaded(plugin string) (string, bool) {
	h := ruleset.HashString(plugin)
	for _, e := range t.buckets[h] {
		if e.name == plugin {
			return e.path, true
		}
	}
	return "", false
}

// Mark records plugin as loaded from the given rule-file path. A
// second call for the same plugin name is a no-op.
func (t *Tracker) Mark(plugin, path string) {
	if _, ok := t.Loaded(plugin); ok {
		return
	}
	h := ruleset.HashString(plugin)
	t.buckets[h] = append(t.buckets[h], entry{name: plugin, path: path})
}

// Len returns the number of distinct plugins tracked.
func (t *Tracker) Len() int {
	n := 0
	for _, chain := range t.buckets {
		n += len(chain)
	}
	return n
}
