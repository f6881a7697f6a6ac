package validate

import "github.com/Qhunliv13/NexusPlugins-sub000/internal/pathx"

// IgnoreList tracks binaries that should skip validation probing.
// Matching is by the substring from "plugins/" onward in the binary's
// path, after normalising backslashes to forward slashes — a
// documented-fragile rule, preserved exactly: a path with no
// "plugins/" segment is keyed on its whole normalised path, so it only
// matches an entry naming that exact path.
type IgnoreList struct {
	keys map[string]bool
}

// NewIgnoreList builds an IgnoreList from the IgnorePlugins entries,
// each of which is itself treated as a path to key on.
func NewIgnoreList(entries []string) *IgnoreList {
	l := &IgnoreList{keys: make(map[string]bool, len(entries))}
	for _, e := range entries {
		l.Add(e)
	}
	return l
}

// Add records path as ignored.
func (l *IgnoreList) Add(path string) {
	l.keys[pathx.IgnoreKey(path)] = true
}

// Contains reports whether path matches an ignored entry.
func (l *IgnoreList) Contains(path string) bool {
	return l.keys[pathx.IgnoreKey(path)]
}
