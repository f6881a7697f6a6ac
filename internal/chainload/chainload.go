// Package chainload implements the chain loader: given a plugin
// name and binary path, it derives and loads that plugin's rule file,
// then recurses into every enabled rule's target that carries a path,
// with cycle detection over a bounded ancestor stack.
package chainload

import (
	"go.uber.org/zap"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/nxpt"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/pathx"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rtlog"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/ruleset"
)

// maxAncestorStack bounds the ancestor stack used for cycle detection
// (a bounded-size stack of ancestor plugin names, at most 32). Linear
// scan over this stack is intentional — the bound is small enough that
// a hash set would be overkill.
const maxAncestorStack = 32

// Loader ties together a rule Store and an NXPT tracker to perform
// transitive rule-file loading.
type Loader struct {
	Store   *ruleset.Store
	Tracker *nxpt.Tracker
}

// New creates a Loader over the given store and tracker.
func New(store *ruleset.Store, tracker *nxpt.Tracker) *Loader {
	return &Loader{Store: store, Tracker: tracker}
}

// Load performs the chain-loading procedure for (pluginName,
// binaryPath) with an empty ancestor stack.
func (l *Loader) Load(pluginName, binaryPath string) error {
	return l.load(pluginName, binaryPath, nil)
}

func (l *Loader) load(pluginName, binaryPath string, ancestors []string) error {
	// Step 1: idempotence.
	if _, ok := l.Tracker.Loaded(pluginName); ok {
		return nil
	}

	// Step 2: cycle detection over the bounded ancestor stack.
	for _, a := range ancestors {
		if a == pluginName {
			rtlog.Warn("chain-load cycle detected, not descending",
				zap.String("plugin", pluginName))
			return nil
		}
	}
	extended := extendStack(ancestors, pluginName)

	// Step 3: derive the rule-file path.
	rulePath := pathx.RuleFilePath(binaryPath)

	// Step 4: snapshot rule count, then load.
	before := l.Store.Len()
	added, err := l.Store.LoadRules(rulePath)
	if err != nil {
		// Memory failure class of error — propagate.
		return err
	}
	if added == 0 {
		// File-open failure is a warning (already logged inside
		// LoadRules), and the plugin is NOT marked loaded so a later
		// attempt may retry.
		return nil
	}

	// Step 5: mark loaded.
	l.Tracker.Mark(pluginName, rulePath)

	// Step 6: recurse into only the rules added in this call.
	for i := before; i < before+added; i++ {
		r := l.Store.At(i)
		if !r.Enabled {
			continue
		}
		if r.Target.Path == "" {
			continue
		}
		if err := l.load(r.Target.Plugin, r.Target.Path, extended); err != nil {
			return err
		}
	}
	return nil
}

// extendStack appends name to ancestors, collapsing the bottom of the
// stack once it would exceed maxAncestorStack entries — cycles within
// the visible window are still caught, which is all that is required.
func extendStack(ancestors []string, name string) []string {
	extended := make([]string, 0, len(ancestors)+1)
	extended = append(extended, ancestors...)
	extended = append(extended, name)
	if len(extended) > maxAncestorStack {
		extended = extended[len(extended)-maxAncestorStack:]
	}
	return extended
}
