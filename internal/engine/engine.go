// Package engine wires the routing engine's components into the
// single process-wide context: one rule store, one
// NXPT tracker, one interface state table, one dispatcher, and one
// validation cache, created at library load and torn down at unload.
package engine

import (
	"runtime"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/chainload"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/dispatch"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/errkind"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/iface"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/nxpt"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/platform"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rterr"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rtlog"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/ruleset"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/validate"
)

// Engine is the process-wide context. It owns every loaded
// plugin handle and is released exactly once, at teardown.
type Engine struct {
	Store      *ruleset.Store
	Tracker    *nxpt.Tracker
	Loader     *chainload.Loader
	Table      *iface.Table
	Dispatcher *dispatch.Dispatcher
	Validator  *validate.Cache
	Ignore     *validate.IgnoreList

	resolver *platform.Resolver
}

// Option configures Engine construction, including capacity hints for
// the rule store and interface state table.
type Option func(*options)

type options struct {
	ruleCapacity  int
	stateCapacity int
}

// WithRuleCapacity pre-sizes the rule store's backing slice.
func WithRuleCapacity(n int) Option {
	return func(o *options) { o.ruleCapacity = n }
}

// WithStateCapacity pre-sizes the interface state table's backing map.
func WithStateCapacity(n int) Option {
	return func(o *options) { o.stateCapacity = n }
}

// New constructs an Engine from an already-parsed entry configuration
// plus any capacity hints. Useful when the
// caller has already obtained an EntryConfig some other way (tests, or
// a host that parses configuration itself).
func New(entry ruleset.EntryConfig, opts ...Option) *Engine {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	store := ruleset.New(o.ruleCapacity)
	store.Entry = entry
	return build(store, o)
}

// Load reads rulePath
// into a fresh store — populating its [EntryPlugin] section and any
// TransferRule_<N> sections defined directly in that file — then wires
// an Engine around it.
func Load(rulePath string, opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	store := ruleset.New(o.ruleCapacity)
	if _, err := store.LoadRules(rulePath); err != nil {
		return nil, err
	}
	return build(store, o), nil
}

func build(store *ruleset.Store, o options) *Engine {
	if store.Entry.DisableInfoLog {
		rtlog.SetInfoDisabled(true)
	}

	tracker := nxpt.New()
	loader := chainload.New(store, tracker)

	resolver := platform.NewResolver()
	table := iface.New(resolver, o.stateCapacity)

	ignore := validate.NewIgnoreList(store.Entry.IgnorePlugins)
	trampolines := platform.Trampolines{}
	prober := dispatch.NewProber(trampolines)
	validator := validate.New(platform.FS{}, prober, ignore, store.Entry.EnableValidation)

	dispatcher := dispatch.New(store, table, trampolines, validator)

	return &Engine{
		Store:      store,
		Tracker:    tracker,
		Loader:     loader,
		Table:      table,
		Dispatcher: dispatcher,
		Validator:  validator,
		Ignore:     ignore,
		resolver:   resolver,
	}
}

// Bootstrap runs the entrypoint glue's startup sequence: chain-load
// the entry plugin's rule file, then, if configured, invoke its
// AutoRunInterface once and re-route the return value as a new source
// event the same way a normal invocation would.
func (e *Engine) Bootstrap() error {
	entry := e.Store.Entry
	if entry.PluginName == "" || entry.PluginPath == "" {
		return nil
	}

	// An explicit NxptPath overrides the binary-path-derived rule file
	// for the entry plugin itself; any rule targets it chain-loads still
	// derive their own rule files from their own binary paths.
	if entry.NxptPath != "" {
		before := e.Store.Len()
		added, err := e.Store.LoadRules(entry.NxptPath)
		if err != nil {
			return err
		}
		e.Tracker.Mark(entry.PluginName, entry.NxptPath)
		for i := before; i < before+added; i++ {
			r := e.Store.At(i)
			if !r.Enabled || r.Target.Path == "" {
				continue
			}
			if err := e.Loader.Load(r.Target.Plugin, r.Target.Path); err != nil {
				return err
			}
		}
	} else if err := e.Loader.Load(entry.PluginName, entry.PluginPath); err != nil {
		return err
	}

	if entry.AutoRunInterface != "" {
		if err := e.autoRunEntry(entry); err != nil {
			return err
		}
	}

	return nil
}

// autoRunEntry resolves the entry plugin's AutoRunInterface symbol
// directly (bypassing the metadata/iface.Table protocol, since auto-run
// targets take no declared parameters), invokes it once through the
// integer trampoline with a null pack argument, and re-routes the int32
// result as a new source event at param -1, the same "return value"
// index a normal invocation's return re-routing uses. A missing symbol
// is not an error: auto-run is best-effort, matching a plugin that
// simply doesn't export it.
func (e *Engine) autoRunEntry(entry ruleset.EntryConfig) error {
	handle, err := e.resolver.Handles.Get(entry.PluginName, entry.PluginPath)
	if err != nil {
		return rterr.Wrapf(err, errkind.FileOpen, "loading entry plugin %s for auto-run", entry.PluginName)
	}

	fnPtr, err := platform.ResolveSymbol(handle, entry.AutoRunInterface)
	if err != nil {
		rtlog.Info("entry plugin has no auto-run symbol, skipping",
			zap.String("plugin", entry.PluginName),
			zap.String("interface", entry.AutoRunInterface))
		return nil
	}

	rtlog.Info("auto-running entry interface",
		zap.String("plugin", entry.PluginName),
		zap.String("interface", entry.AutoRunInterface))

	returnValue := int32(e.Dispatcher.Invoker.InvokeInteger(fnPtr, 0))

	e.Dispatcher.CallPlugin(entry.PluginName, entry.AutoRunInterface, -1, uintptr(unsafe.Pointer(&returnValue)))
	runtime.KeepAlive(&returnValue)

	return nil
}

// Close tears down the engine: every loaded shared-library handle is
// closed in teardown order. Safe to call once at library unload.
func (e *Engine) Close() {
	e.resolver.Handles.CloseAll()
}
