// Package iface implements the interface state table: one row per distinct (target-plugin,
// target-interface) pair touched so far, holding the partial argument
// set, resolved function pointer, and return-type classification.
package iface

import (
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/errkind"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/pack"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rterr"
)

// Param holds one target parameter's accumulated state.
type Param struct {
	Tag     abi.Tag
	Ready   bool
	Value   pack.Slot
	HasCost bool // true once a constant or a coerced value has been written
}

// Signature describes a resolved target interface's calling shape,
// obtained through the target plugin's own metadata interface.
type Signature struct {
	FnPtr         uintptr
	ParamTags     []abi.Tag
	Variadic      bool
	MinParamCount int
	ReturnClass   abi.ReturnClass
	ReturnSize    int
}

// Row is one interface-state row. Created lazily on first touch
// and then lives until teardown.
type Row struct {
	Plugin    string
	Interface string

	Signature Signature
	Params    []Param

	// InUse guards against concurrent reentry into the same row.
	InUse bool
	// ValidationDone marks that the validation cache has already
	// resolved pass/fail for this row's target function.
	ValidationDone bool
}

// AllReady reports whether every fixed parameter is ready, or — for a
// variadic row — whether at least MinParamCount parameters are ready.
func (r *Row) AllReady() bool {
	if r.Signature.Variadic {
		ready := 0
		for _, p := range r.Params {
			if p.Ready {
				ready++
			}
		}
		return ready >= r.Signature.MinParamCount
	}
	for _, p := range r.Params {
		if !p.Ready {
			return false
		}
	}
	return true
}

// key identifies a row by (plugin, interface).
type key struct {
	plugin, iface string
}

// Resolver resolves a target interface's calling shape the first time
// a row is touched. Implemented by the platform shim in production and
// by a fake in tests.
type Resolver interface {
	Resolve(pluginName, pluginPath, ifaceName string) (Signature, error)
}

// Table is the interface state table.
type Table struct {
	rows     map[key]*Row
	resolver Resolver
}

// New creates an empty table backed by resolver, optionally pre-sizing
// the row map.
func New(resolver Resolver, capacityHint int) *Table {
	t := &Table{resolver: resolver}
	if capacityHint > 0 {
		t.rows = make(map[key]*Row, capacityHint)
	} else {
		t.rows = make(map[key]*Row)
	}
	return t
}

// GetOrCreate returns the existing row for (pluginName, ifaceName),
// resolving and creating one if this is the first touch.
func (t *Table) GetOrCreate(pluginName, pluginPath, ifaceName string) (*Row, error) {
	k := key{plugin: pluginName, iface: ifaceName}
	if row, ok := t.rows[k]; ok {
		return row, nil
	}

	sig, err := t.resolver.Resolve(pluginName, pluginPath, ifaceName)
	if err != nil {
		return nil, rterr.Wrapf(err, errkind.BadArg, "resolving target interface %s.%s", pluginName, ifaceName)
	}

	row := &Row{
		Plugin:    pluginName,
		Interface: ifaceName,
		Signature: sig,
		Params:    make([]Param, len(sig.ParamTags)),
	}
	for i, tag := range sig.ParamTags {
		row.Params[i].Tag = tag
	}
	t.rows[k] = row
	return row, nil
}

// Get returns the existing row for (pluginName, ifaceName), if any,
// without creating one.
func (t *Table) Get(pluginName, ifaceName string) (*Row, bool) {
	row, ok := t.rows[key{plugin: pluginName, iface: ifaceName}]
	return row, ok
}

// Reset clears a row's readiness and values after a call completes, so
// the next accumulation cycle for this interface starts clean. Keeps
// the row itself (its resolved signature and validation state) alive.
func (r *Row) Reset() {
	for i := range r.Params {
		r.Params[i].Ready = false
		r.Params[i].Value = pack.Slot{}
		r.Params[i].HasCost = false
	}
}

// EnsureParamSlot grows Params to cover idx when idx falls beyond the
// statically declared parameter tags, tagging each added slot as
// variadic. It does so for any row; it does not check Signature.Variadic.
func (r *Row) EnsureParamSlot(idx int) {
	for len(r.Params) <= idx {
		tag := abi.TagVariadic
		r.Params = append(r.Params, Param{Tag: tag})
	}
}
