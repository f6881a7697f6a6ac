// Package dispatch implements the dispatcher: the two public
// entry points that accept a source event, find matching rules in the
// rule store, accumulate argument values in the interface state table,
// and invoke target interfaces once their arguments are complete.
package dispatch

import (
	"unsafe"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/iface"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rtlog"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/ruleset"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/validate"
)

// entrySourcePlugin and entrySourceInterface name the synthetic event
// TransferPointer issues against the rule store.
const (
	entrySourcePlugin    = "PointerTransferPlugin"
	entrySourceInterface = "TransferPointer"
)

// softDepthThreshold is the recursion depth past which the dispatcher
// starts logging a warning without aborting.
const softDepthThreshold = 16

// maxAncestorStack bounds the (plugin, interface) reentry-guard stack,
// mirroring chainload's ancestor-stack bound.
const maxAncestorStack = 32

// Invoker calls a resolved target function through one of the five
// trampoline shapes. Implemented by the platform shim in
// production, and by a fake in tests.
type Invoker interface {
	InvokeInteger(fn, packPtr uintptr) int64
	InvokeFloat(fn, packPtr uintptr) float32
	InvokeDouble(fn, packPtr uintptr) float64
	InvokeStructSmall(fn, packPtr, outPtr uintptr)
	InvokeStructLarge(fn, packPtr, outPtr uintptr)
}

// LastPointer is the single-slot "last-transferred pointer" context.
type LastPointer struct {
	Valid    bool
	TypeTag  int32
	TypeName string
	Size     uint64
	Ptr      uintptr
}

// pair identifies a (plugin, interface) touched during the current
// recursive dispatch chain, for the reentry guard.
type pair struct {
	plugin, iface string
}

// Dispatcher holds the process-wide dispatch state: the rule store, the
// interface state table, the platform invoker, and the validation
// cache.
type Dispatcher struct {
	Store     *ruleset.Store
	Table     *iface.Table
	Invoker   Invoker
	Validator *validate.Cache

	LastPointer LastPointer

	ancestors     []pair
	depth         int
	correlationID string // shared by every soft-depth warning of one outer call
}

// New creates a Dispatcher over the given collaborators.
func New(store *ruleset.Store, table *iface.Table, invoker Invoker, validator *validate.Cache) *Dispatcher {
	return &Dispatcher{Store: store, Table: table, Invoker: invoker, Validator: validator}
}

// TransferPointer implements the first public entry point: asserts a
// typed pointer value and issues a synthetic source event against the
// rule store. Returns 0 on clean storage, 1 on stored-with-mismatch,
// -1 on a null pointer.
func (d *Dispatcher) TransferPointer(ptr uintptr, typeTag int32, typeName string, size uint64) int32 {
	if ptr == 0 {
		return -1
	}

	mismatch := d.LastPointer.Valid && d.LastPointer.Ptr == ptr &&
		(d.LastPointer.TypeTag != typeTag || d.LastPointer.Size != size)
	if mismatch {
		rtlog.Warn("TransferPointer: conflicting assertion for address",
			zap.Uintptr("ptr", ptr),
			zap.Int32("prior_tag", d.LastPointer.TypeTag),
			zap.Int32("new_tag", typeTag),
			zap.Uint64("prior_size", d.LastPointer.Size),
			zap.Uint64("new_size", size))
	}

	d.LastPointer = LastPointer{Valid: true, TypeTag: typeTag, TypeName: typeName, Size: size, Ptr: ptr}

	d.dispatchEvent(entrySourcePlugin, entrySourceInterface, 0, ptr, size)

	if mismatch {
		return 1
	}
	return 0
}

// CallPlugin implements the second public entry point: a
// synonymous event against the same rule store, under the caller's own
// source identity. Returns 0 on success, -1 if no rule matched or
// every matched rule's application failed.
func (d *Dispatcher) CallPlugin(srcPlugin, srcIface string, paramIndex int, valuePtr uintptr) int32 {
	outcome := d.dispatchEvent(srcPlugin, srcIface, paramIndex, valuePtr, 0)
	if outcome.succeeded {
		return 0
	}
	return -1
}

// outcome summarizes one call to dispatchEvent, used only by CallPlugin
// to compute its return code; the recursive return-value re-routing
// triggered from invocation ignores it.
type outcome struct {
	succeeded bool
}

// dispatchEvent runs the rule application order for one source
// event, guarded by the reentry stack and soft depth warning.
func (d *Dispatcher) dispatchEvent(srcPlugin, srcIface string, param int, valuePtr uintptr, valueSize uint64) outcome {
	p := pair{plugin: srcPlugin, iface: srcIface}
	for _, a := range d.ancestors {
		if a == p {
			rtlog.Warn("dispatch reentry refused: pair already on ancestor stack",
				zap.String("plugin", srcPlugin), zap.String("interface", srcIface))
			return outcome{}
		}
	}

	if d.depth == 0 {
		d.correlationID = ""
	}
	d.depth++
	if d.depth > softDepthThreshold {
		if d.correlationID == "" {
			d.correlationID = uuid.NewString()
		}
		rtlog.Warn("dispatch recursion depth exceeds soft threshold",
			zap.Int("depth", d.depth),
			zap.String("correlation_id", d.correlationID))
	}
	d.ancestors = pushAncestor(d.ancestors, p)
	defer func() {
		d.ancestors = d.ancestors[:len(d.ancestors)-1]
		d.depth--
	}()

	positions := d.Store.FindRules(srcPlugin, srcIface, param)
	if len(positions) == 0 {
		return outcome{}
	}

	var broadcastLike, unicast []int
	for _, pos := range positions {
		r := d.Store.At(pos)
		if r.Mode == abi.ModeUnicast {
			unicast = append(unicast, pos)
		} else {
			broadcastLike = append(broadcastLike, pos)
		}
	}

	succeeded := false

	for _, pos := range broadcastLike {
		r := d.Store.At(pos)
		if r.Mode == abi.ModeMulticast && r.MulticastGroup == "" {
			continue
		}
		if d.applyRule(r, valuePtr, valueSize) {
			succeeded = true
		}
	}

	for i, pos := range unicast {
		r := d.Store.At(pos)
		if d.applyRule(r, valuePtr, valueSize) {
			succeeded = true
		}

		dup := false
		for j := i + 1; j < len(unicast); j++ {
			other := d.Store.At(unicast[j])
			if other.Target.Plugin == r.Target.Plugin &&
				other.Target.Interface == r.Target.Interface &&
				other.Target.Param == r.Target.Param {
				dup = true
				break
			}
		}
		if dup {
			break
		}
	}

	return outcome{succeeded: succeeded}
}

func pushAncestor(stack []pair, p pair) []pair {
	extended := make([]pair, 0, len(stack)+1)
	extended = append(extended, stack...)
	extended = append(extended, p)
	if len(extended) > maxAncestorStack {
		extended = extended[len(extended)-maxAncestorStack:]
	}
	return extended
}

// ptrAt reads n little-endian bytes starting at addr into a uint64,
// used for scalar coercion and condition evaluation over a caller's raw
// address. addr is assumed to point at real memory the
// caller owns — this package never allocates or frees it.
func ptrAt(addr uintptr, n int) uint64 {
	if addr == 0 || n <= 0 || n > 8 {
		return 0
	}
	var v uint64
	base := (*[8]byte)(unsafe.Pointer(addr))
	for i := 0; i < n; i++ {
		v |= uint64(base[i]) << (8 * i)
	}
	return v
}
