package dispatch

import (
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/iface"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/ruleset"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/validate"
)

// fakeResolver answers every target with a fixed signature looked up by
// interface name, so tests can describe a handful of target shapes
// without a real compiled plugin.
type fakeResolver struct {
	sigs map[string]iface.Signature
}

func (f *fakeResolver) Resolve(pluginName, pluginPath, ifaceName string) (iface.Signature, error) {
	sig, ok := f.sigs[ifaceName]
	if !ok {
		return iface.Signature{}, assertErr{ifaceName}
	}
	return sig, nil
}

type assertErr struct{ name string }

func (e assertErr) Error() string { return "no such interface: " + e.name }

// fakeInvoker records every call it receives and returns a fixed value.
type fakeInvoker struct {
	integerCalls int
	lastPackPtr  uintptr
}

func (f *fakeInvoker) InvokeInteger(fn, packPtr uintptr) int64 {
	f.integerCalls++
	f.lastPackPtr = packPtr
	return 0
}
func (f *fakeInvoker) InvokeFloat(fn, packPtr uintptr) float32        { return 0 }
func (f *fakeInvoker) InvokeDouble(fn, packPtr uintptr) float64       { return 0 }
func (f *fakeInvoker) InvokeStructSmall(fn, packPtr, outPtr uintptr)  {}
func (f *fakeInvoker) InvokeStructLarge(fn, packPtr, outPtr uintptr) {}

func newTestDispatcher(t *testing.T, ruleFileContent string, sigs map[string]iface.Signature) (*Dispatcher, *fakeInvoker) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.nxpt")
	require.NoError(t, os.WriteFile(path, []byte(ruleFileContent), 0o644))

	store := ruleset.New(0)
	_, err := store.LoadRules(path)
	require.NoError(t, err)

	table := iface.New(&fakeResolver{sigs: sigs}, 0)
	invoker := &fakeInvoker{}
	validator := validate.New(nil, nil, validate.NewIgnoreList(nil), false)
	return New(store, table, invoker, validator), invoker
}

func TestCallPluginPassThrough(t *testing.T) {
	d, invoker := newTestDispatcher(t, `
[TransferRule_0]
SourcePlugin=Source
SourceInterface=Emit
SourceParamIndex=0
TargetPlugin=Target
TargetInterface=Sink
TargetParamIndex=0
TransferMode=unicast
Enabled=true
`, map[string]iface.Signature{
		"Sink": {ParamTags: []abi.Tag{abi.TagInt32}, ReturnClass: abi.ReturnInteger, ReturnSize: 4},
	})

	var value int32 = 42
	rc := d.CallPlugin("Source", "Emit", 0, uintptr(unsafe.Pointer(&value)))
	assert.Equal(t, int32(0), rc)
	assert.Equal(t, 1, invoker.integerCalls)
}

func TestCallPluginNoRuleMatchedFails(t *testing.T) {
	d, _ := newTestDispatcher(t, `
[TransferRule_0]
SourcePlugin=Other
SourceInterface=Emit
TargetPlugin=Target
TargetInterface=Sink
Enabled=true
`, map[string]iface.Signature{
		"Sink": {ParamTags: []abi.Tag{abi.TagInt32}, ReturnClass: abi.ReturnInteger},
	})

	var value int32 = 1
	rc := d.CallPlugin("Source", "Emit", 0, uintptr(unsafe.Pointer(&value)))
	assert.Equal(t, int32(-1), rc)
}

func TestCallPluginConditionGateRejectsNull(t *testing.T) {
	d, invoker := newTestDispatcher(t, `
[TransferRule_0]
SourcePlugin=Source
SourceInterface=Emit
SourceParamIndex=0
TargetPlugin=Target
TargetInterface=Sink
TargetParamIndex=0
TransferMode=unicast
Condition=not_null
Enabled=true
`, map[string]iface.Signature{
		"Sink": {ParamTags: []abi.Tag{abi.TagPointer}, ReturnClass: abi.ReturnInteger},
	})

	rc := d.CallPlugin("Source", "Emit", 0, 0)
	assert.Equal(t, int32(-1), rc)
	assert.Equal(t, 0, invoker.integerCalls)
}

func TestUnicastStopsAtFirstDuplicateTargetCollision(t *testing.T) {
	d, invoker := newTestDispatcher(t, `
[TransferRule_0]
SourcePlugin=Source
SourceInterface=Emit
SourceParamIndex=0
TargetPlugin=Target
TargetInterface=SinkA
TargetParamIndex=0
TransferMode=unicast
Enabled=true

[TransferRule_1]
SourcePlugin=Source
SourceInterface=Emit
SourceParamIndex=0
TargetPlugin=Target
TargetInterface=Sink
TargetParamIndex=0
TransferMode=unicast
Enabled=true

[TransferRule_2]
SourcePlugin=Source
SourceInterface=Emit
SourceParamIndex=0
TargetPlugin=Target
TargetInterface=Sink
TargetParamIndex=0
TransferMode=unicast
Enabled=true
`, map[string]iface.Signature{
		"SinkA": {ParamTags: []abi.Tag{abi.TagInt32}, ReturnClass: abi.ReturnInteger},
		"Sink":  {ParamTags: []abi.Tag{abi.TagInt32}, ReturnClass: abi.ReturnInteger},
	})

	var value int32 = 9
	d.CallPlugin("Source", "Emit", 0, uintptr(unsafe.Pointer(&value)))

	// Rule 0 (SinkA) applies, rule 1 (Sink) applies and is immediately
	// followed by a duplicate target (rule 2, also Sink) so dispatch
	// stops after rule 1 without ever applying rule 2 — two calls total.
	assert.Equal(t, 2, invoker.integerCalls)
}

func TestCallPluginRejectsMissingTargetParamIndexInsteadOfPanicking(t *testing.T) {
	d, invoker := newTestDispatcher(t, `
[TransferRule_0]
SourcePlugin=Source
SourceInterface=Emit
SourceParamIndex=0
TargetPlugin=Target
TargetInterface=Sink
TransferMode=unicast
Enabled=true
`, map[string]iface.Signature{
		"Sink": {ParamTags: []abi.Tag{abi.TagInt32}, ReturnClass: abi.ReturnInteger},
	})

	var value int32 = 1
	assert.NotPanics(t, func() {
		rc := d.CallPlugin("Source", "Emit", 0, uintptr(unsafe.Pointer(&value)))
		assert.Equal(t, int32(-1), rc)
	})
	assert.Equal(t, 0, invoker.integerCalls)
}

func TestDispatchReentryGuardRefusesSameAncestorPair(t *testing.T) {
	d, invoker := newTestDispatcher(t, `
[TransferRule_0]
SourcePlugin=Source
SourceInterface=Emit
SourceParamIndex=0
TargetPlugin=Source
TargetInterface=Emit
TargetParamIndex=0
TransferMode=unicast
Enabled=true
`, map[string]iface.Signature{
		"Emit": {ParamTags: []abi.Tag{abi.TagInt32}, ReturnClass: abi.ReturnInteger},
	})

	// A rule whose target loops straight back to its own source would
	// recurse forever without the ancestor-stack reentry guard; this
	// must return promptly instead.
	var value int32 = 1
	d.CallPlugin("Source", "Emit", 0, uintptr(unsafe.Pointer(&value)))
	assert.LessOrEqual(t, invoker.integerCalls, 1)
}
