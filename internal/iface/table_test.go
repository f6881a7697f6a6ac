package iface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"
)

type fakeResolver struct {
	calls int
	sig   Signature
	err   error
}

func (f *fakeResolver) Resolve(pluginName, pluginPath, ifaceName string) (Signature, error) {
	f.calls++
	return f.sig, f.err
}

func TestGetOrCreateResolvesOnlyOnce(t *testing.T) {
	r := &fakeResolver{sig: Signature{ParamTags: []abi.Tag{abi.TagInt32, abi.TagInt32}}}
	tbl := New(r, 0)

	row1, err := tbl.GetOrCreate("P", "/p.so", "I")
	require.NoError(t, err)
	row2, err := tbl.GetOrCreate("P", "/p.so", "I")
	require.NoError(t, err)

	assert.Same(t, row1, row2)
	assert.Equal(t, 1, r.calls)
	assert.Len(t, row1.Params, 2)
}

func TestAllReadyFixedArity(t *testing.T) {
	row := &Row{Signature: Signature{ParamTags: []abi.Tag{abi.TagInt32, abi.TagInt32}}}
	row.Params = make([]Param, 2)
	assert.False(t, row.AllReady())

	row.Params[0].Ready = true
	assert.False(t, row.AllReady())

	row.Params[1].Ready = true
	assert.True(t, row.AllReady())
}

func TestAllReadyVariadicUsesMinParamCount(t *testing.T) {
	row := &Row{Signature: Signature{Variadic: true, MinParamCount: 2}}
	row.Params = make([]Param, 3)
	row.Params[0].Ready = true
	assert.False(t, row.AllReady())

	row.Params[1].Ready = true
	assert.True(t, row.AllReady(), "variadic rows only require MinParamCount, not every slot")
}

func TestEnsureParamSlotGrows(t *testing.T) {
	row := &Row{Signature: Signature{Variadic: true, MinParamCount: 1}}
	row.EnsureParamSlot(3)
	assert.Len(t, row.Params, 4)
	assert.Equal(t, abi.TagVariadic, row.Params[3].Tag)
}

func TestResetClearsReadinessButKeepsSignature(t *testing.T) {
	row := &Row{Signature: Signature{ParamTags: []abi.Tag{abi.TagInt32}}}
	row.Params = []Param{{Ready: true, HasCost: true}}
	row.Reset()
	assert.False(t, row.Params[0].Ready)
	assert.False(t, row.Params[0].HasCost)
	assert.Len(t, row.Signature.ParamTags, 1, "Reset must not touch the resolved signature")
}
