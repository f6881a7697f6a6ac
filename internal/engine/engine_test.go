package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/ruleset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadPopulatesEntryAndRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "host.nxpt")
	writeFile(t, path, `
[EntryPlugin]
PluginName=Host
PluginPath=`+filepath.Join(dir, "host.so")+`

[TransferRule_0]
SourcePlugin=Host
SourceInterface=Emit
TargetPlugin=Target
TargetInterface=Sink
Enabled=true
`)

	e, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Host", e.Store.Entry.PluginName)
	assert.Equal(t, 1, e.Store.Len())
}

func TestBootstrapNoEntryPluginIsNoOp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.nxpt")
	writeFile(t, path, "# nothing here\n")

	e, err := Load(path)
	require.NoError(t, err)
	assert.NoError(t, e.Bootstrap())
}

func TestBootstrapExplicitNxptPathOverridesDerivedRulePath(t *testing.T) {
	dir := t.TempDir()
	hostPath := filepath.Join(dir, "host.nxpt")
	overridePath := filepath.Join(dir, "override.nxpt")

	writeFile(t, hostPath, `
[EntryPlugin]
PluginName=Host
PluginPath=`+filepath.Join(dir, "host.so")+`
NxptPath=`+overridePath+`
`)
	writeFile(t, overridePath, `
[TransferRule_0]
SourcePlugin=Host
SourceInterface=Emit
TargetPlugin=Target
TargetInterface=Sink
Enabled=true
`)

	e, err := Load(hostPath)
	require.NoError(t, err)
	require.NoError(t, e.Bootstrap())

	_, loaded := e.Tracker.Loaded("Host")
	assert.True(t, loaded)
	assert.Equal(t, 1, e.Store.Len())
}

func TestNewBuildsEngineFromAlreadyParsedConfig(t *testing.T) {
	e := New(ruleset.EntryConfig{}, WithRuleCapacity(4), WithStateCapacity(4))
	assert.NotNil(t, e.Store)
	assert.NotNil(t, e.Dispatcher)
	assert.NoError(t, e.Bootstrap())
}
