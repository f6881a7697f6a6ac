package ruleset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempRuleFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.nxpt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRulesBasic(t *testing.T) {
	path := writeTempRuleFile(t, `
[EntryPlugin]
PluginName=Host
PluginPath=/plugins/host.so

[TransferRule_0]
SourcePlugin=Host
SourceInterface=Emit
SourceParamIndex=0
TargetPlugin=Target
TargetInterface=Sink
TargetParamIndex=0
TransferMode=unicast
Enabled=true
`)

	s := New(0)
	added, err := s.LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, "Host", s.Entry.PluginName)

	matches := s.FindRules("Host", "Emit", 0)
	require.Len(t, matches, 1)
	assert.Equal(t, "Target", s.At(matches[0]).Target.Plugin)
}

func TestLoadRulesMissingFileIsNonFatal(t *testing.T) {
	s := New(0)
	added, err := s.LoadRules("/does/not/exist.nxpt")
	assert.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestLoadRulesDisabledRuleNeverMatches(t *testing.T) {
	path := writeTempRuleFile(t, `
[TransferRule_0]
SourcePlugin=A
SourceInterface=B
SourceParamIndex=0
TargetPlugin=C
TargetInterface=D
TargetParamIndex=0
Enabled=false
`)
	s := New(0)
	_, err := s.LoadRules(path)
	require.NoError(t, err)
	assert.Empty(t, s.FindRules("A", "B", 0))
}

func TestLoadRulesMissingSourceNeverMatchesButConsumesSlot(t *testing.T) {
	path := writeTempRuleFile(t, `
[TransferRule_0]
TargetPlugin=C
TargetInterface=D
Enabled=true
`)
	s := New(0)
	added, err := s.LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.At(0).HasSource())
	// a rule with no source fields never matches any real event.
	assert.Empty(t, s.FindRules("SomePlugin", "SomeInterface", 0))
}

func TestLoadRulesMergeDoesNotDropEitherRule(t *testing.T) {
	first := writeTempRuleFile(t, `
[TransferRule_0]
SourcePlugin=A
SourceInterface=B
TargetPlugin=C
TargetInterface=D
TargetParamIndex=0
Enabled=true
`)
	second := writeTempRuleFile(t, `
[TransferRule_0]
SourcePlugin=X
SourceInterface=Y
TargetPlugin=C
TargetInterface=D
TargetParamIndex=0
Enabled=true
`)

	s := New(0)
	_, err := s.LoadRulesMerge(first)
	require.NoError(t, err)
	_, err = s.LoadRulesMerge(second)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
}

func TestLoadRulesMergesEntryAcrossMultipleLoads(t *testing.T) {
	first := writeTempRuleFile(t, `
[EntryPlugin]
PluginName=Host
DisableInfoLog=true
IgnorePlugins=plugins/a.so
`)
	second := writeTempRuleFile(t, `
[EntryPlugin]
PluginName=OverriddenHost
EnableValidation=true
IgnorePlugins=plugins/b.so,plugins/a.so
`)

	s := New(0)
	_, err := s.LoadRules(first)
	require.NoError(t, err)
	_, err = s.LoadRules(second)
	require.NoError(t, err)

	assert.Equal(t, "OverriddenHost", s.Entry.PluginName, "a non-empty field in a later section overrides the earlier one")
	assert.True(t, s.Entry.DisableInfoLog, "boolean entry flags OR across sections rather than being overwritten")
	assert.True(t, s.Entry.EnableValidation)
	assert.Equal(t, []string{"plugins/a.so", "plugins/b.so", "plugins/a.so"}, s.Entry.IgnorePlugins,
		"IgnorePlugins accumulates across sections; de-duplication happens within a single section's list, not across merges")
}

func TestCachedPositionsTracksEnabledCacheSelfRules(t *testing.T) {
	path := writeTempRuleFile(t, `
[TransferRule_0]
SourcePlugin=A
SourceInterface=B
TargetPlugin=C
TargetInterface=D
Enabled=true
CacheSelf=true

[TransferRule_1]
SourcePlugin=A
SourceInterface=E
TargetPlugin=C
TargetInterface=F
Enabled=false
CacheSelf=true

[TransferRule_2]
SourcePlugin=A
SourceInterface=G
TargetPlugin=C
TargetInterface=H
Enabled=true
`)
	s := New(0)
	_, err := s.LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, []int{0}, s.CachedPositions(), "only the enabled CacheSelf rule is tracked")
	assert.Equal(t, 1, s.CachedCount())
}

func TestParseBool(t *testing.T) {
	cases := map[string]bool{
		"1": true, "true": true, "Yes": true, "ON": true,
		"0": false, "false": false, "no": false, "off": false,
	}
	for in, want := range cases {
		got, ok := ParseBool(in)
		assert.True(t, ok, "expected %q to be recognised", in)
		assert.Equal(t, want, got, "ParseBool(%q)", in)
	}

	_, ok := ParseBool("maybe")
	assert.False(t, ok)
}
