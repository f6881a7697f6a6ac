package ruleset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyHashStable(t *testing.T) {
	a := KeyHash("pluginA", "ifaceX", 0)
	b := KeyHash("pluginA", "ifaceX", 0)
	assert.Equal(t, a, b, "hashing the same key twice must be stable")

	c := KeyHash("pluginA", "ifaceX", 1)
	assert.NotEqual(t, a, c, "distinct param index must hash differently")
}

func TestIndexLookupSurvivesGrowth(t *testing.T) {
	var rules []Rule
	for i := 0; i < 200; i++ {
		rules = append(rules, Rule{
			Source:  Source{Plugin: "p", Interface: "i", Param: i},
			Enabled: true,
		})
	}
	idx := rebuildIndex(rules)

	for i := 0; i < 200; i++ {
		got := idx.lookup(rules, "p", "i", i)
		assert.Len(t, got, 1)
		assert.Equal(t, i, got[0])
	}

	assert.Empty(t, idx.lookup(rules, "p", "i", 999))
}

func TestIndexLookupFallsBackWhenEmpty(t *testing.T) {
	rules := []Rule{{Source: Source{Plugin: "p", Interface: "i", Param: 0}, Enabled: true}}
	got := linearScan(rules, "p", "i", 0)
	assert.Len(t, got, 1)
}

func TestStoreVerifyIndexSoundness(t *testing.T) {
	s := New(0)
	s.rules = []Rule{
		{Source: Source{Plugin: "a", Interface: "b", Param: 0}, Enabled: true},
		{Source: Source{Plugin: "c", Interface: "d", Param: 1}, Enabled: true},
	}
	s.rebuild()
	assert.NoError(t, s.VerifyIndexSoundness())
}
