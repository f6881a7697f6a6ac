package nxpt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerMarkIsIdempotent(t *testing.T) {
	tr := New()
	tr.Mark("PluginA", "/plugins/a.nxpt")
	tr.Mark("PluginA", "/plugins/a-again.nxpt")

	path, ok := tr.Loaded("PluginA")
	assert.True(t, ok)
	assert.Equal(t, "/plugins/a.nxpt", path, "second Mark for the same plugin must be a no-op")
	assert.Equal(t, 1, tr.Len())
}

func TestTrackerLoadedReportsFalseForUnknown(t *testing.T) {
	tr := New()
	_, ok := tr.Loaded("Nobody")
	assert.False(t, ok)
}

func TestTrackerDistinctPlugins(t *testing.T) {
	tr := New()
	tr.Mark("A", "/a.nxpt")
	tr.Mark("B", "/b.nxpt")
	assert.Equal(t, 2, tr.Len())
}
