package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"
)

func TestIndexOf(t *testing.T) {
	assert.Equal(t, 0, IndexOf("TransferPointer"))
	assert.Equal(t, 1, IndexOf("CallPlugin"))
	assert.Equal(t, -1, IndexOf("Nonexistent"))
}

func TestParamTag(t *testing.T) {
	assert.Equal(t, abi.TagPointer, ParamTag(0, 0))
	assert.Equal(t, abi.TagInt64, ParamTag(0, 3))
	assert.Equal(t, abi.TagUnknown, ParamTag(0, 99))
	assert.Equal(t, abi.TagUnknown, ParamTag(99, 0))
}
