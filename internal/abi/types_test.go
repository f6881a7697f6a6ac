package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagValid(t *testing.T) {
	assert.True(t, TagVoid.Valid())
	assert.True(t, TagUnknown.Valid())
	assert.False(t, Tag(TagUnknown+1).Valid())
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "int32", TagInt32.String())
	assert.Equal(t, "pointer", TagPointer.String())
	assert.Equal(t, "invalid", Tag(999).String())
}

func TestParseTransferMode(t *testing.T) {
	assert.Equal(t, ModeBroadcast, ParseTransferMode("Broadcast"))
	assert.Equal(t, ModeMulticast, ParseTransferMode("MULTICAST"))
	assert.Equal(t, ModeUnicast, ParseTransferMode("unicast"))
	assert.Equal(t, ModeUnicast, ParseTransferMode("garbage"))
}

func TestParseCondition(t *testing.T) {
	assert.Equal(t, ConditionNotNull, ParseCondition("not_null"))
	assert.Equal(t, ConditionGTZero, ParseCondition(">0"))
	assert.Equal(t, ConditionNone, ParseCondition(""))
	assert.Equal(t, ConditionNone, ParseCondition("garbage"))
}
