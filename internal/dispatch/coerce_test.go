package dispatch

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"
)

func TestCoerceValueInt32(t *testing.T) {
	var v int32 = -7
	slot := coerceValue(abi.TagInt32, uintptr(unsafe.Pointer(&v)), 4)
	assert.Equal(t, abi.TagInt32, slot.Tag)
	assert.Equal(t, int32(-7), int32(ptrAt(uintptr(unsafe.Pointer(&v)), 4)))
	_ = slot
}

func TestCoerceValuePointerStoresAddressVerbatim(t *testing.T) {
	var v int32 = 1
	addr := uintptr(unsafe.Pointer(&v))
	slot := coerceValue(abi.TagPointer, addr, 4)
	assert.Equal(t, addr, slot.Alias)
	assert.Equal(t, uint64(4), slot.Size)
}

func TestCoerceValueVariadicWidensSmallPayload(t *testing.T) {
	var v int32 = 99
	slot := coerceValue(abi.TagAny, uintptr(unsafe.Pointer(&v)), 4)
	assert.Equal(t, abi.TagInt64, slot.Tag)
}

func TestCoerceConstantInt32(t *testing.T) {
	slot := coerceConstant(abi.TagInt32, "-42")
	assert.Equal(t, abi.TagInt32, slot.Tag)
	assert.Equal(t, uint64(4), slot.Size)
}

func TestCoerceConstantFloat(t *testing.T) {
	slot := coerceConstant(abi.TagFloat, "3.5")
	assert.Equal(t, abi.TagFloat, slot.Tag)
	assert.Equal(t, uint64(4), slot.Size)
}

func TestCoerceConstantPointerFallsBackToZeroedSlot(t *testing.T) {
	slot := coerceConstant(abi.TagPointer, "irrelevant")
	assert.Equal(t, abi.TagPointer, slot.Tag)
	assert.Equal(t, uintptr(0), slot.Alias)
}

func TestPtrAtNullReturnsZero(t *testing.T) {
	assert.Equal(t, uint64(0), ptrAt(0, 4))
}
