// Package pack implements the parameter pack and its marshaller:
// a self-contained, relocation-safe packet of typed arguments that any
// callee can decode through a stable layout.
package pack

import (
	"unsafe"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/errkind"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rterr"
)

// MaxCount is the largest parameter count a pack may declare.
const MaxCount = 256

// Slot is the in-memory form of one parameter value.
type Slot struct {
	Tag  abi.Tag
	Size uint64

	// Scalar holds the raw 8-byte inline payload for value types that
	// fit inline (int32, int64, float, double, char, and widened
	// variadic/any/unknown).
	Scalar [8]byte

	// Owned holds a pack-owned copy of by-reference data whose
	// declared size exceeds 8 bytes and is not a pointer/string tag —
	// nil unless a copy was made.
	Owned []byte

	// Alias is the caller-supplied address for pointer/string tags, or
	// the non-owning fallback address used when a by-value copy could
	// not be allocated.
	Alias uintptr
}

// Pack is the in-memory parameter pack: a count plus a slot array.
type Pack struct {
	Slots []Slot
}

// alloc is an injectable allocator seam used only to exercise the
// non-owning fallback in tests; production code always uses the
// default, which never fails.
var alloc = func(n int) ([]byte, bool) {
	return make([]byte, n), true
}

// NewScalar builds a Slot for an inline scalar tag (int32/int64/
// float/double/char) from its raw little-endian bit pattern.
func NewScalar(tag abi.Tag, bits uint64, size uint64) Slot {
	s := Slot{Tag: tag, Size: size}
	putLE(s.Scalar[:], bits)
	return s
}

// NewPointer builds a Slot for pointer/string tags, storing the
// caller's address verbatim.
func NewPointer(tag abi.Tag, addr uintptr, size uint64) Slot {
	return Slot{Tag: tag, Size: size, Alias: addr}
}

// NewByValue builds a Slot that owns a copy of data. If the allocator seam
// reports failure, it falls back to aliasing data's address verbatim
// and zeroes the declared size to mark the slot non-owning — the
// documented weakening of ownership in that fallback case.
func NewByValue(tag abi.Tag, data []byte, addrIfFallback uintptr) Slot {
	if len(data) == 0 {
		return Slot{Tag: tag, Size: 0}
	}
	buf, ok := alloc(len(data))
	if !ok {
		return Slot{Tag: tag, Size: 0, Alias: addrIfFallback}
	}
	copy(buf, data)
	return Slot{Tag: tag, Size: uint64(len(data)), Owned: buf}
}

// New builds a Pack from the given slots, validating it.
func New(slots []Slot) (*Pack, error) {
	p := &Pack{Slots: slots}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks a pack's invariants: count in [0,256], a
// non-null slot array when count > 0, and every slot's tag within the
// closed set.
func Validate(p *Pack) error {
	if p == nil {
		return rterr.New(errkind.BadArg, "nil pack")
	}
	if len(p.Slots) < 0 || len(p.Slots) > MaxCount {
		return rterr.Newf(errkind.Overflow, "pack count %d out of range [0,%d]", len(p.Slots), MaxCount)
	}
	if len(p.Slots) > 0 && p.Slots == nil {
		return rterr.New(errkind.BadArg, "pack has positive count but nil slot array")
	}
	for i, s := range p.Slots {
		if !s.Tag.Valid() {
			return rterr.Newf(errkind.BadArg, "slot %d has invalid tag %d", i, s.Tag)
		}
	}
	return nil
}

func putLE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func getLE(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

// Serialize lays the pack out into a single contiguous block matching
// the wire layout: header, then fixed-stride slot array, then a
// trailing region holding copies of any owned by-value payload. Exactly
// one allocation backs the returned block.
//
// Each slot whose payload lives in the trailing region has its payload
// field rewritten to the block-relative absolute address of its copy,
// so the callee does not need to fix it up.
func Serialize(p *Pack) ([]byte, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	n := len(p.Slots)
	headerAndSlots := int(abi.HeaderStride) + n*int(abi.SlotStride)

	trailingOffsets := make([]int, n)
	trailingSize := 0
	for i, s := range p.Slots {
		if s.Owned != nil {
			trailingOffsets[i] = headerAndSlots + trailingSize
			trailingSize += len(s.Owned)
		}
	}

	block := make([]byte, headerAndSlots+trailingSize)

	base := uintptr(unsafe.Pointer(&block[0]))
	putLE(block[0:8], uint64(int64(n)))
	putLE(block[8:16], uint64(base)+uint64(abi.HeaderStride))

	for i, s := range p.Slots {
		off := int(abi.HeaderStride) + i*int(abi.SlotStride)
		slotBuf := block[off : off+int(abi.SlotStride)]
		putLE(slotBuf[0:4], uint64(s.Tag))
		putLE(slotBuf[4:8], 0)
		putLE(slotBuf[8:16], s.Size)

		switch {
		case s.Owned != nil:
			copy(block[trailingOffsets[i]:], s.Owned)
			addr := base + uintptr(trailingOffsets[i])
			putLE(slotBuf[16:24], uint64(addr))
		case s.Alias != 0:
			putLE(slotBuf[16:24], uint64(s.Alias))
		default:
			putLE(slotBuf[16:24], getLE(s.Scalar[:]))
		}
	}

	return block, nil
}

// Deserialize decodes an existing serialized block: if the embedded
// slot-array pointer is null/zero it is recomputed from the block's
// base address; count is bounds-checked; the slots are decoded back
// into Go-native Slot values. The result is a freshly allocated Pack
// holding copies of the slot data, not a view over block.
func Deserialize(block []byte) (*Pack, error) {
	if len(block) < int(abi.HeaderStride) {
		return nil, rterr.New(errkind.BadArg, "block too small for pack header")
	}

	count := int64(getLE(block[0:8]))
	if count < 0 || count > MaxCount {
		return nil, rterr.Newf(errkind.Overflow, "deserialized pack count %d out of range", count)
	}

	slotArrayPtr := getLE(block[8:16])
	base := uintptr(unsafe.Pointer(&block[0]))
	if slotArrayPtr == 0 {
		slotArrayPtr = uint64(base) + uint64(abi.HeaderStride)
	}

	n := int(count)
	need := int(abi.HeaderStride) + n*int(abi.SlotStride)
	if len(block) < need {
		return nil, rterr.Newf(errkind.BadArg, "block too small for %d slots", n)
	}

	slots := make([]Slot, n)
	for i := 0; i < n; i++ {
		off := int(abi.HeaderStride) + i*int(abi.SlotStride)
		slotBuf := block[off : off+int(abi.SlotStride)]
		tag := abi.Tag(getLE(slotBuf[0:4]) & 0xffffffff)
		size := getLE(slotBuf[8:16])
		payload := getLE(slotBuf[16:24])

		s := Slot{Tag: tag, Size: size}
		switch {
		case tag == abi.TagPointer || tag == abi.TagString:
			s.Alias = uintptr(payload)
		case size > 8:
			// pointer, string, variadic, any, and unknown slots may all
			// carry an aliased payload above the inline width; a
			// widened variadic/any/unknown value is indistinguishable
			// from a by-value trailing copy by tag alone, so settle it
			// by address: a payload that actually falls inside this
			// block is a trailing copy made by Serialize, anything else
			// is the caller's own address aliased verbatim.
			relOff := int64(payload) - int64(base)
			if relOff >= 0 && relOff+int64(size) <= int64(len(block)) {
				s.Owned = append([]byte(nil), block[relOff:relOff+int64(size)]...)
			} else {
				s.Alias = uintptr(payload)
			}
		default:
			putLE(s.Scalar[:], payload)
		}
		slots[i] = s
	}

	return &Pack{Slots: slots}, nil
}
