package dispatch

import (
	"math"
	"strconv"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/pack"
)

// coerceValue translates a source event's raw value
// into the pack.Slot form the target parameter's declared tag expects.
func coerceValue(tag abi.Tag, valuePtr uintptr, valueSize uint64) pack.Slot {
	switch tag {
	case abi.TagInt32:
		return pack.NewScalar(tag, ptrAt(valuePtr, 4), 4)
	case abi.TagInt64:
		return pack.NewScalar(tag, ptrAt(valuePtr, 8), 8)
	case abi.TagChar:
		return pack.NewScalar(tag, ptrAt(valuePtr, 1), 1)
	case abi.TagFloat:
		return pack.NewScalar(tag, ptrAt(valuePtr, 4), 4)
	case abi.TagDouble:
		return pack.NewScalar(tag, ptrAt(valuePtr, 8), 8)
	case abi.TagPointer, abi.TagString:
		return pack.NewPointer(tag, valuePtr, valueSize)
	case abi.TagVariadic, abi.TagAny, abi.TagUnknown:
		if valueSize > 0 && valueSize <= 8 {
			return pack.NewScalar(abi.TagInt64, ptrAt(valuePtr, int(valueSize)), 8)
		}
		return pack.NewPointer(tag, valuePtr, valueSize)
	default:
		return pack.NewPointer(tag, valuePtr, valueSize)
	}
}

// coerceConstant handles a rule's literal-constant target instead:
// when a rule supplies a literal TargetConstant, parse it according to
// the target parameter's declared tag instead of reading the source
// event's pointer.
func coerceConstant(tag abi.Tag, literal string) pack.Slot {
	switch tag {
	case abi.TagInt32:
		n, _ := strconv.ParseInt(literal, 10, 32)
		return pack.NewScalar(tag, uint64(uint32(int32(n))), 4)
	case abi.TagInt64, abi.TagVariadic, abi.TagAny, abi.TagUnknown:
		n, _ := strconv.ParseInt(literal, 10, 64)
		return pack.NewScalar(abi.TagInt64, uint64(n), 8)
	case abi.TagChar:
		n, _ := strconv.ParseInt(literal, 10, 8)
		return pack.NewScalar(tag, uint64(uint8(n)), 1)
	case abi.TagFloat:
		f, _ := strconv.ParseFloat(literal, 32)
		return pack.NewScalar(tag, uint64(math.Float32bits(float32(f))), 4)
	case abi.TagDouble:
		f, _ := strconv.ParseFloat(literal, 64)
		return pack.NewScalar(tag, math.Float64bits(f), 8)
	default:
		// pointer/string constants have no meaningful literal encoding
		// here; fall back to a zeroed slot of the declared tag.
		return pack.Slot{Tag: tag}
	}
}
