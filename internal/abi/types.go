// Package abi defines the wire-stable types shared between the routing
// engine and every plugin it dispatches into: parameter tags, transfer
// modes, and the byte layout of a serialized parameter pack.
package abi

/*
#include <stdint.h>
#include <stddef.h>

// ParamTag mirrors the closed tag set a parameter pack slot may carry.
typedef enum {
	PT_TAG_VOID     = 0,
	PT_TAG_INT32    = 1,
	PT_TAG_INT64    = 2,
	PT_TAG_FLOAT    = 3,
	PT_TAG_DOUBLE   = 4,
	PT_TAG_CHAR     = 5,
	PT_TAG_POINTER  = 6,
	PT_TAG_STRING   = 7,
	PT_TAG_VARIADIC = 8,
	PT_TAG_ANY      = 9,
	PT_TAG_UNKNOWN  = 10,
} pt_tag_t;

// pt_slot_t is the fixed-stride record backing every parameter slot in a
// serialized pack: tag (4 bytes) + padding (4 bytes) + size (8 bytes) +
// 8-byte inline payload / pointer.
typedef struct {
	uint32_t tag;
	uint32_t _pad;
	uint64_t size;
	uint64_t payload;
} pt_slot_t;

// pt_pack_header_t is the leading block header: count followed by the
// (self-relative) address of the slot array.
typedef struct {
	int64_t    count;
	pt_slot_t* slots;
} pt_pack_header_t;
*/
import "C"

// Tag is the closed set of parameter value kinds a slot may carry.
type Tag uint32

const (
	TagVoid     Tag = C.PT_TAG_VOID
	TagInt32    Tag = C.PT_TAG_INT32
	TagInt64    Tag = C.PT_TAG_INT64
	TagFloat    Tag = C.PT_TAG_FLOAT
	TagDouble   Tag = C.PT_TAG_DOUBLE
	TagChar     Tag = C.PT_TAG_CHAR
	TagPointer  Tag = C.PT_TAG_POINTER
	TagString   Tag = C.PT_TAG_STRING
	TagVariadic Tag = C.PT_TAG_VARIADIC
	TagAny      Tag = C.PT_TAG_ANY
	TagUnknown  Tag = C.PT_TAG_UNKNOWN
)

// SlotStride is the fixed byte stride of one serialized parameter slot
// (tag + padding + size + payload), per the wire layout.
const SlotStride = C.sizeof_pt_slot_t

// HeaderStride is the byte size of the leading pack header (count +
// slot-array pointer) that precedes the slot array in a serialized block.
const HeaderStride = C.sizeof_pt_pack_header_t

// Valid reports whether t is a member of the closed tag set.
func (t Tag) Valid() bool {
	return t <= TagUnknown
}

func (t Tag) String() string {
	switch t {
	case TagVoid:
		return "void"
	case TagInt32:
		return "int32"
	case TagInt64:
		return "int64"
	case TagFloat:
		return "float"
	case TagDouble:
		return "double"
	case TagChar:
		return "char"
	case TagPointer:
		return "pointer"
	case TagString:
		return "string"
	case TagVariadic:
		return "variadic"
	case TagAny:
		return "any"
	case TagUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// TransferMode is a rule's fan-out discipline.
type TransferMode int

const (
	ModeUnicast TransferMode = iota
	ModeBroadcast
	ModeMulticast
)

func (m TransferMode) String() string {
	switch m {
	case ModeUnicast:
		return "unicast"
	case ModeBroadcast:
		return "broadcast"
	case ModeMulticast:
		return "multicast"
	default:
		return "unicast"
	}
}

// ParseTransferMode does case-insensitive parsing where
// anything unrecognised falls back to unicast.
func ParseTransferMode(s string) TransferMode {
	switch lower(s) {
	case "broadcast":
		return ModeBroadcast
	case "multicast":
		return ModeMulticast
	case "unicast":
		return ModeUnicast
	default:
		return ModeUnicast
	}
}

// Condition is the small predicate set a rule may gate on.
type Condition int

const (
	ConditionNone Condition = iota
	ConditionNotNull
	ConditionNull
	ConditionGTZero
	ConditionLTZero
	ConditionEQZero
	ConditionNEZero
)

// ParseCondition parses the textual condition keys. An
// unrecognised or empty string yields ConditionNone.
func ParseCondition(s string) Condition {
	switch s {
	case "not_null":
		return ConditionNotNull
	case "null":
		return ConditionNull
	case ">0":
		return ConditionGTZero
	case "<0":
		return ConditionLTZero
	case "==0":
		return ConditionEQZero
	case "!=0":
		return ConditionNEZero
	default:
		return ConditionNone
	}
}

// ReturnClass classifies a target function's return type for ABI
// dispatch purposes.
type ReturnClass int

const (
	ReturnInteger ReturnClass = iota
	ReturnFloat
	ReturnDouble
	ReturnStructSmall
	ReturnStructLarge
)

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
