package dispatch

import "github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"

// evalCondition evaluates a rule's condition
// against the source event's raw value pointer, interpreting it as an
// int pointer where the predicate requires a numeric comparison.
func evalCondition(cond abi.Condition, valuePtr uintptr) bool {
	switch cond {
	case abi.ConditionNone:
		return true
	case abi.ConditionNotNull:
		return valuePtr != 0
	case abi.ConditionNull:
		return valuePtr == 0
	case abi.ConditionGTZero, abi.ConditionLTZero, abi.ConditionEQZero, abi.ConditionNEZero:
		if valuePtr == 0 {
			return false
		}
		v := int32(ptrAt(valuePtr, 4))
		switch cond {
		case abi.ConditionGTZero:
			return v > 0
		case abi.ConditionLTZero:
			return v < 0
		case abi.ConditionEQZero:
			return v == 0
		case abi.ConditionNEZero:
			return v != 0
		}
	}
	return true
}
