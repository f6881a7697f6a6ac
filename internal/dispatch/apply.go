package dispatch

import (
	"go.uber.org/zap"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/ruleset"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rtlog"
)

// applyRule runs the per-rule application procedure. It returns true
// when the rule's write was applied without error — a condition
// rejection or a variadic-index rejection returns false, matching the
// "no rule matched or all target calls failed" wording CallPlugin's
// return code is built from.
func (d *Dispatcher) applyRule(r *ruleset.Rule, valuePtr uintptr, valueSize uint64) bool {
	if !evalCondition(r.Condition, valuePtr) {
		return false
	}

	row, err := d.Table.GetOrCreate(r.Target.Plugin, r.Target.Path, r.Target.Interface)
	if err != nil {
		rtlog.Warn("failed to resolve target interface",
			zap.String("plugin", r.Target.Plugin),
			zap.String("interface", r.Target.Interface),
			zap.Error(err))
		return false
	}

	paramIdx := r.Target.Param
	if paramIdx < 0 {
		rtlog.Warn("target param index missing or negative, rejecting",
			zap.String("plugin", r.Target.Plugin),
			zap.String("interface", r.Target.Interface),
			zap.Int("param", paramIdx))
		return false
	}
	if row.Signature.Variadic && paramIdx < row.Signature.MinParamCount {
		rtlog.Warn("variadic target param index below min_param_count, rejecting",
			zap.String("plugin", r.Target.Plugin),
			zap.String("interface", r.Target.Interface),
			zap.Int("param", paramIdx))
		return false
	}

	row.EnsureParamSlot(paramIdx)

	if r.HasConstant {
		row.Params[paramIdx].Value = coerceConstant(row.Params[paramIdx].Tag, r.TargetConstant)
	} else {
		row.Params[paramIdx].Value = coerceValue(row.Params[paramIdx].Tag, valuePtr, valueSize)
	}
	row.Params[paramIdx].Ready = true
	row.Params[paramIdx].HasCost = true

	if !row.AllReady() {
		return true
	}

	if err := d.invokeRow(row, r.Target.Path); err != nil {
		rtlog.Warn("target invocation failed",
			zap.String("plugin", r.Target.Plugin),
			zap.String("interface", r.Target.Interface),
			zap.Error(err))
		return false
	}
	return true
}
