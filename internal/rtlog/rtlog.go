// Package rtlog is the routing engine's logging façade. Every component
// logs through the package-level logger here rather than importing zap
// directly, mirroring the plugin.Logger pattern used for AIL plugin
// chains: a package variable that defaults to a no-op logger until the
// host wires a real one in.
package rtlog

import "go.uber.org/zap"

var logger *zap.Logger = zap.NewNop()
var infoDisabled bool

// SetLogger installs l as the process-wide logger. Passing nil restores
// the no-op default. Not safe to call concurrently with logging calls;
// intended to be set once during entrypoint glue initialization.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger = zap.NewNop()
		return
	}
	logger = l
}

// SetInfoDisabled implements the EntryPlugin section's DisableInfoLog
// flag: WARNING and ERROR still flow, INFO lines are dropped.
func SetInfoDisabled(disabled bool) { infoDisabled = disabled }

// L returns the current logger.
func L() *zap.Logger { return logger }

func Info(msg string, fields ...zap.Field) {
	if infoDisabled {
		return
	}
	logger.Info(msg, fields...)
}
func Warn(msg string, fields ...zap.Field)  { logger.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { logger.Error(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { logger.Debug(msg, fields...) }
