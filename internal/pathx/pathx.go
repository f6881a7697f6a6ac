// Package pathx derives the auxiliary file paths the routing engine
// needs from a plugin's binary path: its rule file, its validation
// side-file, and the ignore-list matching key. Factored out on its own
// because both the chain loader and the validation cache need the
// same derivations.
package pathx

import (
	"path/filepath"
	"strings"
)

// RuleFilePath derives a plugin's .nxpt rule-file path from its binary
// path by replacing the trailing extension, or appending .nxpt if the
// binary path has none.
func RuleFilePath(binaryPath string) string {
	return replaceOrAppendExt(binaryPath, ".nxpt")
}

// ValidationFilePath derives a plugin's .nxpv side-file path from its
// binary path the same way.
func ValidationFilePath(binaryPath string) string {
	return replaceOrAppendExt(binaryPath, ".nxpv")
}

func replaceOrAppendExt(path, newExt string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return path + newExt
	}
	return strings.TrimSuffix(path, ext) + newExt
}

// IgnoreKey normalises a binary path for ignore-list matching: all
// backslashes become forward slashes, and the key is the substring
// starting at "plugins/" (inclusive), or the whole normalised path if
// "plugins/" does not appear. This is a documented-fragile rule,
// preserved exactly: a path that never contains a "plugins/" segment
// is keyed on its whole normalised path, so it only matches an entry
// naming that exact path.
func IgnoreKey(path string) string {
	normalized := strings.ReplaceAll(path, `\`, "/")
	if idx := strings.Index(normalized, "plugins/"); idx >= 0 {
		return normalized[idx:]
	}
	return normalized
}
