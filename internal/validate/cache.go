package validate

import (
	"go.uber.org/zap"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/errkind"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/iface"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/pathx"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rterr"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rtlog"
)

// Prober performs the actual probe call through the platform's
// trampolines: build an all-zero pack of the
// declared arity, serialize it, invoke through the trampoline for the
// declared return classification, and report whether the result should
// be treated as a failure ("any non-zero trampoline return").
type Prober interface {
	Probe(sig iface.Signature) (failed bool, err error)
}

// MtimeFS is the subset of the platform shim the validation cache
// needs: mtime lookups and sibling enumeration.
type MtimeFS interface {
	FileMtime(path string) (int64, error)
	FindBinariesUnder(dir string) ([]string, error)
}

// Cache implements the validation cache.
type Cache struct {
	fs       MtimeFS
	prober   Prober
	ignore   *IgnoreList
	enabled  bool
	deferred map[string]bool // sibling paths already given a deferred Valid=0 stub this process
}

// New creates a validation cache. enabled corresponds to the
// [EntryPlugin] EnableValidation flag; when false, Validate is a
// no-op that always reports "skip probe, assume valid" so normal
// dispatch proceeds.
func New(fs MtimeFS, prober Prober, ignore *IgnoreList, enabled bool) *Cache {
	return &Cache{fs: fs, prober: prober, ignore: ignore, enabled: enabled, deferred: make(map[string]bool)}
}

// Validate runs the validation procedure for a single target plugin
// binary and interface signature. Returns nil if validation is disabled, the
// binary is ignore-listed, the cache already has a fresh Valid=1 hit,
// or a fresh probe passes. Returns a probe_failed error otherwise.
func (c *Cache) Validate(pluginPath string, sig iface.Signature) error {
	if !c.enabled {
		return nil
	}
	if c.ignore.Contains(pluginPath) {
		return nil
	}

	c.stubSiblings(pluginPath)

	sidePath := pathx.ValidationFilePath(pluginPath)
	mtime, err := c.fs.FileMtime(pluginPath)
	if err != nil {
		return rterr.Wrapf(err, errkind.FileOpen, "statting %s for validation", pluginPath)
	}

	if sf, ok, _ := ReadSideFile(sidePath); ok && sf.Timestamp == mtime && sf.Valid {
		return nil
	}

	failed, err := c.prober.Probe(sig)
	if err != nil {
		rtlog.Error("validation probe errored", zap.String("path", pluginPath), zap.Error(err))
		WriteSideFile(sidePath, SideFile{Timestamp: mtime, Valid: false})
		return rterr.Wrapf(err, errkind.ProbeFailed, "probing %s", pluginPath)
	}
	if failed {
		WriteSideFile(sidePath, SideFile{Timestamp: mtime, Valid: false})
		return rterr.Newf(errkind.ProbeFailed, "validation probe failed for %s", pluginPath)
	}

	WriteSideFile(sidePath, SideFile{Timestamp: mtime, Valid: true})
	return nil
}

// stubSiblings enumerates the binaries under the target's directory
// without probing them: every one whose side-file is missing or stale
// gets a deferred Valid=0 stub written, once per process per sibling.
func (c *Cache) stubSiblings(pluginPath string) {
	dir := dirOf(pluginPath)
	siblings, err := c.fs.FindBinariesUnder(dir)
	if err != nil {
		rtlog.Warn("enumerating sibling binaries failed", zap.String("dir", dir), zap.Error(err))
		return
	}
	for _, sib := range siblings {
		if c.deferred[sib] {
			continue
		}
		c.deferred[sib] = true

		sidePath := pathx.ValidationFilePath(sib)
		mtime, err := c.fs.FileMtime(sib)
		if err != nil {
			continue
		}
		if sf, ok, _ := ReadSideFile(sidePath); ok && sf.Timestamp == mtime {
			continue
		}
		WriteSideFile(sidePath, SideFile{Timestamp: mtime, Valid: false})
	}
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[:i]
		}
	}
	return "."
}
