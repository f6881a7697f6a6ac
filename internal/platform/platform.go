// Package platform is the platform shim: load/close a shared library,
// resolve a symbol, stat a file's mtime, and enumerate sibling
// binaries under a directory. It is the one place OS-specific calls
// live; everything above it is portable Go.
package platform

import (
	"io/fs"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/errkind"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rterr"
)

// Handle is an opaque loaded-library handle.
type Handle uintptr

// BinaryExt is the shared-library extension this platform's shim looks
// for when enumerating sibling binaries.
func BinaryExt() string {
	if runtime.GOOS == "windows" {
		return ".dll"
	}
	if runtime.GOOS == "darwin" {
		return ".dylib"
	}
	return ".so"
}

// FileMtime returns path's modification time as seconds since the
// epoch.
func FileMtime(path string) (int64, error) {
	fi, err := osStat(path)
	if err != nil {
		return 0, rterr.Wrapf(err, errkind.FileOpen, "stat %s", path)
	}
	return fi.ModTime().Unix(), nil
}

// FindBinariesUnder recursively enumerates files under dir matching
// this platform's binary extension.
func FindBinariesUnder(dir string) ([]string, error) {
	var out []string
	ext := BinaryExt()
	err := walkDir(dir, func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ext {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, rterr.Wrapf(err, errkind.FileOpen, "enumerating binaries under %s", dir)
	}
	return out, nil
}

// walkDir and osStat are indirected through small vars so tests can
// substitute an in-memory filesystem without needing real binaries on
// disk.
var walkDir = func(root string, fn func(path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return fn(path, d)
	})
}

var osStatFn func(path string) (modTimeGetter, error)

type modTimeGetter interface {
	ModTime() time.Time
}

func osStat(path string) (modTimeGetter, error) {
	if osStatFn != nil {
		return osStatFn(path)
	}
	return defaultStat(path)
}
