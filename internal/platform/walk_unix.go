//go:build unix

package platform

import (
	"io/fs"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// init wires a unix.Lstat-driven symlink guard into the directory
// walker. Symlinked directories
// are skipped entirely; symlinked files are skipped rather than
// treated as binaries of uncertain identity.
func init() {
	walkDir = func(root string, fn func(path string, d fs.DirEntry) error) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			var st unix.Stat_t
			if lerr := unix.Lstat(path, &st); lerr == nil && st.Mode&unix.S_IFMT == unix.S_IFLNK {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			return fn(path, d)
		})
	}
}
