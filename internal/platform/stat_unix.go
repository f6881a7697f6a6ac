//go:build unix

package platform

import (
	"time"

	"golang.org/x/sys/unix"
)

// unixModTime adapts a raw unix.Stat_t mtime into modTimeGetter without
// pulling in os.FileInfo's wider surface.
type unixModTime struct {
	sec  int64
	nsec int64
}

func (m unixModTime) ModTime() time.Time { return time.Unix(m.sec, m.nsec) }

func defaultStat(path string) (modTimeGetter, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return nil, err
	}
	return unixModTime{sec: int64(st.Mtim.Sec), nsec: int64(st.Mtim.Nsec)}, nil
}
