// Package validate implements the validation cache and its on-disk
// side-file format, plus the ignore-list plumbing that exempts known
// binaries from probing.
package validate

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/errkind"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rterr"
)

// SideFile is the two-line .nxpv format:
// "Timestamp=<int>\nValid=<0|1>\n".
type SideFile struct {
	Timestamp int64
	Valid     bool
}

// ReadSideFile parses path. A missing or malformed file returns
// (SideFile{}, false, nil) — absence is a normal "not yet validated"
// state, not an error.
func ReadSideFile(path string) (SideFile, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return SideFile{}, false, nil
	}
	defer f.Close()

	var sf SideFile
	haveTimestamp, haveValid := false, false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := line[:eq]
		value := strings.TrimSpace(line[eq+1:])
		switch key {
		case "Timestamp":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return SideFile{}, false, nil
			}
			sf.Timestamp = n
			haveTimestamp = true
		case "Valid":
			sf.Valid = value == "1"
			haveValid = true
		}
	}
	if !haveTimestamp || !haveValid {
		return SideFile{}, false, nil
	}
	return sf, true, nil
}

// WriteSideFile writes path with sf's contents.
func WriteSideFile(path string, sf SideFile) error {
	validBit := 0
	if sf.Valid {
		validBit = 1
	}
	content := fmt.Sprintf("Timestamp=%d\nValid=%d\n", sf.Timestamp, validBit)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return rterr.Wrapf(err, errkind.FileOpen, "writing side-file %s", path)
	}
	return nil
}
