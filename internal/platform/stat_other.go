//go:build !unix

package platform

import "os"

func defaultStat(path string) (modTimeGetter, error) {
	return os.Stat(path)
}
