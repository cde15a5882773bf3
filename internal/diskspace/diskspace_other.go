//go:build !unix && !windows

package diskspace

import "errors"

func available(string) (uint64, error) {
	return 0, errors.New("disk space query not supported on this platform")
}
