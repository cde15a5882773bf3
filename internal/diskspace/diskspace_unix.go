//go:build unix

package diskspace

import "golang.org/x/sys/unix"

func available(dir string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, err
	}
	// Bavail counts blocks available to unprivileged users
	return uint64(stat.Bavail) * uint64(stat.Bsize), nil
}
