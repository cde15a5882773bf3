// Package diskspace checks free space before a download is written.
package diskspace

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// DefaultSafetyMargin leaves 10% headroom over the payload size.
const DefaultSafetyMargin = 1.1

// InsufficientSpaceError indicates that there is not enough disk space available.
type InsufficientSpaceError struct {
	Path           string
	RequiredBytes  uint64
	AvailableBytes uint64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space in %s: need %s, have %s available",
		e.Path, humanize.Bytes(e.RequiredBytes), humanize.Bytes(e.AvailableBytes))
}

// Check returns an InsufficientSpaceError when dir's filesystem cannot hold
// required bytes times margin. When the filesystem cannot be queried (network
// mounts, virtual filesystems) it returns nil and lets the write fail on its
// own.
func Check(dir string, required int64, margin float64) error {
	if required <= 0 {
		return nil
	}
	if margin < 1 {
		margin = 1
	}

	avail, err := available(dir)
	if err != nil {
		return nil
	}

	need := uint64(float64(required) * margin)
	if avail < need {
		return &InsufficientSpaceError{Path: dir, RequiredBytes: need, AvailableBytes: avail}
	}
	return nil
}

// Available returns the bytes available to the current user on dir's
// filesystem, or 0 if unknown.
func Available(dir string) uint64 {
	avail, err := available(dir)
	if err != nil {
		return 0
	}
	return avail
}

// IsInsufficientSpace reports whether err is or wraps an InsufficientSpaceError.
func IsInsufficientSpace(err error) bool {
	var target *InsufficientSpaceError
	return errors.As(err, &target)
}
