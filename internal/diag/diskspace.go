// Package diag implements the pre-flight checks SPEC_FULL §11 adds on top
// of the core drop lifecycle: a disk free-space check before accepting a
// send or receive, grounded on the teacher's gopsutil/v4 usage in its
// system metrics handlers (shirou/gopsutil/v4/disk).
package diag

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

// ErrInsufficientSpace is returned by CheckFreeSpace when the target
// filesystem cannot plausibly hold a blob of the given size. Exit code 2
// (cmd/ded) is reserved for this class of pre-flight failure.
type ErrInsufficientSpace struct {
	Path      string
	Required  uint64
	Available uint64
}

func (e *ErrInsufficientSpace) Error() string {
	return fmt.Sprintf("insufficient disk space at %s: need %d bytes, have %d", e.Path, e.Required, e.Available)
}

// marginFactor pads the required size: ciphertext is larger than plaintext
// by 16 bytes per chunk plus the 40-byte header, and the anti-forensic
// erase path briefly needs room to re-write the file it is destroying.
const marginFactor = 1.05

// CheckFreeSpace reports an error if dir's filesystem does not have enough
// free space to plausibly hold a blob of plaintextSize bytes.
func CheckFreeSpace(dir string, plaintextSize uint64) error {
	usage, err := disk.Usage(dir)
	if err != nil {
		return fmt.Errorf("diag: statfs %s: %w", dir, err)
	}

	required := uint64(float64(plaintextSize) * marginFactor)
	if usage.Free < required {
		return &ErrInsufficientSpace{Path: dir, Required: required, Available: usage.Free}
	}
	return nil
}
