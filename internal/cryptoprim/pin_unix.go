//go:build linux || darwin || freebsd || openbsd || netbsd

package cryptoprim

import "golang.org/x/sys/unix"

// pinMemory best-effort mlocks buf so it is never swapped to disk. Failure
// is non-fatal: RAM pinning is defense in depth, not a correctness
// requirement, and unprivileged processes routinely hit RLIMIT_MEMLOCK.
func pinMemory(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	return unix.Mlock(buf) == nil
}

func unpinMemory(buf []byte) {
	if len(buf) == 0 {
		return
	}
	_ = unix.Munlock(buf)
}
