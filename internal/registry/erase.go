package registry

import (
	"io"
	"os"
)

// eraseWriteChunk bounds how much zero data eraseBlob writes per iteration,
// keeping the overwrite O(1) in memory regardless of blob size.
const eraseWriteChunk = 1 << 20 // 1 MiB

// eraseBlob implements the anti-forensic erasure of spec §4.3: "before
// unlink, the blob file is overwritten end-to-end with zeros, then
// fsynced. After unlink, the in-memory key is wiped." (Key wiping happens
// in the caller, destroyLocked, immediately after this returns.)
//
// A missing file is not an error: destroy is idempotent and may race a
// prior destroy attempt that already completed the unlink.
func eraseBlob(path string) error {
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return err
	}

	zeros := make([]byte, eraseWriteChunk)
	var written int64
	for written < size {
		n := eraseWriteChunk
		if remaining := size - written; remaining < int64(n) {
			n = int(remaining)
		}
		if _, err := f.Write(zeros[:n]); err != nil {
			f.Close()
			return err
		}
		written += int64(n)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
