package codec

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/Karmanya03/Deadrop/internal/cryptoprim"
)

// EncodeKnownSize writes the full blob (header + chunk frames) to w, given
// that originalSize (the plaintext length) is already known — the common
// case for a file on disk or an in-memory buffer. total_chunks is computed
// up front so the header can be written before any chunk, matching the
// wire layout of spec §3.
func EncodeKnownSize(w io.Writer, r io.Reader, key, baseNonce []byte, originalSize int64) error {
	if originalSize < 0 {
		return errors.New("codec: negative originalSize")
	}

	total := expectedChunkCount(uint64(originalSize))

	h := Header{TotalChunks: total, OriginalSize: uint64(originalSize)}
	copy(h.BaseNonce[:], baseNonce)
	if _, err := w.Write(h.Encode()); err != nil {
		return err
	}

	written, plaintextBytes, err := writeChunks(w, r, key, baseNonce)
	if err != nil {
		return err
	}
	if written != total || plaintextBytes != uint64(originalSize) {
		return errors.New("codec: input did not match declared originalSize")
	}
	return nil
}

// EncodeSeekable writes a placeholder header to ws, streams chunks while
// reading r to exhaustion (so neither the plaintext's size nor its chunk
// count need be known up front), then seeks back and patches the header
// with the true total_chunks and original_size. The sender uses this path
// for "-" (stdin) input, where the plaintext length isn't known until EOF;
// sources with a known size go through EncodeKnownSize.
func EncodeSeekable(ws io.WriteSeeker, r io.Reader, key, baseNonce []byte) error {
	var placeholder Header
	copy(placeholder.BaseNonce[:], baseNonce)
	if _, err := ws.Write(placeholder.Encode()); err != nil {
		return err
	}

	total, originalSize, err := writeChunks(ws, r, key, baseNonce)
	if err != nil {
		return err
	}

	if _, err := ws.Seek(0, io.SeekStart); err != nil {
		return err
	}
	h := Header{BaseNonce: placeholder.BaseNonce, TotalChunks: total, OriginalSize: originalSize}
	if _, err := ws.Write(h.Encode()); err != nil {
		return err
	}
	_, err = ws.Seek(0, io.SeekEnd)
	return err
}

func expectedChunkCount(size uint64) uint64 {
	if size == 0 {
		return 0
	}
	return (size + ChunkSize - 1) / ChunkSize
}

// writeChunks reads plaintext from r in ChunkSize windows, sealing and
// emitting each as a length-prefixed frame, until EOF. It never buffers
// more than one chunk of plaintext or ciphertext at a time.
func writeChunks(w io.Writer, r io.Reader, key, baseNonce []byte) (chunks uint64, total uint64, err error) {
	buf := make([]byte, ChunkSize)
	nonce := make([]byte, NonceSize)
	lenBuf := make([]byte, 4)

	var index uint64
	for {
		n, readErr := io.ReadFull(r, buf)
		if n > 0 {
			cryptoprim.DeriveChunkNonceInPlace(baseNonce, index, nonce)
			ct, sealErr := cryptoprim.Seal(nil, key, nonce, buf[:n])
			if sealErr != nil {
				return 0, 0, sealErr
			}
			binary.LittleEndian.PutUint32(lenBuf, uint32(len(ct)))
			if _, err := w.Write(lenBuf); err != nil {
				return 0, 0, err
			}
			if _, err := w.Write(ct); err != nil {
				return 0, 0, err
			}
			index++
			total += uint64(n)
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return 0, 0, readErr
		}
	}
	return index, total, nil
}
