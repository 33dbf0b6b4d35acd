package codec

import (
	"encoding/binary"
	"io"

	"github.com/Karmanya03/Deadrop/internal/cryptoprim"
)

// KnownLength is passed to Decode when the caller knows the total byte
// length of the blob in advance (an on-disk file's size, or a response's
// Content-Length). It lets the decoder reject an impossible total_chunks
// per spec §9's third open question before attempting to allocate or read
// anything past the header.
type KnownLength struct {
	Valid bool
	Bytes int64
}

// Decode reads a blob from r, authenticates and decrypts each chunk under
// key, and calls emit with each chunk's plaintext in order. emit must not
// retain the slice past the call.
//
// Decode enforces the spec §13 decision on the open original_size question:
// once all declared chunks have been read, the sum of their plaintext
// lengths is compared against header.OriginalSize, and a mismatch is
// reported as ErrTruncated with Index equal to total_chunks (one past the
// last chunk's index).
func Decode(r io.Reader, key []byte, length KnownLength, emit func(chunk []byte) error) error {
	headerBuf := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, headerBuf)
	if err != nil || n != HeaderSize {
		return ErrShortHeader
	}
	h, err := ParseHeader(headerBuf)
	if err != nil {
		return err
	}

	if length.Valid {
		maxPossibleChunks := uint64(0)
		if length.Bytes > HeaderSize {
			maxPossibleChunks = uint64(length.Bytes-HeaderSize) / 4
		}
		if h.TotalChunks > maxPossibleChunks {
			return &ErrChunkCountOverflow{TotalChunks: h.TotalChunks}
		}
	} else if h.TotalChunks > (1 << 32) {
		// No declared length to check against: fall back to an absolute
		// ceiling far beyond any real transfer, per spec §9.
		return &ErrChunkCountOverflow{TotalChunks: h.TotalChunks}
	}

	lenBuf := make([]byte, 4)
	ctBuf := make([]byte, 0, MaxCiphertextLen)
	nonce := make([]byte, NonceSize)

	var decoded uint64
	for i := uint64(0); i < h.TotalChunks; i++ {
		if _, err := io.ReadFull(r, lenBuf); err != nil {
			return &ErrTruncated{Index: i}
		}
		l := binary.LittleEndian.Uint32(lenBuf)
		if l == 0 || l > MaxCiphertextLen {
			return &ErrInvalidChunkLen{Index: i, Length: l}
		}

		ctBuf = ctBuf[:0]
		if cap(ctBuf) < int(l) {
			ctBuf = make([]byte, 0, l)
		}
		ctBuf = ctBuf[:l]
		if _, err := io.ReadFull(r, ctBuf); err != nil {
			return &ErrTruncated{Index: i}
		}

		cryptoprim.DeriveChunkNonceInPlace(h.BaseNonce[:], i, nonce)
		pt, err := cryptoprim.Open(nil, key, nonce, ctBuf)
		if err != nil {
			return &ErrAuthFailed{Index: i}
		}

		decoded += uint64(len(pt))
		if err := emit(pt); err != nil {
			return err
		}
	}

	if decoded != h.OriginalSize {
		return &ErrTruncated{Index: h.TotalChunks}
	}
	return nil
}
