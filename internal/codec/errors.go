package codec

import (
	"errors"
	"fmt"
)

// ErrShortHeader means fewer than HeaderSize bytes were available where the
// 40-byte preamble was expected (spec §4.2 decode contract).
var ErrShortHeader = errors.New("codec: short header")

// ErrInvalidChunkLen reports a chunk length prefix that is zero or exceeds
// MaxCiphertextLen.
type ErrInvalidChunkLen struct {
	Index  uint64
	Length uint32
}

func (e *ErrInvalidChunkLen) Error() string {
	return fmt.Sprintf("codec: invalid chunk length at index %d: %d", e.Index, e.Length)
}

// ErrTruncated reports that the stream ended before total_chunks frames (or
// their declared bytes) were fully read, or that the decrypted plaintext
// total differs from the header's original_size (Index is then
// total_chunks).
type ErrTruncated struct {
	Index uint64
}

func (e *ErrTruncated) Error() string {
	return fmt.Sprintf("codec: truncated at chunk %d", e.Index)
}

// ErrAuthFailed reports that a chunk failed AEAD authentication.
type ErrAuthFailed struct {
	Index uint64
}

func (e *ErrAuthFailed) Error() string {
	return fmt.Sprintf("codec: authentication failed at chunk %d", e.Index)
}

// ErrChunkCountOverflow reports a header claiming more chunks than the
// known or bounded blob length could possibly contain (spec §9, third open
// question).
type ErrChunkCountOverflow struct {
	TotalChunks uint64
}

func (e *ErrChunkCountOverflow) Error() string {
	return fmt.Sprintf("codec: total_chunks %d exceeds blob bounds", e.TotalChunks)
}

// IsTerminal reports whether err is one of the codec decode errors that must
// stop the decoder from reading any further (spec §4.2: "All errors are
// terminal; the decoder must not continue past them").
func IsTerminal(err error) bool {
	if err == nil {
		return false
	}
	switch err.(type) {
	case *ErrInvalidChunkLen, *ErrTruncated, *ErrAuthFailed, *ErrChunkCountOverflow:
		return true
	}
	return err == ErrShortHeader
}
