// Package codec implements the chunked authenticated-encryption blob format
// of spec §3/§4.2: a 40-byte header followed by length-prefixed AEAD chunk
// frames. The same types here are compiled both into the server binary and,
// via internal/wasmcodec, into the browser's decrypt/encrypt worker
// artifact, so this package only touches io.Reader/io.Writer, never the
// filesystem or network directly.
package codec

import "encoding/binary"

// HeaderSize is the fixed size in bytes of the blob header (spec §3).
const HeaderSize = 40

// ChunkSize is the SHOULD-use plaintext size per chunk (spec §3/§4.2).
// Encoders should use it; decoders must accept any chunk whose ciphertext
// length is at most MaxCiphertextLen.
const ChunkSize = 64 * 1024

// MaxCiphertextLen is the largest ciphertext_len a decoder will accept for a
// single chunk frame: 1 MiB of plaintext plus the AEAD tag. This bounds an
// attacker-controlled length field to a sane allocation (spec §4.2 decode
// contract: "rejecting L = 0 or L > 1 MiB + 16").
const MaxCiphertextLen = 1024*1024 + 16

// NonceSize, KeySize, and Overhead re-state the sizes chunk frames depend
// on for readability in this package; cryptoprim.NonceSize etc. are the
// canonical definitions and this package already imports that package
// directly (cryptoprim's own mlock/munlock code is itself build-tag-gated
// to a no-op on js/wasm, so the import chain stays portable).
const (
	NonceSize = 24
	KeySize   = 32
	Overhead  = 16
)

// Header is the parsed form of the blob's 40-byte preamble.
type Header struct {
	BaseNonce    [NonceSize]byte
	TotalChunks  uint64
	OriginalSize uint64 // plaintext length in bytes; Decode requires the decrypted total to equal it.
}

// Encode serializes h into its 40-byte wire form.
func (h *Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:24], h.BaseNonce[:])
	binary.LittleEndian.PutUint64(buf[24:32], h.TotalChunks)
	binary.LittleEndian.PutUint64(buf[32:40], h.OriginalSize)
	return buf
}

// ParseHeader parses exactly HeaderSize bytes into a Header. Callers are
// responsible for having read exactly that many bytes first (see
// ErrShortHeader in the decoder).
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) != HeaderSize {
		return Header{}, ErrShortHeader
	}
	var h Header
	copy(h.BaseNonce[:], buf[0:24])
	h.TotalChunks = binary.LittleEndian.Uint64(buf[24:32])
	h.OriginalSize = binary.LittleEndian.Uint64(buf[32:40])
	return h, nil
}
