// Package cryptoprim wraps the XChaCha20-Poly1305 AEAD and the Argon2id KDF
// used to derive drop keys, plus owning wrappers for key material that pin
// and wipe their storage.
package cryptoprim

import (
	"crypto/cipher"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the size in bytes of an AEAD key (K in spec §3).
const KeySize = chacha20poly1305.KeySize // 32

// NonceSize is the size in bytes of an XChaCha20-Poly1305 nonce (N in spec §3).
const NonceSize = chacha20poly1305.NonceSizeX // 24

// Overhead is the Poly1305 authentication tag size appended to every sealed
// chunk.
const Overhead = chacha20poly1305.Overhead // 16

// ErrAuthFailed is returned by Open when the ciphertext fails authentication.
var ErrAuthFailed = errors.New("cryptoprim: authentication failed")

// Seal encrypts and authenticates plaintext under key and nonce, appending
// the result to dst and returning the extended slice. Associated data is
// always empty per spec §4.1.
func Seal(dst []byte, key, nonce, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, errors.New("cryptoprim: invalid nonce size")
	}
	return aead.Seal(dst, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts ciphertext under key and nonce, appending
// the plaintext to dst. Returns ErrAuthFailed on any tampering.
func Open(dst []byte, key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, errors.New("cryptoprim: invalid nonce size")
	}
	out, err := aead.Open(dst, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return out, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, errors.New("cryptoprim: invalid key size")
	}
	return chacha20poly1305.NewX(key)
}

// DeriveChunkNonceInPlace writes N_i into output: a copy of baseNonce with
// the low 8 bytes XORed with the little-endian encoding of chunkIndex. The
// upper 16 bytes of baseNonce are left untouched. This is the exact
// derivation required by spec §3/§9 for wire compatibility, and matches the
// teacher's DeriveChunkNonceInPlace in services/security/encryption_service.go.
func DeriveChunkNonceInPlace(baseNonce []byte, chunkIndex uint64, output []byte) {
	copy(output, baseNonce)

	idx := chunkIndex
	output[0] ^= byte(idx)
	output[1] ^= byte(idx >> 8)
	output[2] ^= byte(idx >> 16)
	output[3] ^= byte(idx >> 24)
	output[4] ^= byte(idx >> 32)
	output[5] ^= byte(idx >> 40)
	output[6] ^= byte(idx >> 48)
	output[7] ^= byte(idx >> 56)
}
