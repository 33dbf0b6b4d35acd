package cryptoprim

import (
	"errors"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters mandated by spec §4.1 so sender and receiver derive
// identical keys regardless of which binary (server, CLI, browser
// WebAssembly artifact) performs the derivation.
const (
	ArgonTimeKiB   = 3
	ArgonMemoryKiB = 64 * 1024
	ArgonThreads   = 1
	ArgonKeyLen    = KeySize
	SaltSize       = 16
)

// ErrKdfFailed reports a KDF parameter/output-size assertion failure. Per
// spec §7 this is never expected at runtime and callers should treat it as
// an internal invariant violation rather than a recoverable error.
var ErrKdfFailed = errors.New("cryptoprim: argon2id derivation failed")

// DeriveKey computes K = Argon2id(password, salt, m=64MiB, t=3, p=1, out=32)
// as required by spec §3/§4.1. password is taken as raw bytes so non-UTF-8
// passwords derive deterministically the same as any other client.
func DeriveKey(password []byte, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, ErrKdfFailed
	}
	key := argon2.IDKey(password, salt, ArgonTimeKiB, ArgonMemoryKiB, ArgonThreads, ArgonKeyLen)
	if len(key) != ArgonKeyLen {
		return nil, ErrKdfFailed
	}
	return key, nil
}
