package cryptoprim

import (
	"errors"
	"runtime"
	"sync"
)

var errKeyWiped = errors.New("cryptoprim: key material already wiped")

// Key is an owning wrapper around 32 bytes of AEAD key material. It takes a
// best-effort RAM pin at construction on platforms that support it, and
// zeroes its storage exactly once on destruction regardless of exit path, as
// required by spec §3 ("Key's memory is zeroed before its owning record
// leaves the registry") and §9 ("Key lifetime").
//
// No method here ever returns the raw bytes by value or implements a String
// or GoString/Format method — both would risk a copy escaping into a log
// sink or debug dump.
type Key struct {
	mu     sync.Mutex
	bytes  []byte
	pinned bool
	wiped  bool
}

// NewKey takes ownership of key (which must be KeySize bytes) and attempts
// to mlock its backing array.
func NewKey(key []byte) *Key {
	k := &Key{bytes: key}
	k.pinned = pinMemory(k.bytes)
	runtime.SetFinalizer(k, func(k *Key) { k.Wipe() })
	return k
}

// Use invokes fn with the raw key bytes under the instance lock. fn must not
// retain the slice beyond the call.
func (k *Key) Use(fn func(key []byte) error) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.wiped {
		return errKeyWiped
	}
	return fn(k.bytes)
}

// Wipe zeroes the key's storage and releases its RAM pin. Safe to call more
// than once; only the first call has an effect.
func (k *Key) Wipe() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.wiped {
		return
	}
	secureWipe(k.bytes)
	if k.pinned {
		unpinMemory(k.bytes)
	}
	k.wiped = true
	runtime.SetFinalizer(k, nil)
}

// BaseNonce is an owning wrapper around the 24-byte per-drop base nonce N₀.
// It is random, stored as the first bytes of the blob, and does not itself
// need RAM pinning (it is not secret), but it is wiped alongside its Key so
// that a destroyed record leaves no recoverable state in the process.
type BaseNonce struct {
	mu    sync.Mutex
	bytes []byte
	wiped bool
}

// NewBaseNonce takes ownership of nonce (NonceSize bytes).
func NewBaseNonce(nonce []byte) *BaseNonce {
	return &BaseNonce{bytes: nonce}
}

// Use invokes fn with the raw nonce bytes under the instance lock.
func (n *BaseNonce) Use(fn func(nonce []byte) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.wiped {
		return errKeyWiped
	}
	return fn(n.bytes)
}

// Wipe zeroes the nonce's storage. Safe to call more than once.
func (n *BaseNonce) Wipe() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.wiped {
		return
	}
	secureWipe(n.bytes)
	n.wiped = true
}

func secureWipe(data []byte) {
	for i := range data {
		data[i] = 0
	}
	runtime.KeepAlive(data)
}
