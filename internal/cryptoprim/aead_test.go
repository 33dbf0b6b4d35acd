package cryptoprim

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key := make([]byte, KeySize)
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand key: %v", err)
	}
	if _, err := rand.Read(nonce); err != nil {
		t.Fatalf("rand nonce: %v", err)
	}

	plaintexts := [][]byte{
		{},
		[]byte("hello"),
		bytes.Repeat([]byte{'A'}, 65537),
	}

	for _, pt := range plaintexts {
		ct, err := Seal(nil, key, nonce, pt)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		if len(ct) != len(pt)+Overhead {
			t.Fatalf("ciphertext length = %d, want %d", len(ct), len(pt)+Overhead)
		}
		got, err := Open(nil, key, nonce, ct)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if !bytes.Equal(got, pt) {
			t.Fatalf("round-trip mismatch: got %v want %v", got, pt)
		}
	}
}

func TestOpenTagIntegrity(t *testing.T) {
	key := make([]byte, KeySize)
	nonce := make([]byte, NonceSize)
	rand.Read(key)
	rand.Read(nonce)

	ct, err := Seal(nil, key, nonce, []byte("hello"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	for i := range ct {
		tampered := append([]byte(nil), ct...)
		tampered[i] ^= 0xFF
		if _, err := Open(nil, key, nonce, tampered); err != ErrAuthFailed {
			t.Fatalf("byte %d: Open error = %v, want ErrAuthFailed", i, err)
		}
	}
}

func TestDeriveChunkNonceUniqueness(t *testing.T) {
	base := make([]byte, NonceSize)
	rand.Read(base)

	seen := make(map[string]bool)
	out := make([]byte, NonceSize)
	for i := uint64(0); i < 4096; i++ {
		DeriveChunkNonceInPlace(base, i, out)
		key := string(out)
		if seen[key] {
			t.Fatalf("nonce collision at index %d", i)
		}
		seen[key] = true
	}
}

func TestDeriveChunkNonceLeavesUpperBytesUntouched(t *testing.T) {
	base := make([]byte, NonceSize)
	rand.Read(base)
	out := make([]byte, NonceSize)

	DeriveChunkNonceInPlace(base, 0xFFFFFFFFFFFFFFFF, out)

	if !bytes.Equal(out[8:], base[8:]) {
		t.Fatalf("upper 16 bytes changed: got %v want %v", out[8:], base[8:])
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := make([]byte, SaltSize)
	rand.Read(salt)

	k1, err := DeriveKey([]byte("correct horse battery staple"), salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	k2, err := DeriveKey([]byte("correct horse battery staple"), salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("DeriveKey not deterministic for identical inputs")
	}

	// Non-UTF-8 password bytes must derive just as deterministically.
	nonUTF8 := []byte{0xff, 0xfe, 0x00, 0x80, 0x81}
	k3, err := DeriveKey(nonUTF8, salt)
	if err != nil {
		t.Fatalf("DeriveKey(non-utf8): %v", err)
	}
	k4, err := DeriveKey(nonUTF8, salt)
	if err != nil {
		t.Fatalf("DeriveKey(non-utf8): %v", err)
	}
	if !bytes.Equal(k3, k4) {
		t.Fatalf("DeriveKey not deterministic for non-UTF-8 password")
	}
}

func TestKeyWipeIsIdempotentAndZeroes(t *testing.T) {
	raw := make([]byte, KeySize)
	rand.Read(raw)
	buf := append([]byte(nil), raw...)
	k := NewKey(buf)

	k.Wipe()
	k.Wipe() // must not panic or double-free

	if !bytes.Equal(buf, make([]byte, KeySize)) {
		t.Fatalf("key storage not zeroed after Wipe: %v", buf)
	}

	err := k.Use(func(b []byte) error { return nil })
	if err != errKeyWiped {
		t.Fatalf("Use after Wipe: err = %v, want errKeyWiped", err)
	}
}
