// Package registry is the single source of truth for whether a drop can
// currently be served, to whom, and what happens when it no longer can be
// (spec §3/§4.3). It is deliberately in-memory only: Non-goal "persistent
// storage across process exits" means a registry is never backed by a
// database or cache — restarting the process destroys every drop, which is
// the desired behavior for a blind courier.
package registry

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/Karmanya03/Deadrop/internal/cryptoprim"
)

// State is one of the three lifecycle states a DropRecord can occupy (spec §3).
type State int

const (
	// Live means the drop can currently be authorized and fetched.
	Live State = iota
	// Burned is terminal: download count exhausted or manually destroyed.
	Burned
	// Expired is terminal: the expiry deadline passed.
	Expired
)

func (s State) String() string {
	switch s {
	case Live:
		return "live"
	case Burned:
		return "burned"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// idAlphabet is the URL-safe alphabet drop ids are drawn from (spec §3:
// "16 characters ... ≥ 64 bits of entropy"). Digits and lower/upper case
// letters give log2(62^16) ≈ 95 bits, comfortably above the floor.
const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// idLength is the fixed length of a drop id.
const idLength = 16

// newID draws a random 16-character id from idAlphabet.
func newID() (string, error) {
	buf := make([]byte, idLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, idLength)
	for i, b := range buf {
		out[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(out), nil
}

// Meta is the caller-supplied, non-secret metadata for a new drop.
type Meta struct {
	Filename           string
	Mime               string
	PasswordProtected  bool
	MaxDownloads       uint64 // 0 means unlimited
	TTL                time.Duration
}

// DropRecord is one active drop (spec §3). All mutation goes through
// Registry methods, which hold the record's lock for the duration of a
// state transition.
type DropRecord struct {
	mu sync.Mutex

	ID                 string
	BlobPath           string
	Filename           string
	Mime               string
	PasswordProtected  bool
	MaxDownloads       uint64
	RemainingDownloads uint64
	ExpiresAt          time.Time
	PinnedIP           string
	HasPinnedIP        bool
	State              State

	key       *cryptoprim.Key
	baseNonce *cryptoprim.BaseNonce
	timer     *time.Timer
}

// snapshot is an immutable, lock-free copy of a record's publicly readable
// fields, used by the landing-page metadata read path (spec §4.3: "reads
// for the landing page metadata may take a shared section").
type snapshot struct {
	ID                string
	Filename          string
	Mime              string
	PasswordProtected bool
	State             State
}

func (r *DropRecord) snapshot() snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return snapshot{
		ID:                r.ID,
		Filename:          r.Filename,
		Mime:              r.Mime,
		PasswordProtected: r.PasswordProtected,
		State:             r.State,
	}
}
