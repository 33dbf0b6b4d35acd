package registry

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Karmanya03/Deadrop/internal/cryptoprim"
)

// idCreateRetries bounds Create's retry loop against a (vanishingly
// unlikely) id collision, per spec §4.3 "generates id (rejects on rare
// collision with retry)".
const idCreateRetries = 8

// tombstoneRetention is how long a terminal (Burned/Expired) record stays
// in reg.records after its blob and key are erased. Spec §4.4 requires
// GET /d/:id to keep reporting Burned rather than NotFound once a drop is
// destroyed, so destruction must not evict the map entry immediately; it
// is only evicted after this window, which comfortably outlasts how long
// anyone would still have the drop's URL open in a tab.
const tombstoneRetention = 1 * time.Hour

// jitterMin and jitterMax bound the uniformly sampled delay applied to
// NotFound/Burned/RateLimited responses (spec §4.3 "Timing discipline").
const (
	jitterMin = 50 * time.Millisecond
	jitterMax = 200 * time.Millisecond
)

// Registry is the concurrent drop-id -> DropRecord map described in spec
// §4.3/§5. Per-record locks guard state transitions; the map's own mutex
// guards only insertion and lookup, so authorize_fetch's decision is
// linearizable without serializing unrelated drops against each other.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*DropRecord

	logger *logrus.Logger

	// afterExpire, if set, is called (outside any lock) whenever a record
	// transitions to Expired via its timer or the periodic sweep. Nothing in
	// this repository sets it.
	afterExpire func(id string)
}

// New constructs an empty Registry.
func New(logger *logrus.Logger) *Registry {
	return &Registry{
		records: make(map[string]*DropRecord),
		logger:  logger,
	}
}

// CreateResult is returned by Create.
type CreateResult struct {
	ID string
}

// Create inserts a new Live record, arms its expiry timer, and returns its
// freshly minted id (spec §4.3 "create").
func (reg *Registry) Create(meta Meta, blobPath string, key *cryptoprim.Key, baseNonce *cryptoprim.BaseNonce) (CreateResult, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var id string
	for attempt := 0; attempt < idCreateRetries; attempt++ {
		candidate, err := newID()
		if err != nil {
			return CreateResult{}, err
		}
		if _, exists := reg.records[candidate]; !exists {
			id = candidate
			break
		}
	}
	if id == "" {
		return CreateResult{}, ErrIDCollision
	}

	rec := &DropRecord{
		ID:                 id,
		BlobPath:           blobPath,
		Filename:           meta.Filename,
		Mime:               meta.Mime,
		PasswordProtected:  meta.PasswordProtected,
		MaxDownloads:       meta.MaxDownloads,
		RemainingDownloads: meta.MaxDownloads,
		ExpiresAt:          time.Now().Add(meta.TTL),
		State:              Live,
		key:                key,
		baseNonce:          baseNonce,
	}
	reg.records[id] = rec
	reg.armExpiry(rec, meta.TTL)

	if reg.logger != nil {
		reg.logger.WithFields(logrus.Fields{"drop_id": id, "ttl": meta.TTL.String()}).Info("drop created")
	}
	return CreateResult{ID: id}, nil
}

func (reg *Registry) armExpiry(rec *DropRecord, ttl time.Duration) {
	rec.timer = time.AfterFunc(ttl, func() {
		reg.expireIfDue(rec.ID)
	})
}

func (reg *Registry) expireIfDue(id string) {
	reg.mu.RLock()
	rec, ok := reg.records[id]
	reg.mu.RUnlock()
	if !ok {
		return
	}

	rec.mu.Lock()
	due := rec.State == Live && !time.Now().Before(rec.ExpiresAt)
	if due {
		rec.State = Expired
	}
	rec.mu.Unlock()

	if due {
		reg.destroyLocked(rec)
		if reg.afterExpire != nil {
			reg.afterExpire(id)
		}
	}
}

// FetchTicket is a capability to stream a drop's blob once, returned by
// AuthorizeFetch. It does not itself decrement RemainingDownloads; that
// happens in CommitFetch after the body has been fully streamed (spec
// §4.3 step 7 / §5 ordering guarantees).
type FetchTicket struct {
	recordID string
	BlobPath string
}

// AuthorizeFetch implements the six-step decision of spec §4.3. Per-record
// transitions happen under that record's own lock so two ids never
// contend, while the initial map lookup happens under the registry's
// shared lock.
func (reg *Registry) AuthorizeFetch(id string, peerIP string) (FetchTicket, error) {
	reg.mu.RLock()
	rec, ok := reg.records[id]
	reg.mu.RUnlock()
	if !ok {
		return FetchTicket{}, ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.State != Live {
		if rec.State == Expired {
			return FetchTicket{}, ErrNotFound
		}
		return FetchTicket{}, ErrBurned
	}

	if !time.Now().Before(rec.ExpiresAt) {
		rec.State = Expired
		rec.mu.Unlock()
		reg.destroyLocked(rec)
		rec.mu.Lock()
		return FetchTicket{}, ErrNotFound
	}

	if rec.HasPinnedIP && rec.PinnedIP != peerIP {
		return FetchTicket{}, ErrForbiddenWrongClient
	}

	if rec.MaxDownloads > 0 && rec.RemainingDownloads == 0 {
		rec.State = Burned
		return FetchTicket{}, ErrBurned
	}

	if !rec.HasPinnedIP {
		rec.PinnedIP = peerIP
		rec.HasPinnedIP = true
	}

	return FetchTicket{recordID: id, BlobPath: rec.BlobPath}, nil
}

// CommitFetch decrements RemainingDownloads after a clean end-of-stream
// delivery. A ticket for an id that is already terminal by the time
// CommitFetch runs (e.g. destroyed by a concurrent expiry) is a no-op for
// counters, matching spec §5's cancellation/ordering guarantees.
func (reg *Registry) CommitFetch(ticket FetchTicket) {
	reg.mu.RLock()
	rec, ok := reg.records[ticket.recordID]
	reg.mu.RUnlock()
	if !ok {
		return
	}

	rec.mu.Lock()
	if rec.State != Live {
		rec.mu.Unlock()
		return
	}
	if rec.MaxDownloads > 0 {
		if rec.RemainingDownloads > 0 {
			rec.RemainingDownloads--
		}
		if rec.RemainingDownloads == 0 {
			rec.State = Burned
			rec.mu.Unlock()
			reg.destroyLocked(rec)
			return
		}
	}
	rec.mu.Unlock()
}

// Burn manually destroys a Live record. Download-count exhaustion does not
// go through Burn; CommitFetch burns the record itself. Burn
// cancels the expiry timer as spec §3's lifecycle requires ("The registry
// cancels the expiry timer on manual burn and vice versa").
func (reg *Registry) Burn(id string) {
	reg.mu.RLock()
	rec, ok := reg.records[id]
	reg.mu.RUnlock()
	if !ok {
		return
	}

	rec.mu.Lock()
	if rec.State == Live {
		rec.State = Burned
	}
	rec.mu.Unlock()

	reg.destroyLocked(rec)
}

// destroyLocked performs the anti-forensic erase (blob, key, timer) but
// leaves rec itself as a terminal tombstone in the map — spec §4.3/§4.4
// require a burned or expired drop to keep reporting its state via
// Describe/AuthorizeFetch ("Burned" distinct from "NotFound") rather than
// vanish the instant it is destroyed. It is idempotent: concurrent callers
// (timer fire + in-flight commit) racing to destroy the same record only
// erase once. The map entry itself is reaped later by
// scheduleTombstoneEviction; DestroyAll erases blobs and keys but leaves
// the entries in place as well.
func (reg *Registry) destroyLocked(rec *DropRecord) {
	rec.mu.Lock()
	if rec.timer != nil {
		rec.timer.Stop()
		rec.timer = nil
	}
	alreadyGone := rec.key == nil && rec.baseNonce == nil
	key := rec.key
	nonce := rec.baseNonce
	rec.key = nil
	rec.baseNonce = nil
	blobPath := rec.BlobPath
	rec.mu.Unlock()

	if alreadyGone {
		return
	}

	if err := eraseBlob(blobPath); err != nil && reg.logger != nil {
		reg.logger.WithError(err).WithField("drop_id", rec.ID).Warn("anti-forensic erase failed")
	}
	if key != nil {
		key.Wipe()
	}
	if nonce != nil {
		nonce.Wipe()
	}

	if reg.logger != nil {
		reg.logger.WithField("drop_id", rec.ID).Info("drop destroyed")
	}

	reg.scheduleTombstoneEviction(rec.ID)
}

// scheduleTombstoneEviction removes a terminal record's tombstone from the
// map after tombstoneRetention, bounding the registry's memory growth over
// a long-running receive-mode process without breaking the burn page's
// need to distinguish "destroyed" from "never existed" in the meantime.
func (reg *Registry) scheduleTombstoneEviction(id string) {
	time.AfterFunc(tombstoneRetention, func() {
		reg.mu.Lock()
		delete(reg.records, id)
		reg.mu.Unlock()
	})
}

// Destroy is the exported, idempotent form of destroyLocked for direct use
// (e.g. process shutdown sweeping every remaining record).
func (reg *Registry) Destroy(id string) {
	reg.mu.RLock()
	rec, ok := reg.records[id]
	reg.mu.RUnlock()
	if !ok {
		return
	}
	rec.mu.Lock()
	rec.State = Burned
	rec.mu.Unlock()
	reg.destroyLocked(rec)
}

// DestroyAll tears down every live record; used on process shutdown so no
// ciphertext survives the server exiting.
func (reg *Registry) DestroyAll() {
	reg.mu.RLock()
	ids := make([]string, 0, len(reg.records))
	for id := range reg.records {
		ids = append(ids, id)
	}
	reg.mu.RUnlock()

	for _, id := range ids {
		reg.Destroy(id)
	}
}

// Sweep is the periodic cron-driven pass (SPEC_FULL §10/§11) that
// re-checks every Live record's expiry as a defense-in-depth backstop to
// the per-record timers — a timer that failed to fire (e.g. during a GC
// pause under extreme load) is still caught within one sweep interval.
func (reg *Registry) Sweep() {
	reg.mu.RLock()
	ids := make([]string, 0, len(reg.records))
	for id, rec := range reg.records {
		rec.mu.Lock()
		expired := rec.State == Live && !time.Now().Before(rec.ExpiresAt)
		rec.mu.Unlock()
		if expired {
			ids = append(ids, id)
		}
	}
	reg.mu.RUnlock()

	for _, id := range ids {
		reg.expireIfDue(id)
	}
}

// Describe returns the read-only landing-page metadata for id (spec §4.4
// "GET /d/:id"). ok is false if the id is unknown.
type Description struct {
	Filename          string
	Mime              string
	PasswordProtected bool
	State             State
}

func (reg *Registry) Describe(id string) (Description, bool) {
	reg.mu.RLock()
	rec, ok := reg.records[id]
	reg.mu.RUnlock()
	if !ok {
		return Description{}, false
	}
	s := rec.snapshot()
	return Description{
		Filename:          s.Filename,
		Mime:              s.Mime,
		PasswordProtected: s.PasswordProtected,
		State:             s.State,
	}, true
}

// Jitter returns a uniformly sampled delay in [50ms, 200ms) for the caller
// to sleep before sending a NotFound/Burned/RateLimited response (spec
// §4.3 "Timing discipline").
func Jitter() time.Duration {
	span := jitterMax - jitterMin
	return jitterMin + time.Duration(rand.Int63n(int64(span)))
}
