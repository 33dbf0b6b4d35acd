package registry

import "errors"

// Error taxonomy for authorize_fetch, per spec §4.3/§7.
var (
	// ErrNotFound covers both "never existed" and "expired and erased" —
	// spec §4.3 step 3 folds expiry into NotFound so the two are
	// indistinguishable to a client, which is also why both get the
	// constant-time jitter delay (spec §4.3 "Timing discipline").
	ErrNotFound = errors.New("registry: not found")

	// ErrBurned means the id is known but the record is terminal — distinct
	// from ErrNotFound so the HTTP layer can render the "already destroyed"
	// page instead of a generic 404.
	ErrBurned = errors.New("registry: burned")

	// ErrForbiddenWrongClient means the record's pinned IP does not match
	// the requesting peer. Per spec §4.3, this response carries no jitter.
	ErrForbiddenWrongClient = errors.New("registry: forbidden, wrong client")

	// ErrIDCollision is returned internally by Create's id generator after
	// exhausting its retry budget; Create never returns it to callers under
	// normal operation (collision probability is astronomically small at
	// 16 chars from a 62-letter alphabet).
	ErrIDCollision = errors.New("registry: id collision retry budget exhausted")
)
