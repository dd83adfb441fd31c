package slotcache

// Cache is a fixed-capacity slot table mirroring a remote buffer cache.
// B is the buffer type; buffers are identified by pointer identity.
//
// A Cache is NOT safe for concurrent use. It is designed for a single
// owner (one composition/transport pipeline per instance); callers that
// need cross-goroutine access must serialize externally or use a
// mirror.Set, which wraps one Cache per output behind a mutex.
type Cache[B any] interface {
	// Resolve maps buf to the slot index under which the remote side
	// should cache it, and reports whether the buffer itself must be
	// transmitted.
	//
	// On a hit, transmit is nil: the remote already holds this buffer
	// under slot, and the caller need only reference the index in the
	// outgoing message. On a miss, transmit == buf: the caller must send
	// the buffer tagged with slot, and the remote will store it there,
	// overwriting whatever it had cached at that index.
	//
	// Resolve never fails for a non-nil buffer; capacity pressure is
	// resolved by LRU eviction. A nil buf is a caller logic error and
	// panics.
	Resolve(buf *B) (slot int, transmit *B)

	// Reset returns every slot to the never-used state. Call it whenever
	// the remote side's cache is invalidated (e.g. on reconnection to a
	// new session), so local and remote tables stay in agreement.
	Reset()

	// Slots returns the capacity N. Slot indices are in [0, N).
	Slots() int

	// Assigned returns the number of slots that have held a buffer since
	// creation or the last Reset. It counts slots, not live buffers: a
	// slot whose buffer has since been destroyed still counts until the
	// slot is reused or reset.
	Assigned() int
}
