package slotcache

// DefaultSlots is the capacity used when Options.Slots is zero. It matches
// the maximum buffer-queue depth of the transport the cache mirrors.
const DefaultSlots = 64

// EvictReason explains why a slot's previous occupant was dropped.
type EvictReason int

const (
	// EvictLRU — the slot was the least recently used and got reassigned
	// to a new buffer while its old buffer was still live.
	EvictLRU EvictReason = iota
	// EvictStale — the slot was reassigned after its buffer had already
	// been destroyed by its owner (the weak reference no longer resolved).
	EvictStale
	// EvictReset — the slot was cleared by an explicit Reset.
	EvictReset
)

// String returns a stable label value for the reason.
func (r EvictReason) String() string {
	switch r {
	case EvictStale:
		return "stale"
	case EvictReset:
		return "reset"
	default:
		return "lru"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(assigned, slots int)
}

// Options configures a Cache. Zero values are safe; defaults are applied
// in New():
//   - Slots == 0   => DefaultSlots
//   - nil Metrics  => NoopMetrics
type Options struct {
	// Slots is the capacity N, which must match the remote side's slot
	// table. Negative values panic in New.
	Slots int

	// OnEvict is called whenever a slot's previous assignment is dropped,
	// with the slot index and the reason. Called synchronously from
	// Resolve/Reset; keep it lightweight.
	OnEvict func(slot int, reason EvictReason)

	// Metrics receives hit/miss/evict/size signals. Nil => NoopMetrics.
	Metrics Metrics
}
