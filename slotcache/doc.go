// Package slotcache provides a fixed-capacity, identity-keyed LRU slot table
// that mirrors a remote buffer cache, so that repeated transmission of the
// same buffer handle across a transport boundary can be elided.
//
// A hardware compositing backend keeps a small per-output cache of buffer
// handles, addressed by slot index. When handing a buffer to the backend, the
// client may either send the handle itself or just the slot index of a handle
// the backend already holds. The latter is much cheaper: it skips the handle
// transfer and the backend-side clone/retain. To know which option is valid,
// the client mirrors the backend's slot table — that mirror is this package.
//
// Design
//
//   - Storage: a fixed array of N slots. Each slot pairs a weak (non-owning)
//     reference to a buffer with the value of a shared monotonic counter at
//     the slot's last use. N is small and bounded by the transport's maximum
//     buffer-queue depth, so every operation is a plain O(N) scan; no map or
//     ordering structure is kept.
//
//   - Identity: buffers match by reference identity, never by content. The
//     weak references (stdlib weak.Pointer) allow identity comparison and
//     liveness checks without keeping the referenced buffer alive; the cache
//     is never the reason a buffer lives or dies.
//
//   - LRU: the lookup/insert operation is total. On a miss the slot with the
//     smallest recency counter is overwritten (ties go to the lowest index),
//     so capacity pressure resolves by eviction, not by error. A slot whose
//     buffer has been destroyed externally still competes for eviction with
//     its last recorded counter.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals.
//     NoopMetrics is the default; plug the metrics/prom adapter to export
//     Prometheus metrics.
//
//   - Concurrency: a Cache is confined to a single owner. One composition
//     pipeline calls Resolve sequentially, once per buffer, in frame order.
//     For multiple outputs or threads, use one Cache per output and serialize
//     externally — the mirror package does exactly that.
//
// Basic usage
//
//	// One cache per display output, capacity matching the remote side.
//	c := slotcache.New[gfx.Buffer](slotcache.Options{Slots: 8})
//
//	slot, payload := c.Resolve(buf)
//	if payload != nil {
//	    // First sighting: send the handle, tagged with slot.
//	    send(slot, payload)
//	} else {
//	    // Remote already caches this buffer under slot.
//	    sendSlotOnly(slot)
//	}
//
// On reconnection
//
// The local and remote tables must agree at all times. Whenever the remote
// cache is invalidated (e.g. a new backend session), call Reset so every
// buffer is retransmitted on next use:
//
//	c.Reset()
package slotcache
