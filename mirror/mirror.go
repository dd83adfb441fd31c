// Package mirror manages one slotcache per output behind a lock, for
// pipelines that announce buffers for several displays or layers from
// more than one goroutine.
//
// The remote side keeps an independent slot table per output, so the
// local mirror must too: a Set lazily creates one slotcache.Cache per
// output key and serializes each output's Resolve calls with a per-output
// mutex. Different outputs never contend with each other beyond the brief
// lookup in the key map.
package mirror

import (
	"sync"

	"github.com/compohal/slotmirror/slotcache"
)

// Config configures a Set. The zero value is usable: every output gets a
// cache of slotcache.DefaultSlots and no observability.
type Config[K comparable] struct {
	// Slots is the per-output capacity, which must match the remote
	// side's per-output slot tables. 0 => slotcache.DefaultSlots.
	Slots int

	// OnEvict is called for every dropped slot assignment, with the
	// output it happened on. Called under that output's lock; keep it
	// lightweight.
	OnEvict func(out K, slot int, reason slotcache.EvictReason)

	// Metrics receives the aggregated signals of all per-output caches.
	// Nil => no metrics. Implementations must be safe for concurrent
	// use when outputs are driven from multiple goroutines (the
	// metrics/prom adapter is).
	Metrics slotcache.Metrics
}

// Set is a collection of per-output slot caches. All methods are safe for
// concurrent use; calls for the same output are serialized.
type Set[K comparable, B any] struct {
	cfg Config[K]

	mu sync.RWMutex
	m  map[K]*entry[B]
}

// entry binds one output's cache to the mutex that confines it.
type entry[B any] struct {
	mu sync.Mutex
	c  slotcache.Cache[B]
}

// NewSet constructs an empty Set. Output caches are created on first use.
func NewSet[K comparable, B any](cfg Config[K]) *Set[K, B] {
	if cfg.Slots < 0 {
		panic("mirror: Slots must be >= 0")
	}
	return &Set[K, B]{
		cfg: cfg,
		m:   make(map[K]*entry[B]),
	}
}

// Resolve maps buf to a slot on the given output, creating that output's
// cache on first sight. Semantics per output are exactly
// slotcache.Cache.Resolve.
func (s *Set[K, B]) Resolve(out K, buf *B) (slot int, transmit *B) {
	e := s.output(out)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.c.Resolve(buf)
}

// Invalidate resets one output's cache, forcing retransmission of every
// buffer on next use. Call it when the remote side's table for that
// output is invalidated (e.g. reconnection). Returns false if the output
// has never resolved a buffer.
func (s *Set[K, B]) Invalidate(out K) bool {
	s.mu.RLock()
	e, ok := s.m[out]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.c.Reset()
	return true
}

// InvalidateAll resets every output's cache, e.g. after losing the whole
// remote session.
func (s *Set[K, B]) InvalidateAll() {
	s.mu.RLock()
	entries := make([]*entry[B], 0, len(s.m))
	for _, e := range s.m {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		e.c.Reset()
		e.mu.Unlock()
	}
}

// Drop removes an output entirely (the display or layer is gone).
// Returns false if the output was unknown.
func (s *Set[K, B]) Drop(out K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[out]; !ok {
		return false
	}
	delete(s.m, out)
	return true
}

// Outputs returns the number of outputs that currently have a cache.
func (s *Set[K, B]) Outputs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// output returns the entry for out, creating it if needed. The
// double-checked create keeps the common path on the read lock.
func (s *Set[K, B]) output(out K) *entry[B] {
	s.mu.RLock()
	e, ok := s.m[out]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.m[out]; ok {
		return e
	}
	e = &entry[B]{c: slotcache.New[B](s.options(out))}
	s.m[out] = e
	return e
}

// options builds per-output cache options, tagging evictions with the
// output key.
func (s *Set[K, B]) options(out K) slotcache.Options {
	opt := slotcache.Options{
		Slots:   s.cfg.Slots,
		Metrics: s.cfg.Metrics,
	}
	if cb := s.cfg.OnEvict; cb != nil {
		opt.OnEvict = func(slot int, reason slotcache.EvictReason) {
			cb(out, slot, reason)
		}
	}
	return opt
}
