package slotcache

import "weak"

// slot pairs a weak reference to a buffer with the counter value at the
// slot's last use. A zero lastUse means the slot has never been used
// (counter values issued to slots start at 1).
type slot[B any] struct {
	ref     weak.Pointer[B]
	lastUse uint64
}

// cache is the single-owner slot table behind the Cache interface.
type cache[B any] struct {
	slots    []slot[B]
	counter  uint64 // last issued recency value; strictly increasing
	assigned int
	opt      Options
}

// New constructs a Cache with the provided Options.
// Defaults:
//   - Slots == 0  -> DefaultSlots
//   - nil Metrics -> NoopMetrics
//
// Slots must match the remote side's slot table capacity.
func New[B any](opt Options) Cache[B] {
	if opt.Slots < 0 {
		panic("slotcache: Slots must be >= 0")
	}
	if opt.Slots == 0 {
		opt.Slots = DefaultSlots
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	return &cache[B]{
		slots: make([]slot[B], opt.Slots),
		opt:   opt,
	}
}

// Resolve maps buf to its slot, assigning one by LRU eviction on a miss.
// transmit is nil on a hit and buf on a miss. See Cache.Resolve.
func (c *cache[B]) Resolve(buf *B) (int, *B) {
	if buf == nil {
		panic("slotcache: Resolve called with nil buffer")
	}

	// weak.Pointer values made from the same live pointer compare equal,
	// and comparison neither faults on nor revives a dead referent, so a
	// plain equality scan is the whole identity match. A slot whose
	// buffer has died can never equal a reference to a live one.
	ref := weak.Make(buf)
	for i := range c.slots {
		if c.slots[i].lastUse != 0 && c.slots[i].ref == ref {
			c.slots[i].lastUse = c.tick()
			c.opt.Metrics.Hit()
			return i, nil
		}
	}

	c.opt.Metrics.Miss()
	e := c.lruSlot()
	s := &c.slots[e]
	if s.lastUse == 0 {
		c.assigned++
	} else {
		reason := EvictLRU
		if s.ref.Value() == nil { // liveness probe only
			reason = EvictStale
		}
		c.evicted(e, reason)
	}
	s.ref = ref
	s.lastUse = c.tick()
	c.opt.Metrics.Size(c.assigned, len(c.slots))
	return e, buf
}

// Reset clears every slot back to never-used. The shared counter keeps
// running so recency values issued after a Reset still compare above
// anything issued before it.
func (c *cache[B]) Reset() {
	for i := range c.slots {
		if c.slots[i].lastUse != 0 {
			c.evicted(i, EvictReset)
		}
		c.slots[i] = slot[B]{}
	}
	c.assigned = 0
	c.opt.Metrics.Size(0, len(c.slots))
}

// Slots returns the capacity N.
func (c *cache[B]) Slots() int { return len(c.slots) }

// Assigned returns the number of slots used since creation or last Reset.
func (c *cache[B]) Assigned() int { return c.assigned }

// tick issues the next recency value. The counter advances exactly once
// per Resolve, hit or miss, and is never derived from wall-clock time, so
// ordering under rapid calls stays deterministic.
func (c *cache[B]) tick() uint64 {
	c.counter++
	return c.counter
}

// lruSlot returns the index with the smallest recency counter. Never-used
// slots carry 0 and therefore fill first, in index order. The strict
// comparison breaks ties toward the lowest index, keeping eviction
// deterministic. O(N) is intentional: N is bounded by the transport's
// buffer-queue depth, so a secondary ordering structure isn't worth it.
func (c *cache[B]) lruSlot() int {
	e := 0
	min := c.slots[0].lastUse
	for i := 1; i < len(c.slots); i++ {
		if c.slots[i].lastUse < min {
			e, min = i, c.slots[i].lastUse
		}
	}
	return e
}

// evicted reports one dropped slot assignment to metrics and the OnEvict
// callback.
func (c *cache[B]) evicted(slot int, reason EvictReason) {
	c.opt.Metrics.Evict(reason)
	if cb := c.opt.OnEvict; cb != nil {
		cb(slot, reason)
	}
}
