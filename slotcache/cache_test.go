package slotcache

import (
	"runtime"
	"testing"
)

// buffer stands in for an externally owned graphics buffer. Identity is
// what matters; the payload just keeps instances distinguishable in
// failure messages.
type buffer struct {
	name string
}

// captureMetrics records every Metrics signal for assertions.
type captureMetrics struct {
	hits     int
	misses   int
	evicts   map[EvictReason]int
	assigned int
	slots    int
}

func (m *captureMetrics) Hit()  { m.hits++ }
func (m *captureMetrics) Miss() { m.misses++ }
func (m *captureMetrics) Evict(r EvictReason) {
	if m.evicts == nil {
		m.evicts = make(map[EvictReason]int)
	}
	m.evicts[r]++
}
func (m *captureMetrics) Size(assigned, slots int) {
	m.assigned, m.slots = assigned, slots
}

// mustResolve fails the test unless buf lands in wantSlot with the
// expected payload decision.
func mustResolve(t *testing.T, c Cache[buffer], buf *buffer, wantSlot int, wantTransmit bool) {
	t.Helper()
	slot, transmit := c.Resolve(buf)
	if slot != wantSlot {
		t.Fatalf("Resolve(%s): slot = %d, want %d", buf.name, slot, wantSlot)
	}
	if wantTransmit && transmit != buf {
		t.Fatalf("Resolve(%s): transmit = %v, want the buffer itself", buf.name, transmit)
	}
	if !wantTransmit && transmit != nil {
		t.Fatalf("Resolve(%s): transmit = %v, want nil (hit)", buf.name, transmit)
	}
}

// A buffer resolved twice before eviction keeps its slot and needs no
// second transmission.
func TestCache_HitKeepsSlotAndElidesPayload(t *testing.T) {
	t.Parallel()

	c := New[buffer](Options{Slots: 4})
	a := &buffer{name: "a"}

	mustResolve(t, c, a, 0, true)
	mustResolve(t, c, a, 0, false)
	mustResolve(t, c, a, 0, false)
}

// N distinct buffers fill all N slots, in index order, with no evictions;
// the (N+1)-th forces the first eviction.
func TestCache_FillsAllSlotsBeforeEvicting(t *testing.T) {
	t.Parallel()

	const n = 4
	m := &captureMetrics{}
	c := New[buffer](Options{Slots: n, Metrics: m})

	bufs := make([]*buffer, n)
	for i := range bufs {
		bufs[i] = &buffer{name: string(rune('a' + i))}
		mustResolve(t, c, bufs[i], i, true)
	}
	if got := c.Assigned(); got != n {
		t.Fatalf("Assigned() = %d, want %d", got, n)
	}
	if len(m.evicts) != 0 {
		t.Fatalf("no evictions expected while filling, got %v", m.evicts)
	}

	// One more distinct buffer overflows; slot 0 is the oldest.
	mustResolve(t, c, &buffer{name: "overflow"}, 0, true)
	if m.evicts[EvictLRU] != 1 {
		t.Fatalf("evicts = %v, want exactly one LRU eviction", m.evicts)
	}
	runtime.KeepAlive(bufs)
}

// The worked lifecycle at N = 3: fill, hit refreshes recency, next miss
// evicts the least recently used slot.
func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := New[buffer](Options{Slots: 3})
	a := &buffer{name: "a"}
	b := &buffer{name: "b"}
	d := &buffer{name: "c"}

	mustResolve(t, c, a, 0, true)
	mustResolve(t, c, b, 1, true)
	mustResolve(t, c, d, 2, true)
	mustResolve(t, c, a, 0, false) // hit, a becomes most recent

	// b is now the least recently used; a new buffer takes slot 1.
	mustResolve(t, c, &buffer{name: "d"}, 1, true)

	// a and c survived.
	mustResolve(t, c, a, 0, false)
	mustResolve(t, c, d, 2, false)
	runtime.KeepAlive(b)
}

// A hit makes its slot the last eviction candidate among occupied slots.
func TestCache_HitRefreshesRecency(t *testing.T) {
	t.Parallel()

	c := New[buffer](Options{Slots: 2})
	a := &buffer{name: "a"}
	b := &buffer{name: "b"}

	mustResolve(t, c, a, 0, true)
	mustResolve(t, c, b, 1, true)
	mustResolve(t, c, a, 0, false) // refresh a

	// b, not a, is reclaimed.
	mustResolve(t, c, &buffer{name: "c"}, 1, true)
	mustResolve(t, c, a, 0, false)
	runtime.KeepAlive(b)
}

// The shared counter advances by exactly one per Resolve, hit or miss.
func TestCache_CounterStrictlyIncreases(t *testing.T) {
	t.Parallel()

	c := New[buffer](Options{Slots: 2}).(*cache[buffer])
	a := &buffer{name: "a"}
	b := &buffer{name: "b"}
	d := &buffer{name: "c"}

	// miss, hit, miss, hit, miss-with-eviction: one tick each.
	stream := []*buffer{a, a, b, a, d}
	for i, buf := range stream {
		c.Resolve(buf)
		if want := uint64(i + 1); c.counter != want {
			t.Fatalf("after call %d: counter = %d, want %d", i, c.counter, want)
		}
	}
	runtime.KeepAlive(stream)
}

// Reset returns every slot to never-used; previously cached buffers must
// be retransmitted, filling slots from index 0 again.
func TestCache_ResetForcesRetransmission(t *testing.T) {
	t.Parallel()

	m := &captureMetrics{}
	c := New[buffer](Options{Slots: 3, Metrics: m})
	a := &buffer{name: "a"}
	b := &buffer{name: "b"}

	mustResolve(t, c, a, 0, true)
	mustResolve(t, c, b, 1, true)

	c.Reset()
	if got := c.Assigned(); got != 0 {
		t.Fatalf("Assigned() after Reset = %d, want 0", got)
	}
	if m.evicts[EvictReset] != 2 {
		t.Fatalf("evicts = %v, want 2 reset evictions", m.evicts)
	}

	// b is resolved first this time and lands in slot 0.
	mustResolve(t, c, b, 0, true)
	mustResolve(t, c, a, 1, true)
}

// OnEvict reports the reclaimed slot index and reason.
func TestCache_OnEvictCallback(t *testing.T) {
	t.Parallel()

	type evict struct {
		slot   int
		reason EvictReason
	}
	var got []evict
	c := New[buffer](Options{
		Slots:   2,
		OnEvict: func(slot int, reason EvictReason) { got = append(got, evict{slot, reason}) },
	})

	a := &buffer{name: "a"}
	b := &buffer{name: "b"}
	mustResolve(t, c, a, 0, true)
	mustResolve(t, c, b, 1, true)
	mustResolve(t, c, &buffer{name: "c"}, 0, true)

	if len(got) != 1 || got[0] != (evict{0, EvictLRU}) {
		t.Fatalf("OnEvict calls = %v, want [{0 lru}]", got)
	}
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

// A slot whose buffer was destroyed externally still competes for
// eviction with its last recorded counter: the next distinct buffer
// reuses it by the normal LRU rule, reported as a stale eviction.
func TestCache_StaleSlotIsReclaimed(t *testing.T) {
	t.Parallel()

	m := &captureMetrics{}
	c := New[buffer](Options{Slots: 2, Metrics: m})

	fillTransient(c, "dying") // slot 0, only the weak ref remains
	b := &buffer{name: "b"}
	mustResolve(t, c, b, 1, true)

	runtime.GC() // the transient buffer is unreachable; its weak ref clears

	mustResolve(t, c, &buffer{name: "c"}, 0, true)
	if m.evicts[EvictStale] != 1 {
		t.Fatalf("evicts = %v, want one stale eviction", m.evicts)
	}
	mustResolve(t, c, b, 1, false)
}

// fillTransient resolves a buffer that is unreachable as soon as the call
// returns; only the cache's weak reference sees it afterwards.
func fillTransient(c Cache[buffer], name string) int {
	slot, _ := c.Resolve(&buffer{name: name})
	return slot
}

func TestCache_NilBufferPanics(t *testing.T) {
	t.Parallel()

	c := New[buffer](Options{Slots: 2})
	defer func() {
		if recover() == nil {
			t.Fatal("Resolve(nil) must panic")
		}
	}()
	c.Resolve(nil)
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	c := New[buffer](Options{})
	if got := c.Slots(); got != DefaultSlots {
		t.Fatalf("Slots() = %d, want DefaultSlots (%d)", got, DefaultSlots)
	}
}

func TestNew_NegativeSlotsPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("New with negative Slots must panic")
		}
	}()
	New[buffer](Options{Slots: -1})
}
