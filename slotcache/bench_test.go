package slotcache

import (
	"runtime"
	"testing"
)

// benchmarkStream resolves a rotating working set of `distinct` buffers
// against a cache of `slots`. distinct <= slots is the steady-state hit
// path; distinct > slots forces an eviction on every call.
func benchmarkStream(b *testing.B, slots, distinct int) {
	c := New[buffer](Options{Slots: slots})

	bufs := make([]*buffer, distinct)
	for i := range bufs {
		bufs[i] = &buffer{}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Resolve(bufs[i%distinct])
	}
	runtime.KeepAlive(bufs)
}

// Double/triple buffering: the common steady state, all hits.
func BenchmarkResolve_Hits_3of8(b *testing.B) { benchmarkStream(b, 8, 3) }

// Full slot table, still all hits.
func BenchmarkResolve_Hits_8of8(b *testing.B) { benchmarkStream(b, 8, 8) }

// Working set wider than the table: every call misses and evicts.
func BenchmarkResolve_Thrash_9of8(b *testing.B) { benchmarkStream(b, 8, 9) }

// Platform-default table at steady state.
func BenchmarkResolve_Hits_Default(b *testing.B) { benchmarkStream(b, DefaultSlots, 3) }
