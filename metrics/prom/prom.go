// Package prom adapts slotcache.Metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/compohal/slotmirror/slotcache"
)

// Adapter implements slotcache.Metrics and exports Prometheus
// counters/gauges. Safe for concurrent use; all Prometheus metric types
// are goroutine-safe, so one Adapter may be shared by every cache of a
// mirror.Set.
type Adapter struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	evicts   *prometheus.CounterVec
	assigned prometheus.Gauge
	slots    prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Buffers already cached by the remote side (payload elided)",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Buffers that had to be transmitted",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Slot reassignments by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		assigned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "slots_assigned",
			Help:        "Slots holding an assignment",
			ConstLabels: constLabels,
		}),
		slots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "slots_total",
			Help:        "Slot table capacity",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.assigned, a.slots)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter labelled with the reason
// (EvictReason.String is a stable label value).
func (a *Adapter) Evict(r slotcache.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Size updates the occupancy gauges.
func (a *Adapter) Size(assigned, slots int) {
	a.assigned.Set(float64(assigned))
	a.slots.Set(float64(slots))
}

// Compile-time check: ensure Adapter implements slotcache.Metrics.
var _ slotcache.Metrics = (*Adapter)(nil)
