// Command slotbench streams synthetic frames through per-output slot
// caches and reports how much payload transmission the mirror elides.
// Optional pprof/Prometheus endpoints can be enabled for inspection.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/compohal/slotmirror/metrics/prom"
	"github.com/compohal/slotmirror/mirror"
	"github.com/compohal/slotmirror/slotcache"
)

// texture is the synthetic buffer type; identity only.
type texture struct {
	id int
}

func main() {
	// ---- Flags ----
	var (
		slots    = flag.Int("slots", slotcache.DefaultSlots, "slots per output (remote table capacity)")
		outputs  = flag.Int("outputs", 4, "number of display outputs")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")

		pool  = flag.Int("pool", 96, "distinct buffers per output")
		zipfS = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (reuse skew)")
		zipfV = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", "", "serve Prometheus metrics at addr; empty = disabled")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			logger.Info("pprof serving", zap.String("addr", *pprofAddr))
			logger.Error("pprof server stopped", zap.Error(http.ListenAndServe(*pprofAddr, nil)))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	var metrics slotcache.Metrics
	if *metricsAddr != "" {
		metrics = prom.New(nil, "slotmirror", "bench", nil)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			logger.Info("metrics serving", zap.String("addr", *metricsAddr))
			logger.Error("metrics server stopped", zap.Error(http.ListenAndServe(*metricsAddr, nil)))
		}()
	}

	set := mirror.NewSet[int, texture](mirror.Config[int]{
		Slots:   *slots,
		Metrics: metrics,
	})

	// ---- Load generation: one goroutine per output ----
	var frames, sent uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	logger.Info("benchmark starting",
		zap.Int("outputs", *outputs),
		zap.Int("slots", *slots),
		zap.Int("pool", *pool),
		zap.Duration("duration", *duration),
		zap.Int64("seed", *seed))

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(*outputs)
	for out := 0; out < *outputs; out++ {
		go func(out int) {
			defer wg.Done()

			// Each output gets its own RNG + Zipf (rand.Rand is NOT
			// goroutine-safe). The skew makes a few buffers hot, the
			// way real swapchains reuse a small working set.
			r := rand.New(rand.NewSource(*seed + int64(out)*9973))
			z := rand.NewZipf(r, *zipfS, *zipfV, uint64(*pool-1))

			bufs := make([]*texture, *pool)
			for i := range bufs {
				bufs[i] = &texture{id: out*(*pool) + i}
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&frames, 1)
				if _, transmit := set.Resolve(out, bufs[z.Uint64()]); transmit != nil {
					atomic.AddUint64(&sent, 1)
				}
			}
		}(out)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	framesN := atomic.LoadUint64(&frames)
	sentN := atomic.LoadUint64(&sent)
	elided := framesN - sentN

	elideRate := 0.0
	if framesN > 0 {
		elideRate = float64(elided) / float64(framesN) * 100
	}

	fmt.Printf("outputs=%d slots=%d pool=%d dur=%v seed=%d\n",
		*outputs, *slots, *pool, elapsed, *seed)
	fmt.Printf("frames=%d (%.0f frames/s)\n", framesN, float64(framesN)/elapsed.Seconds())
	fmt.Printf("payloads sent=%d  elided=%d  elide-rate=%.2f%%\n", sentN, elided, elideRate)
}
