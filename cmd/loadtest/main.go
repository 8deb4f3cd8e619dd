// Command loadtest measures raw message throughput of the actor runtime.
//
// SENDERS goroutines push N fire-and-forget messages onto a fixed pool of
// counting actors, routed by key. When the senders are done, the
// per-member counts are collected with requests and checked against N;
// requests ride the same mailboxes, so a reply proves the member drained
// everything sent before it.
//
// Tunables (env):
//
//	N       total messages          (default 1_000_000)
//	SENDERS concurrent senders      (default 4)
//	B       progress batch size     (default 100_000)
//	ACTORS  pool size               (default 8)
//	MAILBOX mailbox capacity        (default 1024)
//	KEYS    distinct routing keys   (default 256)
//	METRICS serve /metrics on :2121 (default 0)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	promadapter "github.com/codewandler/troupe-go/adapters/prometheus"
	"github.com/codewandler/troupe-go/core/actor"
	"github.com/codewandler/troupe-go/core/events"
	"github.com/codewandler/troupe-go/core/group"
	"github.com/codewandler/troupe-go/core/system"
)

// === Config ===

var (
	logLevel    = slog.LevelInfo
	N           = getEnvInt("N", 1_000_000)
	senders     = getEnvInt("SENDERS", 4)
	batchSize   = getEnvInt("B", 100_000)
	poolSize    = getEnvInt("ACTORS", 8)
	mailboxSize = getEnvInt("MAILBOX", 1024)
	keyCount    = getEnvInt("KEYS", 256)
	useMetrics  = getEnvBool("METRICS", false)
)

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "0")
	if v == "" {
		return fallback
	}
	if v == "1" || strings.ToLower(v) == "true" {
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

// === Domain ===

type (
	shard struct {
		n int
	}

	inc   struct{}
	total struct{}
)

func shardBindings() []actor.Binding[*shard] {
	return []actor.Binding[*shard]{
		actor.On(func(self *shard, ctx *actor.Context[*shard], msg inc) error {
			self.n++
			return nil
		}),
		actor.OnRequest(func(self *shard, ctx *actor.Context[*shard], msg total) (int, error) {
			return self.n, nil
		}),
	}
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	fmt.Printf(" messages: %d\n", N)
	fmt.Printf("  senders: %d\n", senders)
	fmt.Printf("  members: %d\n", poolSize)
	fmt.Printf("  mailbox: %d\n", mailboxSize)
	fmt.Printf("     keys: %d\n", keyCount)
	fmt.Printf("  metrics: %s\n", strconv.FormatBool(useMetrics))

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	sysOpts := system.Options{ID: "loadtest", Context: ctx, Log: log}
	if useMetrics {
		m := promadapter.NewAllMetrics(prometheus.DefaultRegisterer)
		sysOpts.Events = events.NewStream(events.StreamOpts{Log: log, Metrics: m.Events})
		defer sysOpts.Events.Close()
		sysOpts.Metrics = m.Actor

		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(":2121", mux); err != nil {
				log.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		log.Info("metrics", slog.String("url", "http://localhost:2121/metrics"))
	}
	sys := system.New(sysOpts)

	pool, err := group.NewPool(group.PoolOptions[*shard]{
		System: sys,
		Size:   poolSize,
		Prefix: "shard",
		Seed:   "loadtest",
		Actor:  actor.Options{MailboxSize: mailboxSize},
		New: func(member string) (*shard, []actor.Binding[*shard], error) {
			return &shard{}, shardBindings(), nil
		},
	})
	checkErr(err)

	// resolve each key's member once, the way a caller would
	routes := make([]*actor.Addr[*shard], keyCount)
	for i := range routes {
		routes[i] = pool.Route(fmt.Sprintf("key-%d", i))
	}

	// === START ===

	log.Info("==================================")
	log.Info("Starting ...")

	startAt := time.Now()

	var (
		sent     atomic.Int64
		lastNano atomic.Int64
	)
	lastNano.Store(startAt.UnixNano())

	g, sendCtx := errgroup.WithContext(ctx)
	per := N / senders
	for s := range senders {
		first := s * per
		count := per
		if s == senders-1 {
			count = N - first
		}
		g.Go(func() error {
			for i := first; i < first+count; i++ {
				if err := actor.Send(sendCtx, routes[i%keyCount], inc{}); err != nil {
					return fmt.Errorf("send %d: %w", i, err)
				}

				j := sent.Add(1)
				if j%1_000 == 0 {
					print(".")
				}
				if j%int64(batchSize) == 0 {
					mu := getMemUsage()

					n := time.Now()
					took := n.Sub(time.Unix(0, lastNano.Swap(n.UnixNano())))
					fmt.Printf(" | %7d msgs | %6d ms |  %7d msgs/s | (%d / %d) MiB mem (sys) |\n", batchSize, took.Milliseconds(), int(float64(batchSize)/took.Seconds()), mu.Alloc/1024/1024, mu.Sys/1024/1024)
				}
			}
			return nil
		})
	}
	checkErr(g.Wait())

	// collect: a reply means the member has worked off everything before it
	sum := 0
	for _, addr := range pool.Addrs() {
		n, err := actor.Request[int](ctx, addr, total{})
		checkErr(err)
		sum += n
	}

	// === stats ===
	println("")
	println("==========================================")

	doneAt := time.Now()
	took := doneAt.Sub(startAt)
	runtime.GC()

	fmt.Printf("total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("         sent: %d\n", N)
	fmt.Printf("     received: %d\n", sum)
	fmt.Printf(" avg. msgs/s : %d\n", int(float64(N)/took.Seconds()))

	if sum != N {
		panic(fmt.Sprintf("lost messages: sent %d, received %d", N, sum))
	}

	checkErr(pool.Close(ctx))
	checkErr(sys.Stop(ctx))
}

// === stats helpers ===

type MemUsage struct {
	Alloc      uint64 // bytes allocated and not yet freed (heap)
	TotalAlloc uint64 // cumulative bytes allocated
	Sys        uint64 // total bytes obtained from OS
	NumGC      uint32 // gc cycles
}

func getMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
	}
}

// === Helpers ===

func checkErr(err error) {
	if err != nil {
		panic(err)
	}
}
