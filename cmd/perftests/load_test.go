package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bid-ledger/internal/ledger"
	model "bid-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// LoadScenario defines configurable benchmark parameters
type LoadScenario struct {
	Name            string
	NumLots         int
	ReadRatio       int
	MaxBidIncrement int
	Burst           bool // if true, no delay between ops
}

// OperationMetrics collects latencies safely
type OperationMetrics struct {
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(d time.Duration) {
	om.mu.Lock()
	om.latencies = append(om.latencies, d)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (min, max, avg, p95, p99 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()
	if len(om.latencies) == 0 {
		return
	}
	latencies := om.latencies
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	min = latencies[0]
	max = latencies[len(latencies)-1]

	var total time.Duration
	for _, d := range latencies {
		total += d
	}
	avg = total / time.Duration(len(latencies))
	p95 = latencies[int(0.95*float64(len(latencies)))]
	p99 = latencies[int(0.99*float64(len(latencies)))]
	return
}

// Benchmark_Load_BidLedger runs multiple scenarios
func Benchmark_Load_BidLedger(b *testing.B) {
	scenarios := []LoadScenario{
		{"Low-Contention-WriteHeavy", 200, 0, 50, false},
		{"High-Contention-WriteHeavy", 10, 0, 20, false},
		{"Mixed-Workload", 50, 7, 30, false},
		{"ReadHeavy", 50, 9, 20, false},
		{"Edge-Case-SingleLot", 1, 5, 10, false},
		{"Peak-Burst", 50, 0, 20, true},
	}

	for _, s := range scenarios {
		b.Run(s.Name, func(b *testing.B) {
			runParallelScenario(b, s)
		})
	}
}

func runParallelScenario(b *testing.B, s LoadScenario) {
	b.ReportAllocs()

	directory, memLedger, core := newBenchCore(s.NumLots)
	benchBidder(directory, "bidder_load")

	var totalOps, successfulBids, failedBids, totalReads int64
	lotSuccess := make([]int64, s.NumLots)
	metrics := &OperationMetrics{}

	ctx := context.Background()
	start := time.Now()

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano() + int64(time.Now().Nanosecond())))

		for pb.Next() {
			lotIndex := rnd.Intn(s.NumLots)
			lotID := fmt.Sprintf("lot_%d", lotIndex)
			opType := rnd.Intn(10)

			opStart := time.Now()
			if opType < s.ReadRatio {
				if _, err := memLedger.CurrentLeader(ctx, lotID); err != nil {
					b.Logf("ignored read error: %v", err)
				}
				atomic.AddInt64(&totalReads, 1)
			} else {
				amount := decimal.NewFromInt(int64(100 + rnd.Intn(s.MaxBidIncrement*1000)))
				if _, err := core.SubmitBid(ctx, lotID, "bidder_load", amount, model.RequesterMeta{}); err != nil {
					atomic.AddInt64(&failedBids, 1)
				} else {
					atomic.AddInt64(&successfulBids, 1)
					atomic.AddInt64(&lotSuccess[lotIndex], 1)
				}
			}

			metrics.Record(time.Since(opStart))
			atomic.AddInt64(&totalOps, 1)

			if !s.Burst {
				time.Sleep(time.Millisecond)
			}
		}
	})

	elapsed := time.Since(start)
	throughput := float64(totalOps) / elapsed.Seconds()
	min, max, avg, p95, p99 := metrics.Stats()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	lastSeq, _ := memLedger.LastSeq(ctx)

	b.Logf(
		"Scenario: %s | Lots: %d | Total Ops: %d | Success Bids: %d | Failed Bids: %d | Reads: %d | Ledger Seq: %d | Elapsed: %s | Throughput: %.2f ops/sec | Latency(us) min: %.2f avg: %.2f max: %.2f p95: %.2f p99: %.2f | Memory Alloc: %.2f MB",
		s.Name, s.NumLots, totalOps, successfulBids, failedBids, totalReads, lastSeq, elapsed,
		throughput,
		float64(min.Microseconds()), float64(avg.Microseconds()), float64(max.Microseconds()),
		float64(p95.Microseconds()), float64(p99.Microseconds()),
		float64(mem.Alloc)/1024/1024,
	)

	for i, v := range lotSuccess {
		if v > 0 {
			b.Logf("Lot %d successful bids: %d", i, v)
		}
	}

	// The gapless invariant must hold under load: every admitted batch's
	// events are contiguous, so the last seq equals the total event count.
	events, total, err := memLedger.Query(ctx, ledger.Filter{}, 1, 0)
	if err != nil {
		b.Fatalf("failed to read back ledger: %v", err)
	}
	if uint64(total) != lastSeq || len(events) != total {
		b.Fatalf("ledger gap detected: %d events, last seq %d", total, lastSeq)
	}
}
