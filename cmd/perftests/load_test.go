package perftests

import (
	"context"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// LoadScenario defines configurable benchmark parameters
type LoadScenario struct {
	Name            string
	NumBidders      int
	NumItems        int
	ReadRatio       int
	MaxBidIncrement int
	Burst           bool // if true, no delay between ops
}

// OperationMetrics collects latencies from concurrent workers
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

	latencies := om.latencies
	if len(latencies) == 0 {
		return
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	min = latencies[0]
	max = latencies[len(latencies)-1]

	var total time.Duration
	for _, d := range latencies {
		total += d
	}
	avg = total / time.Duration(len(latencies))
	p95 = latencies[int(0.95*float64(len(latencies)-1))]
	p99 = latencies[int(0.99*float64(len(latencies)-1))]
	return
}

// Benchmark_Load_AuctionHouse runs multiple scenarios against every backend
func Benchmark_Load_AuctionHouse(b *testing.B) {
	scenarios := []LoadScenario{
		{"Low-Contention-WriteHeavy", 200, 200, 0, 50, false},
		{"High-Contention-WriteHeavy", 500, 10, 0, 20, false},
		{"Mixed-Workload", 300, 50, 7, 30, false},
		{"ReadHeavy", 200, 50, 9, 20, false},
		{"Edge-Case-SingleItem", 100, 1, 5, 10, false},
		{"Peak-Burst", 500, 50, 0, 20, true},
	}

	for _, backend := range backendNames {
		for _, s := range scenarios {
			b.Run(backend+"/"+s.Name, func(b *testing.B) {
				runParallelScenario(b, backend, s)
			})
		}
	}
}

func runParallelScenario(b *testing.B, backend string, s LoadScenario) {
	b.ReportAllocs()

	ctx := context.Background()
	f := setupFixture(b, backend, s.NumItems, s.NumBidders, 100)

	var totalOps, successfulBids, failedBids, totalReads int64
	itemSuccess := make([]int64, s.NumItems)
	metrics := &OperationMetrics{}

	b.ResetTimer()
	start := time.Now()

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

		for pb.Next() {
			itemIndex := rnd.Intn(s.NumItems)
			itemID := f.items[itemIndex]
			opType := rnd.Intn(10)

			opStart := time.Now()
			if opType < s.ReadRatio {
				if _, err := f.svc.GetItemDetails(ctx, itemID); err != nil {
					b.Logf("ignored read error: %v", err)
				}
				atomic.AddInt64(&totalReads, 1)
			} else {
				bidAmount := float64(100 + rnd.Intn(s.MaxBidIncrement))
				bidder := f.bidders[rnd.Intn(len(f.bidders))]
				if _, err := f.svc.PlaceBid(ctx, bidder, itemID, bidAmount); err != nil {
					atomic.AddInt64(&failedBids, 1)
				} else {
					atomic.AddInt64(&successfulBids, 1)
					atomic.AddInt64(&itemSuccess[itemIndex], 1)
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

	b.Logf(
		"Scenario: %s/%s | Items: %d | Total Ops: %d | Success Bids: %d | Rejected Bids: %d | Reads: %d | Elapsed: %s | Throughput: %.2f ops/sec | Latency(us) min: %.2f avg: %.2f max: %.2f p95: %.2f p99: %.2f | Memory Alloc: %.2f MB",
		backend, s.Name, s.NumItems, totalOps, successfulBids, failedBids, totalReads, elapsed,
		throughput,
		float64(min.Microseconds()), float64(avg.Microseconds()), float64(max.Microseconds()),
		float64(p95.Microseconds()), float64(p99.Microseconds()),
		float64(mem.Alloc)/1024/1024,
	)

	// accepted bids on one lot must be strictly increasing
	for i, v := range itemSuccess {
		if v == 0 {
			continue
		}
		bids, err := f.svc.GetBidsForItem(ctx, f.items[i])
		if err != nil {
			b.Fatalf("bids for item %d: %v", f.items[i], err)
		}
		if int64(len(bids)) != v {
			b.Fatalf("item %d: %d bids stored, %d accepted", f.items[i], len(bids), v)
		}
		for j := 1; j < len(bids); j++ {
			if bids[j].Amount <= bids[j-1].Amount {
				b.Fatalf("item %d: bid %v accepted after %v", f.items[i], bids[j].Amount, bids[j-1].Amount)
			}
		}
	}
}
