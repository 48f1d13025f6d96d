package obs

import (
	"sync"
	"testing"
	"time"

	"main/internal/schema"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.ObserveEvent(schema.NewHeader(schema.EventTick, 1, 1, 100, 150))
	m.ObserveEvent(schema.NewHeader(schema.EventTick, 1, 2, 200, 230))
	m.ObserveTick(schema.Tick{Kind: schema.KindTrade})
	m.ObserveTick(schema.Tick{Kind: schema.KindBidQuote})
	m.IncQueueDrop()

	snap := m.Snapshot()
	if snap.EventCounts[schema.EventTick] != 2 {
		t.Fatalf("tick count = %d, want 2", snap.EventCounts[schema.EventTick])
	}
	if snap.TradePrints != 1 {
		t.Fatalf("trade prints = %d, want 1", snap.TradePrints)
	}
	if snap.QueueDrops != 1 {
		t.Fatalf("queue drops = %d, want 1", snap.QueueDrops)
	}
	if snap.IngestLatency.Count != 2 {
		t.Fatalf("latency count = %d, want 2", snap.IngestLatency.Count)
	}
	if snap.IngestLatency.Min != 30 || snap.IngestLatency.Max != 50 {
		t.Fatalf("latency min/max = %v/%v, want 30/50", snap.IngestLatency.Min, snap.IngestLatency.Max)
	}
	if snap.IngestLatency.Avg != 40 {
		t.Fatalf("latency avg = %v, want 40", snap.IngestLatency.Avg)
	}
}

func TestLatencyStatsConcurrent(t *testing.T) {
	var stats LatencyStats
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= 1000; i++ {
				stats.Observe(time.Duration(i))
			}
		}()
	}
	wg.Wait()

	snap := stats.Snapshot()
	if snap.Count != 8000 {
		t.Fatalf("count = %d, want 8000", snap.Count)
	}
	if snap.Min != 1 || snap.Max != 1000 {
		t.Fatalf("min/max = %v/%v, want 1/1000", snap.Min, snap.Max)
	}
}

func TestTraceGeneratorMonotonic(t *testing.T) {
	g := NewTraceGenerator(100)
	prev := g.Next()
	for i := 0; i < 10; i++ {
		next := g.Next()
		if next <= prev {
			t.Fatalf("trace ids not increasing: %d then %d", prev, next)
		}
		prev = next
	}
}
