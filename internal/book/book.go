package book

import (
	"fmt"
	"strings"
	"time"

	"main/internal/schema"

	"github.com/yanun0323/logs"
)

// Stats aggregates per-book counters and market quality measures.
type Stats struct {
	TotalUpdates       uint64
	AddOps             uint64
	UpdateOps          uint64
	RemoveOps          uint64
	BookResets         uint64
	CrossedEvents      uint64
	ValidationFailures uint64

	MaxSpread schema.Price
	MinSpread schema.Price
	AvgSpread schema.Price

	MaxDepthBid int
	MaxDepthAsk int

	ProcessingTime time.Duration

	spreadSamples uint64
	spreadSum     int64
}

// Book wraps state, processor and validator for one instrument.
type Book struct {
	state     *State
	proc      Processor
	validator *Validator
	validate  bool
	stats     Stats
	startedAt time.Time
}

// Option configures a Book.
type Option func(*Book)

// WithValidation toggles the inline invariant check per tick.
func WithValidation(enabled bool) Option {
	return func(b *Book) { b.validate = enabled }
}

// WithValidator swaps the validator used by the inline check.
func WithValidator(v *Validator) Option {
	return func(b *Book) {
		if v != nil {
			b.validator = v
		}
	}
}

// New creates a book for one instrument. Validation is on by default.
func New(symbolID schema.SymbolID, opts ...Option) *Book {
	b := &Book{
		state:     NewState(symbolID),
		validator: NewValidator(false),
		validate:  true,
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ProcessTick applies one tick: mutate, validate, account. Validation
// failures are counted and logged, never raised.
func (b *Book) ProcessTick(t schema.Tick) {
	start := time.Now()

	b.proc.Apply(b.state, t)

	if b.validate {
		res := b.validator.Validate(b.state)
		if !res.Valid() {
			b.stats.ValidationFailures++
			for _, err := range res.Errors {
				logs.Warnf("book %d invariant: %+v", b.state.symbolID, err)
			}
		}
		for _, warn := range res.Warnings {
			logs.Warnf("book %d advisory: %+v", b.state.symbolID, warn)
		}
	}

	b.updateStats()
	b.stats.ProcessingTime += time.Since(start)
	b.stats.TotalUpdates++
}

// BatchResult summarizes one ProcessBatch call.
type BatchResult struct {
	TicksProcessed int
	Duration       time.Duration
	TicksPerSecond float64
	SequenceFrom   uint64
	SequenceTo     uint64
}

// ProcessBatch applies ticks in order and reports throughput.
func (b *Book) ProcessBatch(ticks []schema.Tick) BatchResult {
	start := time.Now()
	from := b.state.sequence

	for _, t := range ticks {
		b.ProcessTick(t)
	}

	elapsed := time.Since(start)
	var rate float64
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(len(ticks)) / secs
	}
	return BatchResult{
		TicksProcessed: len(ticks),
		Duration:       elapsed,
		TicksPerSecond: rate,
		SequenceFrom:   from,
		SequenceTo:     b.state.sequence,
	}
}

// State exposes the book state read-only.
func (b *Book) State() *State { return b.state }

// Depth snapshots up to maxLevels per side.
func (b *Book) Depth(maxLevels int) Depth {
	return SnapshotDepth(b.state, maxLevels)
}

// Validate runs an explicit audit regardless of the inline setting.
func (b *Book) Validate() ValidationResult {
	return b.validator.Validate(b.state)
}

// Stats returns a copy of the accumulated statistics.
func (b *Book) Stats() Stats {
	s := b.stats
	proc := b.proc.Stats()
	s.AddOps = proc.AddOps
	s.UpdateOps = proc.UpdateOps
	s.RemoveOps = proc.RemoveOps
	s.BookResets = proc.BookResets
	s.CrossedEvents = proc.CrossedEvents
	return s
}

// ProcessingRate returns ticks processed per wall-clock second since
// book creation.
func (b *Book) ProcessingRate() float64 {
	elapsed := time.Since(b.startedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(b.stats.TotalUpdates) / elapsed
}

// Report renders a human-readable performance summary.
func (b *Book) Report() string {
	stats := b.Stats()

	var avgLatencyUs float64
	if stats.TotalUpdates > 0 {
		avgLatencyUs = float64(stats.ProcessingTime.Microseconds()) / float64(stats.TotalUpdates)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Order Book Report: symbol %d\n", b.state.symbolID)
	fmt.Fprintf(&sb, "  total updates:        %d\n", stats.TotalUpdates)
	fmt.Fprintf(&sb, "  processing rate:      %.0f ops/sec\n", b.ProcessingRate())
	fmt.Fprintf(&sb, "  adds/updates/removes: %d/%d/%d\n", stats.AddOps, stats.UpdateOps, stats.RemoveOps)
	fmt.Fprintf(&sb, "  book resets:          %d\n", stats.BookResets)
	fmt.Fprintf(&sb, "  crossed events:       %d\n", stats.CrossedEvents)
	fmt.Fprintf(&sb, "  validation failures:  %d\n", stats.ValidationFailures)
	fmt.Fprintf(&sb, "  spread max/min/avg:   %s/%s/%s\n", stats.MaxSpread, stats.MinSpread, stats.AvgSpread)
	fmt.Fprintf(&sb, "  max depth bid/ask:    %d/%d\n", stats.MaxDepthBid, stats.MaxDepthAsk)
	fmt.Fprintf(&sb, "  current depth:        %d/%d\n", b.state.BidDepth(), b.state.AskDepth())
	fmt.Fprintf(&sb, "  avg latency:          %.2f us\n", avgLatencyUs)
	if bid, ok := b.state.BestBid(); ok {
		fmt.Fprintf(&sb, "  best bid:             %s\n", bid)
	}
	if ask, ok := b.state.BestAsk(); ok {
		fmt.Fprintf(&sb, "  best ask:             %s\n", ask)
	}
	if spread, ok := b.state.Spread(); ok {
		fmt.Fprintf(&sb, "  spread:               %s\n", spread)
	}
	return sb.String()
}

func (b *Book) updateStats() {
	if spread, ok := b.state.Spread(); ok {
		if b.stats.spreadSamples == 0 || spread > b.stats.MaxSpread {
			b.stats.MaxSpread = spread
		}
		if b.stats.spreadSamples == 0 || spread < b.stats.MinSpread {
			b.stats.MinSpread = spread
		}
		b.stats.spreadSamples++
		b.stats.spreadSum += int64(spread)
		b.stats.AvgSpread = schema.Price(b.stats.spreadSum / int64(b.stats.spreadSamples))
	}

	if depth := b.state.BidDepth(); depth > b.stats.MaxDepthBid {
		b.stats.MaxDepthBid = depth
	}
	if depth := b.state.AskDepth(); depth > b.stats.MaxDepthAsk {
		b.stats.MaxDepthAsk = depth
	}
}
