package strategy

import (
	"main/internal/book"
	"main/internal/schema"
)

// Strategy is the trading logic contract held by an engine for the
// lifetime of one run.
type Strategy interface {
	// OnTick is called for every market data event. A non-nil return
	// is routed to the fill simulator.
	OnTick(tick schema.Tick, ctx Context) *schema.Order

	// OnOrderFill reports a simulated execution of one of the
	// strategy's orders.
	OnOrderFill(fill schema.Fill)

	// Position returns the strategy's current position.
	Position() *Position

	// Metrics returns a snapshot of the strategy's own accounting.
	Metrics() Metrics

	// Reset clears all internal state before a fresh run.
	Reset()
}

// Context is the per-tick market snapshot handed to a strategy. The
// book state is a read-only reference into the engine's book; the
// strategy must not retain it across ticks.
type Context struct {
	Book           *book.State
	TsNano         int64
	SessionHigh    schema.Price
	SessionLow     schema.Price
	HasSessionHigh bool
	HasSessionLow  bool
	SessionVolume  int64
	SymbolID       schema.SymbolID
	MarketOpen     bool
}

// Spread returns the current book spread.
func (c Context) Spread() (schema.Price, bool) {
	if c.Book == nil {
		return 0, false
	}
	return c.Book.Spread()
}

// MidPrice returns the current book mid price.
func (c Context) MidPrice() (schema.Price, bool) {
	if c.Book == nil {
		return 0, false
	}
	return c.Book.MidPrice()
}

// Imbalance returns the current book volume imbalance.
func (c Context) Imbalance() float64 {
	if c.Book == nil {
		return 0
	}
	return c.Book.Imbalance()
}

// NearSessionHigh reports whether mid is within threshold of the
// session high.
func (c Context) NearSessionHigh(threshold schema.Price) bool {
	mid, ok := c.MidPrice()
	if !ok || !c.HasSessionHigh {
		return false
	}
	return c.SessionHigh-mid <= threshold
}

// NearSessionLow reports whether mid is within threshold of the
// session low.
func (c Context) NearSessionLow(threshold schema.Price) bool {
	mid, ok := c.MidPrice()
	if !ok || !c.HasSessionLow {
		return false
	}
	return mid-c.SessionLow <= threshold
}
