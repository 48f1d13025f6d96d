package backtest

import (
	"math/rand"

	"main/internal/schema"
)

// CostModel computes commission for executed quantity.
type CostModel struct {
	perContract schema.Fee
	exchange    schema.Fee
	regulatory  schema.Fee
	minimum     schema.Fee
}

// NewCostModel builds a cost model from configuration.
func NewCostModel(cfg CostConfig) CostModel {
	return CostModel{
		perContract: cfg.CommissionPerContract,
		exchange:    cfg.ExchangeFee,
		regulatory:  cfg.RegulatoryFee,
		minimum:     cfg.MinimumFee,
	}
}

// Commission is (per-contract + exchange + regulatory) x |quantity|,
// floored at the minimum fee.
func (m CostModel) Commission(quantity schema.Quantity) schema.Fee {
	if quantity < 0 {
		quantity = -quantity
	}
	fee := schema.Fee(int64(m.perContract+m.exchange+m.regulatory) * int64(quantity))
	if fee < m.minimum {
		fee = m.minimum
	}
	return fee
}

// RoundTrip is the cost of entering and exiting the same quantity.
func (m CostModel) RoundTrip(quantity schema.Quantity) schema.Fee {
	return m.Commission(quantity) * 2
}

// SlippageModel adjusts a fill price away from the market price:
// fixed + volume-proportional + price-proportional market impact.
type SlippageModel struct {
	fixed        schema.Price
	volumeCoef   float64
	marketImpact float64
}

// NewSlippageModel builds a slippage model from configuration.
func NewSlippageModel(cfg SlippageConfig) SlippageModel {
	return SlippageModel{
		fixed:        cfg.Fixed,
		volumeCoef:   cfg.VolumeCoef,
		marketImpact: cfg.MarketImpact,
	}
}

// Slippage returns the unsigned price adjustment for a fill of
// quantity contracts against marketPrice.
func (m SlippageModel) Slippage(quantity schema.Quantity, marketPrice schema.Price) schema.Price {
	if quantity < 0 {
		quantity = -quantity
	}
	slip := m.fixed
	slip += schema.PriceFromFloat(float64(quantity) * m.volumeCoef)
	slip += schema.PriceFromFloat(float64(quantity) * m.marketImpact * marketPrice.Float64())
	return slip
}

// Apply signs the slippage by side: buys pay up, sells give up.
func (m SlippageModel) Apply(marketPrice schema.Price, side schema.OrderSide, quantity schema.Quantity) schema.Price {
	slip := m.Slippage(quantity, marketPrice)
	if side == schema.OrderSideSell {
		return marketPrice - slip
	}
	return marketPrice + slip
}

// LatencyModel samples feed and order latencies: base plus uniform
// jitter of one tenth of the base. The random source is injected and
// seeded so runs stay reproducible.
type LatencyModel struct {
	feedNs  int64
	orderNs int64
	rng     *rand.Rand
}

// NewLatencyModel builds a latency model with a seeded source.
func NewLatencyModel(feedNs, orderNs, seed int64) *LatencyModel {
	return &LatencyModel{
		feedNs:  feedNs,
		orderNs: orderNs,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// FeedLatency samples one market data delivery delay.
func (m *LatencyModel) FeedLatency() int64 {
	return m.feedNs + m.jitter(m.feedNs/10)
}

// OrderLatency samples one order submission delay.
func (m *LatencyModel) OrderLatency() int64 {
	return m.orderNs + m.jitter(m.orderNs/10)
}

func (m *LatencyModel) jitter(rangeNs int64) int64 {
	if rangeNs <= 0 {
		return 0
	}
	return m.rng.Int63n(rangeNs)
}
