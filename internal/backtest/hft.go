package backtest

import (
	"context"
	"time"

	"main/internal/schema"
	"main/internal/strategy"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const equitySampleInterval = 1000

// HFTConfig tunes the nanosecond-resolution engine. It shares the
// batch configuration and adds the per-order minimum commission floor
// typical of a direct market access account.
type HFTConfig struct {
	Config

	// EquitySampleEvery samples the equity curve every N ticks rather
	// than on every tick.
	EquitySampleEvery int
}

// DefaultHFTConfig is DefaultConfig plus a 1.00 minimum commission.
func DefaultHFTConfig() HFTConfig {
	cfg := DefaultConfig()
	cfg.TransactionCosts.MinimumFee = schema.Fee(1 * schema.PriceScaleFactor)
	return HFTConfig{Config: cfg, EquitySampleEvery: equitySampleInterval}
}

func (c HFTConfig) withDefaults() HFTConfig {
	c.Config = c.Config.withDefaults()
	if c.EquitySampleEvery == 0 {
		c.EquitySampleEvery = equitySampleInterval
	}
	return c
}

// latentOrder is an order in flight: it becomes executable only after
// the simulated feed and order path latencies have elapsed.
type latentOrder struct {
	order     schema.Order
	readyNano int64
}

// HFTEngine replays ticks with simulated latency. Orders do not fill
// at the decision price: they wait out feed plus order latency and
// then fill against the first trade print at or after readiness.
type HFTEngine struct {
	cfg      HFTConfig
	costs    CostModel
	slippage SlippageModel
	latency  *LatencyModel
	perf     *Performance

	capital  schema.Notional
	inFlight []latentOrder
	stats    ExecutorStats

	lastTrade    schema.Price
	hasLastTrade bool
}

// NewHFTEngine validates the configuration and builds a run.
func NewHFTEngine(cfg HFTConfig) (*HFTEngine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &HFTEngine{
		cfg:      cfg,
		costs:    NewCostModel(cfg.TransactionCosts),
		slippage: NewSlippageModel(cfg.Slippage),
		latency:  NewLatencyModel(cfg.FeedLatencyNs, cfg.OrderLatencyNs, cfg.LatencySeed),
		perf:     NewPerformance(cfg.InitialCapital),
		capital:  cfg.InitialCapital,
	}, nil
}

// Run replays the tick slice through the strategy. Ticks outside
// [StartNano, EndNano] are skipped; any position left open at the end
// is force-closed at the last trade price.
func (e *HFTEngine) Run(ctx context.Context, strat strategy.Strategy, ticks []schema.Tick) (Result, error) {
	if len(ticks) == 0 {
		return Result{}, errors.Wrap(exception.ErrData, "no ticks to replay")
	}

	strat.Reset()
	started := time.Now()

	var processed uint64
	var lastTs int64
	for _, t := range ticks {
		if err := ctx.Err(); err != nil {
			return Result{}, errors.Wrap(exception.ErrEngine, err.Error())
		}
		if t.TsEventNano < e.cfg.StartNano || t.TsEventNano > e.cfg.EndNano {
			continue
		}
		processed++
		lastTs = t.TsEventNano

		if t.IsTrade() {
			e.lastTrade = t.Price
			e.hasLastTrade = true
			e.fillReady(strat, t)
		}

		// the strategy sees the tick only after feed latency
		seenAt := t.TsEventNano + e.latency.FeedLatency()
		order := strat.OnTick(t, strategy.Context{
			TsNano:     seenAt,
			SymbolID:   t.SymbolID,
			MarketOpen: true,
		})
		if order != nil {
			e.submit(strat.Position(), *order, seenAt)
		}

		if e.hasLastTrade {
			strat.Position().UpdateUnrealized(e.lastTrade)
			if processed%uint64(e.cfg.EquitySampleEvery) == 0 {
				e.perf.UpdateEquity(t.TsEventNano, e.equity(strat.Position()))
			}
		}
	}
	if processed == 0 {
		return Result{}, errors.Wrap(exception.ErrData, "no ticks in configured window")
	}

	e.forceClose(strat)
	e.perf.UpdateEquity(lastTs, e.equity(strat.Position()))

	result := buildResult(e.cfg.Config, e.perf, strat.Metrics(), e.stats,
		processed, time.Since(started))
	logs.Infof("hft run complete, ticks: %d, fills: %d, return: %.2f%%",
		processed, e.stats.OrdersFilled, result.TotalReturn*100)
	return result, nil
}

// submit puts an order in flight after the position limit check.
func (e *HFTEngine) submit(pos *strategy.Position, order schema.Order, tsNano int64) {
	e.stats.OrdersSubmitted++

	if e.cfg.MaxPositionSize > 0 {
		signed := order.Quantity
		if order.Side == schema.OrderSideSell {
			signed = -signed
		}
		next := pos.Size + signed
		if next < 0 {
			next = -next
		}
		current := pos.Size
		if current < 0 {
			current = -current
		}
		if next > e.cfg.MaxPositionSize && next > current {
			e.stats.OrdersRejected++
			return
		}
	}

	e.stats.OrdersQueued++
	e.inFlight = append(e.inFlight, latentOrder{
		order:     order,
		readyNano: tsNano + e.latency.OrderLatency(),
	})
}

// fillReady executes every in-flight order whose latency has elapsed
// against the current trade print.
func (e *HFTEngine) fillReady(strat strategy.Strategy, trade schema.Tick) {
	if len(e.inFlight) == 0 {
		return
	}
	remaining := e.inFlight[:0]
	for _, lo := range e.inFlight {
		if lo.readyNano > trade.TsEventNano {
			remaining = append(remaining, lo)
			continue
		}
		e.fillAt(strat, lo.order, trade.Price, trade.TsEventNano)
	}
	e.inFlight = remaining
}

func (e *HFTEngine) fillAt(strat strategy.Strategy, order schema.Order, market schema.Price, tsNano int64) {
	price := e.slippage.Apply(market, order.Side, order.Quantity)
	slip := price - market
	if slip < 0 {
		slip = -slip
	}
	commission := e.costs.Commission(order.Quantity)
	value := schema.Notional(int64(price) * int64(order.Quantity))

	if order.Side == schema.OrderSideBuy {
		e.capital -= value + schema.Notional(commission)
	} else {
		e.capital += value - schema.Notional(commission)
	}

	e.stats.OrdersFilled++
	e.stats.TotalCommission += commission
	e.stats.TotalSlippage += slip

	strat.OnOrderFill(schema.Fill{
		OrderID:    order.ID,
		SymbolID:   order.SymbolID,
		TsNano:     tsNano,
		Price:      price,
		Quantity:   order.Quantity,
		Side:       order.Side,
		Commission: commission,
		Slippage:   slip,
	})
}

// forceClose flattens whatever is left at the last trade price so the
// final equity carries no open exposure. The close is an accounting
// entry, not an order: no commission, no slippage, no fill callback.
func (e *HFTEngine) forceClose(strat strategy.Strategy) {
	pos := strat.Position()
	if pos.IsFlat() || !e.hasLastTrade {
		return
	}
	qty := pos.Size
	e.capital += schema.Notional(int64(e.lastTrade) * int64(qty))
	pos.CloseAt(e.lastTrade)
	logs.Warnf("force-closed %d contracts at %s", qty, e.lastTrade)
}

func (e *HFTEngine) equity(pos *strategy.Position) schema.Notional {
	eq := e.capital
	if !pos.IsFlat() && e.hasLastTrade {
		eq += schema.Notional(int64(e.lastTrade) * int64(pos.Size))
	}
	return eq
}
