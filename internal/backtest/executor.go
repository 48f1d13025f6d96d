package backtest

import (
	"main/internal/book"
	"main/internal/schema"
	"main/internal/strategy"

	"github.com/yanun0323/errors"
)

var (
	// ErrInsufficientCapital rejects a buy the account cannot cover.
	ErrInsufficientCapital = errors.New("backtest: insufficient capital")
	// ErrNoMarketPrice rejects an order when the opposing side is empty.
	ErrNoMarketPrice = errors.New("backtest: no opposing price for fill")
)

// ExecutorStats counts order flow through one run.
type ExecutorStats struct {
	OrdersSubmitted uint64
	OrdersFilled    uint64
	OrdersQueued    uint64
	OrdersRejected  uint64
	OrdersCancelled uint64
	TotalCommission schema.Fee
	TotalSlippage   schema.Price
}

// Executor simulates fills against book state and keeps the cash
// account. Market orders fill at the opposing best price adjusted by
// the slippage model; resting limit orders fill at their limit price
// once the market crosses it.
type Executor struct {
	costs    CostModel
	slippage SlippageModel

	capital schema.Notional
	pending []schema.Order
	stats   ExecutorStats
}

// NewExecutor builds an executor funded with the configured capital.
func NewExecutor(cfg Config) *Executor {
	return &Executor{
		costs:    NewCostModel(cfg.TransactionCosts),
		slippage: NewSlippageModel(cfg.Slippage),
		capital:  cfg.InitialCapital,
	}
}

// Capital is the current cash balance.
func (e *Executor) Capital() schema.Notional { return e.capital }

// Stats returns a copy of the order flow counters.
func (e *Executor) Stats() ExecutorStats { return e.stats }

// PendingCount is the number of resting orders.
func (e *Executor) PendingCount() int { return len(e.pending) }

// ExecuteOrder submits one order against the current book. It returns
// the fill for immediate executions, nil when the order went to the
// pending queue, or an error when the order was rejected.
func (e *Executor) ExecuteOrder(order schema.Order, st *book.State, tsNano int64) (*schema.Fill, error) {
	e.stats.OrdersSubmitted++

	switch order.Type {
	case schema.OrderTypeMarket:
		fill, err := e.fillMarket(order, st, tsNano)
		if err != nil {
			e.stats.OrdersRejected++
			return nil, err
		}
		return fill, nil

	case schema.OrderTypeLimit:
		if fill := e.tryFillLimit(order, st, tsNano); fill != nil {
			return fill, nil
		}
		if order.TimeInForce != schema.TimeInForceGTC {
			e.stats.OrdersCancelled++
			return nil, nil
		}
		e.queue(order)
		return nil, nil

	case schema.OrderTypeStop, schema.OrderTypeStopLimit:
		if !e.stopTriggered(order, st) {
			e.queue(order)
			return nil, nil
		}
		if order.Type == schema.OrderTypeStopLimit {
			// the trigger latches: from here the order is a plain limit
			order.Type = schema.OrderTypeLimit
			if fill := e.tryFillLimit(order, st, tsNano); fill != nil {
				return fill, nil
			}
			e.queue(order)
			return nil, nil
		}
		fill, err := e.fillMarket(order, st, tsNano)
		if err != nil {
			e.stats.OrdersRejected++
			return nil, err
		}
		return fill, nil

	default:
		e.stats.OrdersRejected++
		return nil, errors.Errorf("backtest: unsupported order type %d", order.Type)
	}
}

// ProcessPending re-checks resting orders against the book in
// submission order and returns any fills produced. A triggered
// stop-limit that cannot fill yet is kept as a plain limit so the
// trigger latches across scans.
func (e *Executor) ProcessPending(st *book.State, tsNano int64) []schema.Fill {
	if len(e.pending) == 0 {
		return nil
	}

	var fills []schema.Fill
	remaining := e.pending[:0]
	for _, order := range e.pending {
		var fill *schema.Fill
		switch order.Type {
		case schema.OrderTypeLimit:
			fill = e.tryFillLimit(order, st, tsNano)

		case schema.OrderTypeStop, schema.OrderTypeStopLimit:
			if !e.stopTriggered(order, st) {
				break
			}
			if order.Type == schema.OrderTypeStopLimit {
				order.Type = schema.OrderTypeLimit
				fill = e.tryFillLimit(order, st, tsNano)
				break
			}
			f, err := e.fillMarket(order, st, tsNano)
			if err != nil {
				e.stats.OrdersRejected++
				continue
			}
			fill = f
		}
		if fill != nil {
			fills = append(fills, *fill)
			continue
		}
		remaining = append(remaining, order)
	}
	e.pending = remaining
	return fills
}

// CancelAll drops every resting order.
func (e *Executor) CancelAll() {
	e.stats.OrdersCancelled += uint64(len(e.pending))
	e.pending = e.pending[:0]
}

// Equity is cash plus the open position marked to price.
func (e *Executor) Equity(position *strategy.Position, markPrice schema.Price) schema.Notional {
	equity := e.capital
	if position != nil && !position.IsFlat() {
		equity += schema.Notional(int64(markPrice) * int64(position.Size))
	}
	return equity
}

func (e *Executor) fillMarket(order schema.Order, st *book.State, tsNano int64) (*schema.Fill, error) {
	market, ok := e.marketPrice(order.Side, st)
	if !ok {
		return nil, errors.Wrapf(ErrNoMarketPrice, "order %s side %s", order.ID, order.Side)
	}
	price := e.slippage.Apply(market, order.Side, order.Quantity)
	slip := price - market
	if slip < 0 {
		slip = -slip
	}
	return e.settle(order, price, slip, tsNano)
}

// tryFillLimit fills at the limit price when the market crosses it.
func (e *Executor) tryFillLimit(order schema.Order, st *book.State, tsNano int64) *schema.Fill {
	market, ok := e.marketPrice(order.Side, st)
	if !ok {
		return nil
	}
	crossed := (order.Side == schema.OrderSideBuy && market <= order.LimitPrice) ||
		(order.Side == schema.OrderSideSell && market >= order.LimitPrice)
	if !crossed {
		return nil
	}
	fill, err := e.settle(order, order.LimitPrice, 0, tsNano)
	if err != nil {
		e.stats.OrdersRejected++
		return nil
	}
	return fill
}

// stopTriggered checks the stop price against the same-side market:
// a buy stop arms on the ask rising through it, a sell stop on the
// bid falling through it.
func (e *Executor) stopTriggered(order schema.Order, st *book.State) bool {
	market, ok := e.marketPrice(order.Side, st)
	if !ok {
		return false
	}
	if order.Side == schema.OrderSideBuy {
		return market >= order.StopPrice
	}
	return market <= order.StopPrice
}

// settle books the cash movement and emits the fill. Buys debit value
// plus commission; sells credit value net of commission.
func (e *Executor) settle(order schema.Order, price, slip schema.Price, tsNano int64) (*schema.Fill, error) {
	commission := e.costs.Commission(order.Quantity)
	value := schema.Notional(int64(price) * int64(order.Quantity))

	if order.Side == schema.OrderSideBuy {
		cost := value + schema.Notional(commission)
		if cost > e.capital {
			return nil, errors.Wrapf(ErrInsufficientCapital,
				"order %s needs %s, have %s", order.ID, cost, e.capital)
		}
		e.capital -= cost
	} else {
		e.capital += value - schema.Notional(commission)
	}

	e.stats.OrdersFilled++
	e.stats.TotalCommission += commission
	e.stats.TotalSlippage += slip

	return &schema.Fill{
		OrderID:    order.ID,
		SymbolID:   order.SymbolID,
		TsNano:     tsNano,
		Price:      price,
		Quantity:   order.Quantity,
		Side:       order.Side,
		Commission: commission,
		Slippage:   slip,
	}, nil
}

// marketPrice is the opposing best: ask for buys, bid for sells.
func (e *Executor) marketPrice(side schema.OrderSide, st *book.State) (schema.Price, bool) {
	if st == nil {
		return 0, false
	}
	if side == schema.OrderSideBuy {
		return st.BestAsk()
	}
	return st.BestBid()
}

func (e *Executor) queue(order schema.Order) {
	e.stats.OrdersQueued++
	e.pending = append(e.pending, order)
}
