package backtest

import (
	"context"
	"time"

	"main/internal/book"
	"main/internal/schema"
	"main/internal/strategy"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// TickSource yields the historical ticks one run consumes. Load may
// stream from disk or a database; ticks must come back in event time
// order.
type TickSource interface {
	Load(ctx context.Context) ([]schema.Tick, error)
}

// TickSlice adapts an in-memory slice to a TickSource.
type TickSlice []schema.Tick

func (s TickSlice) Load(context.Context) ([]schema.Tick, error) { return s, nil }

// session tracks per-symbol trade statistics across one run.
type session struct {
	high      schema.Price
	low       schema.Price
	hasHigh   bool
	hasLow    bool
	volume    int64
	lastTrade schema.Price
	hasTrade  bool
}

func (s *session) observeTrade(t schema.Tick) {
	s.volume += int64(t.Volume)
	s.lastTrade = t.Price
	s.hasTrade = true
	if !s.hasHigh || t.Price > s.high {
		s.high = t.Price
		s.hasHigh = true
	}
	if !s.hasLow || t.Price < s.low {
		s.low = t.Price
		s.hasLow = true
	}
}

// Engine drives one deterministic batch run: replay ticks through the
// book, hand snapshots to the strategy, simulate fills and account the
// equity curve.
type Engine struct {
	cfg      Config
	executor *Executor
	books    *book.Manager
	perf     *Performance
	sessions map[schema.SymbolID]*session

	ticksProcessed uint64
}

// NewEngine validates the configuration and builds a run.
func NewEngine(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		executor: NewExecutor(cfg),
		books:    book.NewManager(book.WithValidation(cfg.Validation)),
		perf:     NewPerformance(cfg.InitialCapital),
		sessions: make(map[schema.SymbolID]*session),
	}, nil
}

// Books exposes the reconstructed book state after a run.
func (e *Engine) Books() *book.Manager { return e.books }

// Run replays the source through the strategy and returns the result.
// The strategy is reset first, so an Engine and a strategy pair can be
// reused across runs.
func (e *Engine) Run(ctx context.Context, strat strategy.Strategy, source TickSource) (Result, error) {
	ticks, err := source.Load(ctx)
	if err != nil {
		return Result{}, errors.Wrap(exception.ErrData, err.Error())
	}
	ticks = e.filterWindow(ticks)
	if len(ticks) == 0 {
		return Result{}, errors.Wrap(exception.ErrData, "no ticks in configured window")
	}

	strat.Reset()
	started := time.Now()

	for batchStart := 0; batchStart < len(ticks); batchStart += e.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return Result{}, errors.Wrap(exception.ErrEngine, err.Error())
		}
		batchEnd := batchStart + e.cfg.BatchSize
		if batchEnd > len(ticks) {
			batchEnd = len(ticks)
		}

		batchBegan := time.Now()
		for _, t := range ticks[batchStart:batchEnd] {
			e.step(strat, t)
		}

		var rate float64
		if secs := time.Since(batchBegan).Seconds(); secs > 0 {
			rate = float64(batchEnd-batchStart) / secs
		}
		logs.Infof("batch done, processed: %d/%d, rate: %.0f ticks/s",
			batchEnd, len(ticks), rate)
		if e.cfg.DetailedLogging {
			logs.Infof("batch equity: %s", e.perf.FinalEquity())
		}
	}

	e.markFinal(strat, ticks[len(ticks)-1].TsEventNano)

	result := buildResult(e.cfg, e.perf, strat.Metrics(), e.executor.Stats(),
		e.ticksProcessed, time.Since(started))
	logs.Infof("run complete, ticks: %d, trades: %d, return: %.2f%%",
		result.TicksProcessed, result.Trades.TotalTrades, result.TotalReturn*100)
	return result, nil
}

// step advances the simulation by one tick.
func (e *Engine) step(strat strategy.Strategy, t schema.Tick) {
	e.ticksProcessed++
	e.books.ProcessTick(t)
	st := e.books.GetOrCreate(t.SymbolID).State()

	sess := e.sessionFor(t.SymbolID)
	if t.IsTrade() {
		sess.observeTrade(t)
	}

	// resting orders see the book before the strategy acts on it
	for _, fill := range e.executor.ProcessPending(st, t.TsEventNano) {
		e.applyFill(strat, fill)
	}

	order := strat.OnTick(t, strategy.Context{
		Book:           st,
		TsNano:         t.TsEventNano,
		SessionHigh:    sess.high,
		SessionLow:     sess.low,
		HasSessionHigh: sess.hasHigh,
		HasSessionLow:  sess.hasLow,
		SessionVolume:  sess.volume,
		SymbolID:       t.SymbolID,
		MarketOpen:     true,
	})
	if order != nil {
		e.submit(strat, *order, st, t.TsEventNano)
	}

	if mark, ok := e.markPrice(st, sess); ok {
		strat.Position().UpdateUnrealized(mark)
		e.perf.UpdateEquity(t.TsEventNano, e.executor.Equity(strat.Position(), mark))
	}
}

func (e *Engine) submit(strat strategy.Strategy, order schema.Order, st *book.State, tsNano int64) {
	if e.cfg.MaxPositionSize > 0 && e.wouldExceedLimit(strat.Position(), order) {
		if e.cfg.DetailedLogging {
			logs.Warnf("order %s dropped, position limit %d", order.ID, e.cfg.MaxPositionSize)
		}
		return
	}
	fill, err := e.executor.ExecuteOrder(order, st, tsNano)
	if err != nil {
		if e.cfg.DetailedLogging {
			logs.Warnf("order %s rejected, err: %+v", order.ID, err)
		}
		return
	}
	if fill != nil {
		e.applyFill(strat, *fill)
	}
}

func (e *Engine) applyFill(strat strategy.Strategy, fill schema.Fill) {
	strat.OnOrderFill(fill)
	if e.cfg.DetailedLogging {
		logs.Infof("fill %s, side: %s, qty: %d, price: %s",
			fill.OrderID, fill.Side, fill.Quantity, fill.Price)
	}
}

// wouldExceedLimit rejects orders that would grow the absolute
// position beyond the configured cap. Risk-reducing orders always
// pass.
func (e *Engine) wouldExceedLimit(pos *strategy.Position, order schema.Order) bool {
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
	return next > e.cfg.MaxPositionSize && next > current
}

// markFinal takes a last equity sample so the curve always ends at the
// final tick.
func (e *Engine) markFinal(strat strategy.Strategy, tsNano int64) {
	for _, id := range e.books.SymbolIDs() {
		b, _ := e.books.Book(id)
		sess := e.sessionFor(id)
		if mark, ok := e.markPrice(b.State(), sess); ok {
			strat.Position().UpdateUnrealized(mark)
			e.perf.UpdateEquity(tsNano, e.executor.Equity(strat.Position(), mark))
			return
		}
	}
}

// markPrice prefers the book mid, falling back to the last trade.
func (e *Engine) markPrice(st *book.State, sess *session) (schema.Price, bool) {
	if mid, ok := st.MidPrice(); ok {
		return mid, true
	}
	if sess.hasTrade {
		return sess.lastTrade, true
	}
	return 0, false
}

func (e *Engine) sessionFor(id schema.SymbolID) *session {
	s, ok := e.sessions[id]
	if !ok {
		s = &session{}
		e.sessions[id] = s
	}
	return s
}

// filterWindow keeps ticks inside [StartNano, EndNano].
func (e *Engine) filterWindow(ticks []schema.Tick) []schema.Tick {
	if e.cfg.StartNano == 0 && e.cfg.EndNano == 0 {
		return ticks
	}
	out := ticks[:0:0]
	for _, t := range ticks {
		if t.TsEventNano < e.cfg.StartNano || t.TsEventNano > e.cfg.EndNano {
			continue
		}
		out = append(out, t)
	}
	return out
}
