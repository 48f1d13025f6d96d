package strategy

import (
	"main/internal/schema"
)

// ImbalanceConfig parameterizes the order book imbalance strategy.
type ImbalanceConfig struct {
	Threshold   float64
	MinSpread   schema.Price
	DepthLevels int
	TradeSize   schema.Quantity
	StopLoss    schema.Price
	TakeProfit  schema.Price
}

func (c ImbalanceConfig) withDefaults() ImbalanceConfig {
	if c.Threshold == 0 {
		c.Threshold = 0.6
	}
	if c.MinSpread == 0 {
		c.MinSpread = schema.PriceFromFloat(0.25)
	}
	if c.DepthLevels == 0 {
		c.DepthLevels = 3
	}
	if c.TradeSize == 0 {
		c.TradeSize = 1
	}
	return c
}

// Imbalance trades volume imbalance between the two sides of the book:
// enter with the heavy side, exit on reversal, stop loss or take profit.
type Imbalance struct {
	cfg      ImbalanceConfig
	position Position
	metrics  Metrics

	entryPrice     schema.Price
	realizedMark   schema.Notional
	commissionMark schema.Fee
	lastFillTs     int64
	openTs         int64
	pendingExitID  string
}

// NewImbalance creates the strategy with defaults applied.
func NewImbalance(cfg ImbalanceConfig) *Imbalance {
	return &Imbalance{cfg: cfg.withDefaults()}
}

func (s *Imbalance) OnTick(tick schema.Tick, ctx Context) *schema.Order {
	mid, ok := ctx.MidPrice()
	if !ok {
		return nil
	}
	s.position.UpdateUnrealized(mid)

	if s.pendingExitID != "" {
		return nil
	}

	imbalance := s.depthImbalance(ctx)

	if s.position.IsFlat() {
		spread, ok := ctx.Spread()
		if !ok || spread < s.cfg.MinSpread {
			return nil
		}
		switch {
		case imbalance > s.cfg.Threshold:
			return NewMarketOrder(ctx.SymbolID, schema.OrderSideBuy, s.cfg.TradeSize, ctx.TsNano)
		case imbalance < -s.cfg.Threshold:
			return NewMarketOrder(ctx.SymbolID, schema.OrderSideSell, s.cfg.TradeSize, ctx.TsNano)
		}
		return nil
	}

	if s.shouldExit(imbalance, mid) {
		side, _ := s.position.Side()
		o := NewMarketOrder(ctx.SymbolID, side.Opposite(), abs(s.position.Size), ctx.TsNano)
		s.pendingExitID = o.ID
		return o
	}
	return nil
}

func (s *Imbalance) OnOrderFill(fill schema.Fill) {
	wasFlat := s.position.IsFlat()
	s.position.ApplyFill(fill)
	s.lastFillTs = fill.TsNano

	if wasFlat && !s.position.IsFlat() {
		s.entryPrice = fill.Price
		s.openTs = fill.TsNano
	}

	if fill.OrderID == s.pendingExitID {
		s.pendingExitID = ""
	}

	// one round trip completes when the position returns to flat; its
	// P&L nets the commissions of every fill in the trip
	if !wasFlat && s.position.IsFlat() {
		pnl := s.position.RealizedPnL - s.realizedMark -
			schema.Notional(s.position.TotalCommission-s.commissionMark)
		s.realizedMark = s.position.RealizedPnL
		s.commissionMark = s.position.TotalCommission
		duration := float64(fill.TsNano-s.openTs) / 1e9
		s.metrics.RecordTrade(pnl, duration)
		s.entryPrice = 0
	}
}

func (s *Imbalance) Position() *Position { return &s.position }

func (s *Imbalance) Metrics() Metrics { return s.metrics }

func (s *Imbalance) Reset() {
	s.position.Reset()
	s.metrics.Reset()
	s.entryPrice = 0
	s.realizedMark = 0
	s.commissionMark = 0
	s.lastFillTs = 0
	s.openTs = 0
	s.pendingExitID = ""
}

// depthImbalance sums volume over the top cfg.DepthLevels of each side.
func (s *Imbalance) depthImbalance(ctx Context) float64 {
	if ctx.Book == nil {
		return 0
	}
	var bidVol, askVol int64
	for i, lv := range ctx.Book.Bids() {
		if i >= s.cfg.DepthLevels {
			break
		}
		bidVol += int64(lv.Volume)
	}
	for i, lv := range ctx.Book.Asks() {
		if i >= s.cfg.DepthLevels {
			break
		}
		askVol += int64(lv.Volume)
	}
	total := bidVol + askVol
	if total == 0 {
		return 0
	}
	return float64(bidVol-askVol) / float64(total)
}

func (s *Imbalance) shouldExit(imbalance float64, current schema.Price) bool {
	if s.position.IsLong() && imbalance < 0 {
		return true
	}
	if s.position.IsShort() && imbalance > 0 {
		return true
	}

	if s.entryPrice == 0 {
		return false
	}
	move := current - s.entryPrice
	if s.position.IsShort() {
		move = s.entryPrice - current
	}
	if s.cfg.StopLoss > 0 && move < -s.cfg.StopLoss {
		return true
	}
	if s.cfg.TakeProfit > 0 && move > s.cfg.TakeProfit {
		return true
	}
	return false
}
