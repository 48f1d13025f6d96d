package strategy

import (
	"main/internal/schema"
)

// Position is per-strategy inventory state. Created flat; mutated only
// by ApplyFill; flat again clears entry price and open time.
type Position struct {
	Size            schema.Quantity
	AvgEntryPrice   schema.Price
	RealizedPnL     schema.Notional
	UnrealizedPnL   schema.Notional
	TotalCommission schema.Fee
	OpenTsNano      int64
	NumFills        uint32
	MaxSize         schema.Quantity
	MarketValue     schema.Notional
}

// NewPosition returns a flat position.
func NewPosition() *Position { return &Position{} }

// IsFlat reports a zero position.
func (p *Position) IsFlat() bool { return p.Size == 0 }

// IsLong reports a positive position.
func (p *Position) IsLong() bool { return p.Size > 0 }

// IsShort reports a negative position.
func (p *Position) IsShort() bool { return p.Size < 0 }

// Side returns the direction of the open position.
func (p *Position) Side() (schema.OrderSide, bool) {
	switch {
	case p.IsLong():
		return schema.OrderSideBuy, true
	case p.IsShort():
		return schema.OrderSideSell, true
	default:
		return schema.OrderSideUnknown, false
	}
}

// ApplyFill folds one execution into the position: open, add, reduce
// or flip. Reducing realizes P&L on the closed quantity; a flip
// realizes the whole old position and opens the remainder opposite.
func (p *Position) ApplyFill(fill schema.Fill) {
	signed := fill.Quantity
	if fill.Side == schema.OrderSideSell {
		signed = -signed
	}

	oldSize := p.Size
	newSize := oldSize + signed

	switch {
	case oldSize == 0:
		p.AvgEntryPrice = fill.Price
		p.OpenTsNano = fill.TsNano

	case (oldSize > 0 && newSize < 0) || (oldSize < 0 && newSize > 0):
		p.RealizedPnL += p.pnlAt(fill.Price, abs(oldSize))
		if newSize != 0 {
			p.AvgEntryPrice = fill.Price
			p.OpenTsNano = fill.TsNano
		}

	case abs(newSize) < abs(oldSize):
		closeQty := abs(oldSize) - abs(newSize)
		if fill.Quantity < closeQty {
			closeQty = fill.Quantity
		}
		p.RealizedPnL += p.pnlAt(fill.Price, closeQty)

	default:
		totalValue := int64(p.AvgEntryPrice)*int64(abs(oldSize)) +
			int64(fill.Price)*int64(fill.Quantity)
		p.AvgEntryPrice = schema.Price(totalValue / int64(abs(newSize)))
	}

	p.Size = newSize
	p.TotalCommission += fill.Commission
	p.NumFills++

	if abs(p.Size) > p.MaxSize {
		p.MaxSize = abs(p.Size)
	}

	if p.IsFlat() {
		p.OpenTsNano = 0
		p.AvgEntryPrice = 0
	}
}

// UpdateUnrealized marks the open position to a current price.
func (p *Position) UpdateUnrealized(current schema.Price) {
	if p.IsFlat() {
		p.UnrealizedPnL = 0
		p.MarketValue = 0
		return
	}
	p.UnrealizedPnL = p.pnlAt(current, abs(p.Size))
	p.MarketValue = schema.Notional(int64(current) * int64(abs(p.Size)))
}

// CloseAt flattens the position at price, folding the remaining
// unrealized P&L into realized. No fill is recorded.
func (p *Position) CloseAt(price schema.Price) {
	if !p.IsFlat() {
		p.RealizedPnL += p.pnlAt(price, abs(p.Size))
		p.Size = 0
		p.AvgEntryPrice = 0
		p.OpenTsNano = 0
	}
	p.UnrealizedPnL = 0
	p.MarketValue = 0
}

// TotalPnL is realized + unrealized - commission.
func (p *Position) TotalPnL() schema.Notional {
	return p.RealizedPnL + p.UnrealizedPnL - schema.Notional(p.TotalCommission)
}

// Reset returns the position to flat.
func (p *Position) Reset() { *p = Position{} }

// pnlAt prices closing quantity contracts at exit, signed by direction.
func (p *Position) pnlAt(exit schema.Price, quantity schema.Quantity) schema.Notional {
	diff := exit - p.AvgEntryPrice
	if p.IsShort() {
		diff = p.AvgEntryPrice - exit
	}
	return schema.Notional(int64(diff) * int64(quantity))
}

func abs(q schema.Quantity) schema.Quantity {
	if q < 0 {
		return -q
	}
	return q
}
