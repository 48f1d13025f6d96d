package strategy

import (
	"testing"

	"main/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(side schema.OrderSide, qty int64, price string, ts int64) schema.Fill {
	p, err := schema.ParsePrice(price)
	if err != nil {
		panic(err)
	}
	return schema.Fill{
		OrderID:  "test",
		SymbolID: 1,
		TsNano:   ts,
		Price:    p,
		Quantity: schema.Quantity(qty),
		Side:     side,
	}
}

func TestPositionOpenAndAdd(t *testing.T) {
	p := NewPosition()
	p.ApplyFill(fill(schema.OrderSideBuy, 10, "4500.00", 100))

	require.Equal(t, schema.Quantity(10), p.Size)
	assert.Equal(t, "4500.0000", p.AvgEntryPrice.String())
	assert.Equal(t, int64(100), p.OpenTsNano)

	// add at a higher price blends the average
	p.ApplyFill(fill(schema.OrderSideBuy, 10, "4501.00", 200))
	require.Equal(t, schema.Quantity(20), p.Size)
	assert.Equal(t, "4500.5000", p.AvgEntryPrice.String())
	assert.Equal(t, schema.Quantity(20), p.MaxSize)
}

func TestPositionReduceRealizesPnL(t *testing.T) {
	p := NewPosition()
	p.ApplyFill(fill(schema.OrderSideBuy, 10, "4500.00", 100))
	p.ApplyFill(fill(schema.OrderSideSell, 4, "4502.00", 200))

	require.Equal(t, schema.Quantity(6), p.Size)
	// 4 contracts x 2.00
	assert.Equal(t, "8.0000", p.RealizedPnL.String())
	// average entry unchanged on reduce
	assert.Equal(t, "4500.0000", p.AvgEntryPrice.String())
}

func TestPositionFlatClearsEntry(t *testing.T) {
	p := NewPosition()
	p.ApplyFill(fill(schema.OrderSideBuy, 10, "4500.00", 100))
	p.ApplyFill(fill(schema.OrderSideSell, 10, "4499.00", 200))

	require.True(t, p.IsFlat())
	assert.Zero(t, p.AvgEntryPrice)
	assert.Zero(t, p.OpenTsNano)
	assert.Equal(t, "-10.0000", p.RealizedPnL.String())
}

func TestPositionFlip(t *testing.T) {
	p := NewPosition()
	p.ApplyFill(fill(schema.OrderSideBuy, 10, "4500.00", 100))
	// sell 15: close 10 at +1.00 each, open short 5 at 4501.00
	p.ApplyFill(fill(schema.OrderSideSell, 15, "4501.00", 200))

	require.Equal(t, schema.Quantity(-5), p.Size)
	require.True(t, p.IsShort())
	assert.Equal(t, "10.0000", p.RealizedPnL.String())
	assert.Equal(t, "4501.0000", p.AvgEntryPrice.String())
	assert.Equal(t, int64(200), p.OpenTsNano)
}

func TestPositionShortPnL(t *testing.T) {
	p := NewPosition()
	p.ApplyFill(fill(schema.OrderSideSell, 5, "4500.00", 100))
	p.UpdateUnrealized(schema.PriceFromFloat(4498.00))

	// short profits when price falls: 5 x 2.00
	assert.Equal(t, "10.0000", p.UnrealizedPnL.String())
}

func TestPositionCloseAtRealizesWithoutFill(t *testing.T) {
	p := NewPosition()
	p.ApplyFill(fill(schema.OrderSideBuy, 2, "4500.00", 100))
	p.UpdateUnrealized(schema.PriceFromFloat(4501.00))
	require.Equal(t, "2.0000", p.UnrealizedPnL.String())

	p.CloseAt(schema.PriceFromFloat(4501.00))

	require.True(t, p.IsFlat())
	assert.Equal(t, "2.0000", p.RealizedPnL.String())
	assert.Zero(t, p.UnrealizedPnL)
	assert.Zero(t, p.AvgEntryPrice)
	// no fill was applied on the close
	assert.Equal(t, uint32(1), p.NumFills)
}

func TestPositionTotalPnLIdentity(t *testing.T) {
	p := NewPosition()
	f := fill(schema.OrderSideBuy, 10, "4500.00", 100)
	f.Commission = schema.Fee(41800)
	p.ApplyFill(f)
	p.UpdateUnrealized(schema.PriceFromFloat(4501.00))

	want := p.RealizedPnL + p.UnrealizedPnL - schema.Notional(p.TotalCommission)
	assert.Equal(t, want, p.TotalPnL())
}

func TestMetricsStreaksAndProfitFactor(t *testing.T) {
	var m Metrics
	win := schema.Notional(100000)  // +10.0
	loss := schema.Notional(-50000) // -5.0

	m.RecordTrade(win, 1)
	m.RecordTrade(win, 1)
	m.RecordTrade(loss, 1)
	m.RecordTrade(win, 1)

	assert.Equal(t, uint32(4), m.TotalTrades)
	assert.Equal(t, uint32(3), m.WinningTrades)
	assert.Equal(t, uint32(1), m.LosingTrades)
	assert.Equal(t, uint32(2), m.MaxConsecutiveWins)
	assert.Equal(t, uint32(1), m.MaxConsecutiveLosses)
	assert.InDelta(t, 75.0, m.WinRate, 1e-9)
	// gross profit 30 / gross loss 5
	assert.InDelta(t, 6.0, m.ProfitFactor, 1e-9)
	assert.Equal(t, "25.0000", m.TotalPnL.String())
}

func TestMetricsDrawdownMonotonic(t *testing.T) {
	var m Metrics
	m.RecordTrade(schema.Notional(-100000), 1)
	first := m.MaxDrawdown
	m.RecordTrade(schema.Notional(50000), 1)
	assert.Equal(t, first, m.MaxDrawdown)
	m.RecordTrade(schema.Notional(-200000), 1)
	assert.Less(t, m.MaxDrawdown, first)
}
