package book

import (
	"testing"

	"main/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDepthState(t *testing.T) *State {
	t.Helper()
	st := NewState(1)
	var p Processor
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4500.00", 10, 1))
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4499.75", 20, 2))
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4499.50", 30, 3))
	p.Apply(st, l2(schema.KindAskQuote, schema.OpAdd, "4500.25", 10, 4))
	p.Apply(st, l2(schema.KindAskQuote, schema.OpAdd, "4500.50", 40, 5))
	return st
}

func TestSnapshotDepthLimitsLevels(t *testing.T) {
	st := buildDepthState(t)
	d := SnapshotDepth(st, 2)

	require.Len(t, d.Bids, 2)
	require.Len(t, d.Asks, 2)
	assert.Equal(t, "4500.0000", d.Bids[0].Price.String())
	assert.Equal(t, "4499.7500", d.Bids[1].Price.String())
	assert.Equal(t, "4500.2500", d.Asks[0].Price.String())
}

func TestWeightedAveragePriceWalksLevels(t *testing.T) {
	st := buildDepthState(t)
	d := SnapshotDepth(st, 10)

	// 10 @ 4500.00 fills entirely at the best bid
	avg, ok := d.WeightedAveragePrice(10, SideBid)
	require.True(t, ok)
	assert.Equal(t, "4500.0000", avg.String())

	// 30 = 10 @ 4500.00 + 20 @ 4499.75
	avg, ok = d.WeightedAveragePrice(30, SideBid)
	require.True(t, ok)
	want := (int64(45000000)*10 + int64(44997500)*20) / 30
	assert.Equal(t, schema.Price(want), avg)
}

func TestWeightedAveragePriceEmptySide(t *testing.T) {
	d := SnapshotDepth(NewState(1), 10)
	_, ok := d.WeightedAveragePrice(10, SideAsk)
	assert.False(t, ok)
}

func TestMarketImpact(t *testing.T) {
	st := buildDepthState(t)
	d := SnapshotDepth(st, 10)

	// volume inside the best level has no impact
	impact, ok := d.MarketImpact(5, SideAsk)
	require.True(t, ok)
	assert.Zero(t, impact)

	// 20 = 10 @ 4500.25 + 10 @ 4500.50
	impact, ok = d.MarketImpact(20, SideAsk)
	require.True(t, ok)
	avg := (int64(45002500)*10 + int64(45005000)*10) / 20
	assert.Equal(t, schema.Price(avg-45002500), impact)
}
