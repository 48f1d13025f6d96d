package book

import (
	"testing"

	"main/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func l2(kind schema.EventKind, op schema.BookOp, price string, volume int64, ts int64) schema.Tick {
	p, err := schema.ParsePrice(price)
	if err != nil {
		panic(err)
	}
	return schema.Tick{
		SymbolID:    1,
		Level:       schema.LevelL2,
		Kind:        kind,
		Op:          op,
		Price:       p,
		Volume:      schema.Quantity(volume),
		TsEventNano: ts,
	}
}

func l1(kind schema.EventKind, price string, volume int64, ts int64) schema.Tick {
	t := l2(kind, schema.OpNone, price, volume, ts)
	t.Level = schema.LevelL1
	return t
}

func TestSpreadMidImbalance(t *testing.T) {
	st := NewState(1)
	var p Processor
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4500.00", 100, 1))
	p.Apply(st, l2(schema.KindAskQuote, schema.OpAdd, "4500.25", 80, 2))

	spread, ok := st.Spread()
	require.True(t, ok)
	assert.Equal(t, "0.2500", spread.String())

	mid, ok := st.MidPrice()
	require.True(t, ok)
	assert.Equal(t, "4500.1250", mid.String())

	assert.InDelta(t, float64(100-80)/float64(180), st.Imbalance(), 1e-9)
	assert.False(t, st.IsCrossed())
}

func TestBestPricesTrackLadderExtremes(t *testing.T) {
	st := NewState(1)
	var p Processor
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4499.75", 10, 1))
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4500.00", 10, 2))
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4499.50", 10, 3))
	p.Apply(st, l2(schema.KindAskQuote, schema.OpAdd, "4500.50", 10, 4))
	p.Apply(st, l2(schema.KindAskQuote, schema.OpAdd, "4500.25", 10, 5))

	bid, ok := st.BestBid()
	require.True(t, ok)
	assert.Equal(t, "4500.0000", bid.String())
	ask, ok := st.BestAsk()
	require.True(t, ok)
	assert.Equal(t, "4500.2500", ask.String())

	// bids strictly descending, asks strictly ascending
	bids := st.Bids()
	for i := 1; i < len(bids); i++ {
		require.Less(t, bids[i].Price, bids[i-1].Price)
	}
	asks := st.Asks()
	for i := 1; i < len(asks); i++ {
		require.Greater(t, asks[i].Price, asks[i-1].Price)
	}

	p.Apply(st, l2(schema.KindBidQuote, schema.OpRemove, "4500.00", 0, 6))
	bid, ok = st.BestBid()
	require.True(t, ok)
	assert.Equal(t, "4499.7500", bid.String())
}

func TestUpdateThenRemoveSequence(t *testing.T) {
	st := NewState(1)
	var p Processor
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4500.00", 10, 1))
	p.Apply(st, l2(schema.KindBidQuote, schema.OpUpdate, "4500.00", 20, 2))

	afterUpdate := st.TotalBidVolume()
	require.Equal(t, schema.Quantity(20), afterUpdate)

	p.Apply(st, l2(schema.KindBidQuote, schema.OpRemove, "4500.00", 0, 3))
	assert.Equal(t, afterUpdate-20, st.TotalBidVolume())
	assert.Zero(t, st.BidDepth())
}

func TestUpdateMissingLevelDegradesToAdd(t *testing.T) {
	st := NewState(1)
	var p Processor
	p.Apply(st, l2(schema.KindAskQuote, schema.OpUpdate, "4501.00", 15, 1))

	require.Equal(t, 1, st.AskDepth())
	lv, ok := st.LevelAt(SideAsk, 0)
	require.True(t, ok)
	assert.Equal(t, schema.Quantity(15), lv.Volume)
	assert.Equal(t, schema.Quantity(15), st.TotalAskVolume())
}

func TestAddRemoveRestoresSideVolume(t *testing.T) {
	st := NewState(1)
	var p Processor
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4499.00", 30, 1))
	before := st.TotalBidVolume()

	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4499.50", 12, 2))
	p.Apply(st, l2(schema.KindBidQuote, schema.OpRemove, "4499.50", 0, 3))
	assert.Equal(t, before, st.TotalBidVolume())
}

func TestAmbiguousKindDefaultsToBid(t *testing.T) {
	st := NewState(1)
	var p Processor
	p.Apply(st, l2(schema.KindTrade, schema.OpAdd, "4500.00", 7, 1))

	assert.Equal(t, 1, st.BidDepth())
	assert.Zero(t, st.AskDepth())
	assert.Equal(t, schema.Quantity(7), st.TotalBidVolume())
}

func TestResetClearsAndIsIdempotent(t *testing.T) {
	st := NewState(1)
	var p Processor
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4500.00", 10, 1))
	p.Apply(st, l2(schema.KindAskQuote, schema.OpAdd, "4500.25", 10, 2))

	p.Apply(st, l2(schema.KindBookReset, schema.OpReset, "0", 0, 3))
	assertEmpty := func() {
		t.Helper()
		assert.Zero(t, st.BidDepth())
		assert.Zero(t, st.AskDepth())
		assert.Zero(t, st.TotalBidVolume())
		assert.Zero(t, st.TotalAskVolume())
		_, ok := st.BestBid()
		assert.False(t, ok)
		_, ok = st.BestAsk()
		assert.False(t, ok)
	}
	assertEmpty()

	p.Apply(st, l2(schema.KindBookReset, schema.OpReset, "0", 0, 4))
	assertEmpty()
}

func TestL1QuoteReplacesBestDirectly(t *testing.T) {
	st := NewState(1)
	var p Processor
	p.Apply(st, l1(schema.KindBidQuote, "4500.00", 10, 1))
	p.Apply(st, l1(schema.KindBidQuote, "4500.25", 12, 2))

	require.Equal(t, 1, st.BidDepth())
	bid, ok := st.BestBid()
	require.True(t, ok)
	assert.Equal(t, "4500.2500", bid.String())
	assert.Equal(t, schema.Quantity(12), st.TotalBidVolume())

	p.Apply(st, l1(schema.KindAskQuote, "4500.50", 9, 3))
	ask, ok := st.BestAsk()
	require.True(t, ok)
	assert.Equal(t, "4500.5000", ask.String())
}

func TestCrossedBookDetectedNotCorrected(t *testing.T) {
	st := NewState(1)
	var p Processor
	p.Apply(st, l2(schema.KindBidQuote, schema.OpAdd, "4500.50", 10, 1))
	p.Apply(st, l2(schema.KindAskQuote, schema.OpAdd, "4500.25", 10, 2))

	assert.True(t, st.IsCrossed())
	assert.Equal(t, uint64(1), p.Stats().CrossedEvents)
	// the ladders stay as delivered
	assert.Equal(t, 1, st.BidDepth())
	assert.Equal(t, 1, st.AskDepth())
}
