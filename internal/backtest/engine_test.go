package backtest

import (
	"strings"
	"testing"

	"main/internal/schema"
	"main/internal/strategy"
	"main/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func l2Tick(kind schema.EventKind, op schema.BookOp, price float64, volume, ts int64) schema.Tick {
	return schema.Tick{
		SymbolID:    1,
		Level:       schema.LevelL2,
		Kind:        kind,
		Op:          op,
		Price:       schema.PriceFromFloat(price),
		Volume:      schema.Quantity(volume),
		TsEventNano: ts,
	}
}

// imbalanceRound builds a stream that opens a heavy-bid book, then
// flips the imbalance so the strategy enters long and exits.
func imbalanceRound() []schema.Tick {
	return []schema.Tick{
		l2Tick(schema.KindBidQuote, schema.OpAdd, 4500.00, 90, 1_000),
		l2Tick(schema.KindAskQuote, schema.OpAdd, 4500.25, 10, 2_000),
		l2Tick(schema.KindBidQuote, schema.OpUpdate, 4500.00, 10, 3_000),
		l2Tick(schema.KindAskQuote, schema.OpUpdate, 4500.25, 90, 4_000),
	}
}

func TestEngineRunsImbalanceRoundTrip(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	strat := strategy.NewImbalance(strategy.ImbalanceConfig{Threshold: 0.6, TradeSize: 1})
	result, err := engine.Run(t.Context(), strat, TickSlice(imbalanceRound()))
	require.NoError(t, err)

	assert.Equal(t, uint64(4), result.TicksProcessed)
	assert.Equal(t, uint64(2), result.Orders.OrdersFilled)
	assert.Equal(t, uint32(1), result.Trades.TotalTrades)
	require.True(t, strat.Position().IsFlat())

	// crossing the spread twice plus costs loses money
	assert.Less(t, result.FinalEquity, result.InitialCapital)
	assert.NotEmpty(t, result.EquityCurve)
	assert.Positive(t, result.TicksPerSecond)
}

func TestEngineWindowFiltersTicks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StartNano = 2_500
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	strat := strategy.NewImbalance(strategy.ImbalanceConfig{})
	result, err := engine.Run(t.Context(), strat, TickSlice(imbalanceRound()))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.TicksProcessed)
}

func TestEngineEmptyWindowFails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StartNano = 1_000_000
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	strat := strategy.NewImbalance(strategy.ImbalanceConfig{})
	_, err = engine.Run(t.Context(), strat, TickSlice(imbalanceRound()))
	require.ErrorIs(t, err, exception.ErrData)
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialCapital = 0
	_, err := NewEngine(cfg)
	require.ErrorIs(t, err, exception.ErrInvalidConfig)
}

func TestEnginePositionLimitBlocksEntries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPositionSize = 1
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	// trade size above the cap: every entry is dropped before execution
	strat := strategy.NewImbalance(strategy.ImbalanceConfig{Threshold: 0.6, TradeSize: 5})
	result, err := engine.Run(t.Context(), strat, TickSlice(imbalanceRound()))
	require.NoError(t, err)
	assert.Zero(t, result.Orders.OrdersFilled)
	assert.True(t, strat.Position().IsFlat())
}

func TestResultSummaryRenders(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	strat := strategy.NewImbalance(strategy.ImbalanceConfig{Threshold: 0.6, TradeSize: 1})
	result, err := engine.Run(t.Context(), strat, TickSlice(imbalanceRound()))
	require.NoError(t, err)

	s := result.Summary()
	assert.True(t, strings.Contains(s, "Total Trades:"))
	assert.True(t, strings.Contains(s, "Sharpe Ratio:"))
	assert.True(t, strings.Contains(s, "Ticks Processed:  4"))
}
