package backtest

import (
	"testing"

	"main/internal/strategy"
	"main/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepRunsVariantsIndependently(t *testing.T) {
	cheap := DefaultConfig()
	cheap.TransactionCosts.CommissionPerContract = 0
	cheap.TransactionCosts.ExchangeFee = 0
	cheap.TransactionCosts.RegulatoryFee = 0

	variants := []SweepVariant{
		{Name: "default", Config: DefaultConfig()},
		{Name: "no-commission", Config: cheap},
	}
	newStrategy := func() strategy.Strategy {
		return strategy.NewImbalance(strategy.ImbalanceConfig{Threshold: 0.6, TradeSize: 1})
	}

	results, err := RunSweep(t.Context(), variants, newStrategy, TickSlice(imbalanceRound()), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// results come back in variant order
	assert.Equal(t, "default", results[0].Name)
	assert.Equal(t, "no-commission", results[1].Name)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, uint64(4), r.Result.TicksProcessed)
	}

	// dropping commission strictly improves the outcome
	assert.Greater(t, results[1].Result.FinalEquity, results[0].Result.FinalEquity)
}

func TestSweepReportsVariantFailure(t *testing.T) {
	bad := DefaultConfig()
	bad.InitialCapital = -1

	variants := []SweepVariant{
		{Name: "good", Config: DefaultConfig()},
		{Name: "bad", Config: bad},
	}
	newStrategy := func() strategy.Strategy {
		return strategy.NewImbalance(strategy.ImbalanceConfig{})
	}

	results, err := RunSweep(t.Context(), variants, newStrategy, TickSlice(imbalanceRound()), 0)
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	require.ErrorIs(t, results[1].Err, exception.ErrInvalidConfig)

	best, ok := BestByReturn(results)
	require.True(t, ok)
	assert.Equal(t, "good", best.Name)
}

func TestSweepRequiresVariants(t *testing.T) {
	_, err := RunSweep(t.Context(), nil, nil, TickSlice(nil), 1)
	require.ErrorIs(t, err, exception.ErrInvalidConfig)
}
