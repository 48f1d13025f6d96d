package ops

import (
	"os"
	"path/filepath"
	"testing"

	"main/internal/feed"
	"main/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  "registry": {
    "venues": [{"name": "sim"}],
    "symbols": [
      {"name": "ESZ5", "venue": "sim", "tickSize": "0.25", "multiplier": 50}
    ]
  },
  "backtest": {
    "initialCapital": "250000",
    "costs": {"perContract": "0.62", "exchange": "0.35", "regulatory": "0.03"},
    "slippage": {"fixed": "0.25", "volumeCoef": 0.001, "marketImpact": 0.0001},
    "latencySeed": 42,
    "maxPositionSize": 5
  },
  "strategy": {"threshold": 0.7, "minSpread": "0.25", "tradeSize": 2},
  "feed": {"type": "csv", "path": "ticks.csv"},
  "journal": {"dir": "journal", "filePrefix": "ticks"}
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadResolvesAllSections(t *testing.T) {
	loaded, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	id, ok := loaded.Registry.SymbolIDByName("ESZ5")
	require.True(t, ok)
	sym, ok := loaded.Registry.Symbol(id)
	require.True(t, ok)
	assert.Equal(t, "0.2500", sym.TickSize.String())
	assert.Equal(t, int64(50), sym.Multiplier)

	assert.Equal(t, "250000.0000", loaded.Backtest.InitialCapital.String())
	assert.Equal(t, "0.6200", loaded.Backtest.TransactionCosts.CommissionPerContract.String())
	assert.Equal(t, schema.Quantity(5), loaded.Backtest.MaxPositionSize)
	assert.Equal(t, int64(42), loaded.Backtest.LatencySeed)
	// defaults survive when the file leaves them out
	assert.True(t, loaded.Backtest.Validation)
	assert.Equal(t, int64(500_000), loaded.Backtest.FeedLatencyNs)

	assert.InDelta(t, 0.7, loaded.Strategy.Threshold, 1e-9)
	assert.Equal(t, schema.Quantity(2), loaded.Strategy.TradeSize)

	assert.Equal(t, "csv", loaded.Feed.Type)
	assert.Equal(t, "journal", loaded.Journal.Dir)
}

func TestLoadRejectsUnknownVenue(t *testing.T) {
	bad := `{
  "registry": {
    "venues": [{"name": "sim"}],
    "symbols": [{"name": "ESZ5", "venue": "ghost", "tickSize": "0.25"}]
  },
  "feed": {"type": "csv", "path": "ticks.csv"}
}`
	_, err := Load(writeConfig(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "venue not found")
}

func TestLoadRejectsMissingFeed(t *testing.T) {
	bad := `{"registry": {"venues": [{"name": "sim"}]}}`
	_, err := Load(writeConfig(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed.type")
}

func TestLoadRejectsBadFeedType(t *testing.T) {
	bad := `{"feed": {"type": "carrier-pigeon"}}`
	_, err := Load(writeConfig(t, bad))
	require.Error(t, err)
}

func TestBuildSourceForFileTypes(t *testing.T) {
	loaded, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	source, closer, err := BuildSource(loaded)
	require.NoError(t, err)
	defer closer()

	_, ok := source.(feed.CSVSource)
	assert.True(t, ok)
}

func TestLoadRegistryOnly(t *testing.T) {
	reg, err := LoadRegistry(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, 1, reg.SymbolCount())
}
