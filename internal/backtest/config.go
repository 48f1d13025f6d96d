package backtest

import (
	"math"

	"main/internal/schema"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

const defaultBatchSize = 10_000

// CostConfig prices one executed contract.
type CostConfig struct {
	CommissionPerContract schema.Fee
	ExchangeFee           schema.Fee
	RegulatoryFee         schema.Fee
	MinimumFee            schema.Fee
}

// SlippageConfig parameterizes the fill price adjustment.
type SlippageConfig struct {
	Fixed        schema.Price
	VolumeCoef   float64
	MarketImpact float64
}

// Config holds everything one batch run needs. Invalid configuration
// is fatal at construction.
type Config struct {
	StartNano int64
	EndNano   int64

	InitialCapital schema.Notional

	TransactionCosts CostConfig
	Slippage         SlippageConfig

	FeedLatencyNs  int64
	OrderLatencyNs int64
	LatencySeed    int64

	MaxPositionSize schema.Quantity
	BatchSize       int
	Validation      bool
	DetailedLogging bool
}

// DefaultConfig mirrors a small index-futures setup.
func DefaultConfig() Config {
	return Config{
		EndNano:        math.MaxInt64,
		InitialCapital: schema.Notional(1_000_000 * schema.PriceScaleFactor),
		TransactionCosts: CostConfig{
			CommissionPerContract: schema.Fee(6_200), // 0.62
			ExchangeFee:           schema.Fee(3_500), // 0.35
			RegulatoryFee:         schema.Fee(300),   // 0.03
		},
		Slippage: SlippageConfig{
			Fixed:        schema.Price(2_500), // 0.25
			VolumeCoef:   0.001,
			MarketImpact: 0.0001,
		},
		FeedLatencyNs:   500_000,
		OrderLatencyNs:  1_000_000,
		MaxPositionSize: 10,
		BatchSize:       defaultBatchSize,
		Validation:      true,
	}
}

func (c Config) withDefaults() Config {
	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.EndNano == 0 {
		c.EndNano = math.MaxInt64
	}
	return c
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "InitialCapital must be > 0")
	}
	if c.StartNano > c.EndNano {
		return errors.Wrap(exception.ErrInvalidConfig, "StartNano is after EndNano")
	}
	if c.BatchSize <= 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "BatchSize must be > 0")
	}
	if c.TransactionCosts.CommissionPerContract < 0 ||
		c.TransactionCosts.ExchangeFee < 0 ||
		c.TransactionCosts.RegulatoryFee < 0 ||
		c.TransactionCosts.MinimumFee < 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "transaction costs must be >= 0")
	}
	if c.Slippage.Fixed < 0 || c.Slippage.VolumeCoef < 0 || c.Slippage.MarketImpact < 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "slippage coefficients must be >= 0")
	}
	if c.FeedLatencyNs < 0 || c.OrderLatencyNs < 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "latencies must be >= 0")
	}
	if c.MaxPositionSize < 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "MaxPositionSize must be >= 0")
	}
	return nil
}
