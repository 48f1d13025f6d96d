package feed

import (
	"context"
	"math/rand"

	"main/internal/schema"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// SyntheticConfig shapes the generated stream.
type SyntheticConfig struct {
	SymbolID    schema.SymbolID
	Count       int
	StartNano   int64
	IntervalNs  int64
	BasePrice   schema.Price
	TickSize    schema.Price
	BaseVolume  schema.Quantity
	TradeEvery  int
	Seed        int64
	WalkStepMax int
}

func (c SyntheticConfig) withDefaults() SyntheticConfig {
	if c.SymbolID == 0 {
		c.SymbolID = 1
	}
	if c.IntervalNs == 0 {
		c.IntervalNs = 1_000_000
	}
	if c.BasePrice == 0 {
		c.BasePrice = schema.PriceFromFloat(4500.00)
	}
	if c.TickSize == 0 {
		c.TickSize = schema.PriceFromFloat(0.25)
	}
	if c.BaseVolume == 0 {
		c.BaseVolume = 10
	}
	if c.TradeEvery == 0 {
		c.TradeEvery = 5
	}
	if c.WalkStepMax == 0 {
		c.WalkStepMax = 2
	}
	return c
}

// SyntheticSource generates a seeded random-walk stream: alternating
// bid and ask quote updates one tick apart, with a trade print every
// TradeEvery events. Same seed, same stream.
type SyntheticSource struct {
	Config SyntheticConfig
}

func (s SyntheticSource) Load(ctx context.Context) ([]schema.Tick, error) {
	cfg := s.Config.withDefaults()
	if cfg.Count <= 0 {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "synthetic count must be > 0")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	mid := cfg.BasePrice
	ts := cfg.StartNano

	ticks := make([]schema.Tick, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ts += cfg.IntervalNs

		// drift the mid by up to WalkStepMax ticks either way
		step := rng.Intn(2*cfg.WalkStepMax+1) - cfg.WalkStepMax
		mid += schema.Price(step) * cfg.TickSize
		if mid < cfg.TickSize {
			mid = cfg.TickSize
		}

		volume := cfg.BaseVolume + schema.Quantity(rng.Intn(int(cfg.BaseVolume)))

		switch {
		case cfg.TradeEvery > 0 && (i+1)%cfg.TradeEvery == 0:
			ticks = append(ticks, schema.Tick{
				SymbolID:    cfg.SymbolID,
				Level:       schema.LevelL1,
				Kind:        schema.KindTrade,
				Price:       mid,
				Volume:      1 + schema.Quantity(rng.Intn(3)),
				TsEventNano: ts,
			})
		case i%2 == 0:
			ticks = append(ticks, schema.Tick{
				SymbolID:    cfg.SymbolID,
				Level:       schema.LevelL2,
				Kind:        schema.KindBidQuote,
				Op:          schema.OpUpdate,
				Price:       mid - cfg.TickSize,
				Volume:      volume,
				TsEventNano: ts,
			})
		default:
			ticks = append(ticks, schema.Tick{
				SymbolID:    cfg.SymbolID,
				Level:       schema.LevelL2,
				Kind:        schema.KindAskQuote,
				Op:          schema.OpUpdate,
				Price:       mid + cfg.TickSize,
				Volume:      volume,
				TsEventNano: ts,
			})
		}
	}
	return ticks, nil
}
