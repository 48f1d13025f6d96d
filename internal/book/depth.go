package book

import (
	"main/internal/schema"
)

// DepthLevel is one (price, volume) pair of a depth snapshot.
type DepthLevel struct {
	Price  schema.Price
	Volume schema.Quantity
}

// Depth is a bounded snapshot of both ladders, best-first.
type Depth struct {
	TsNano int64
	Bids   []DepthLevel
	Asks   []DepthLevel
	Levels int
}

// SnapshotDepth copies up to maxLevels per side from the state.
func SnapshotDepth(st *State, maxLevels int) Depth {
	d := Depth{
		TsNano: st.LastUpdateNano(),
		Levels: maxLevels,
	}
	for i, lv := range st.Bids() {
		if i >= maxLevels {
			break
		}
		d.Bids = append(d.Bids, DepthLevel{Price: lv.Price, Volume: lv.Volume})
	}
	for i, lv := range st.Asks() {
		if i >= maxLevels {
			break
		}
		d.Asks = append(d.Asks, DepthLevel{Price: lv.Price, Volume: lv.Volume})
	}
	return d
}

// WeightedAveragePrice returns the average fill price of walking volume
// into one side of the snapshot. False when no volume is available.
func (d Depth) WeightedAveragePrice(volume schema.Quantity, side Side) (schema.Price, bool) {
	levels := d.Bids
	if side == SideAsk {
		levels = d.Asks
	}

	remaining := volume
	var totalValue schema.Notional
	var totalVolume schema.Quantity
	for _, lv := range levels {
		fill := remaining
		if lv.Volume < fill {
			fill = lv.Volume
		}
		totalValue += schema.Notional(int64(lv.Price) * int64(fill))
		totalVolume += fill
		remaining -= fill
		if remaining <= 0 {
			break
		}
	}

	if totalVolume <= 0 {
		return 0, false
	}
	return schema.Price(int64(totalValue) / int64(totalVolume)), true
}

// MarketImpact returns the absolute distance between the walked average
// price and the best price on that side.
func (d Depth) MarketImpact(volume schema.Quantity, side Side) (schema.Price, bool) {
	levels := d.Bids
	if side == SideAsk {
		levels = d.Asks
	}
	if len(levels) == 0 {
		return 0, false
	}
	best := levels[0].Price

	avg, ok := d.WeightedAveragePrice(volume, side)
	if !ok {
		return 0, false
	}

	impact := avg - best
	if impact < 0 {
		impact = -impact
	}
	return impact, true
}
