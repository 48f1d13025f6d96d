package book

import (
	"sort"

	"main/internal/schema"
)

// Side marks which ladder a level belongs to.
type Side uint8

const (
	SideBid Side = iota
	SideAsk
)

func (s Side) String() string {
	if s == SideAsk {
		return "ask"
	}
	return "bid"
}

// PriceLevel aggregates outstanding volume at one price on one side.
type PriceLevel struct {
	Price          schema.Price
	Volume         schema.Quantity
	OrderCount     uint32
	MarketMakers   []string
	LastUpdateNano int64
}

func newPriceLevel(price schema.Price, volume schema.Quantity, tsNano int64, marketMaker string) PriceLevel {
	lv := PriceLevel{
		Price:          price,
		Volume:         volume,
		OrderCount:     1,
		LastUpdateNano: tsNano,
	}
	if marketMaker != "" {
		lv.MarketMakers = append(lv.MarketMakers, marketMaker)
	}
	return lv
}

func (lv *PriceLevel) attribute(marketMaker string) {
	if marketMaker == "" {
		return
	}
	for _, mm := range lv.MarketMakers {
		if mm == marketMaker {
			return
		}
	}
	lv.MarketMakers = append(lv.MarketMakers, marketMaker)
}

// ladder keeps levels sorted best-first: bids descending, asks ascending.
type ladder struct {
	levels     []PriceLevel
	descending bool
}

// search returns the insertion index for price and whether an exact
// level already exists there.
func (l *ladder) search(price schema.Price) (int, bool) {
	idx := sort.Search(len(l.levels), func(i int) bool {
		if l.descending {
			return l.levels[i].Price <= price
		}
		return l.levels[i].Price >= price
	})
	return idx, idx < len(l.levels) && l.levels[idx].Price == price
}

func (l *ladder) get(price schema.Price) *PriceLevel {
	idx, ok := l.search(price)
	if !ok {
		return nil
	}
	return &l.levels[idx]
}

func (l *ladder) put(lv PriceLevel) {
	idx, ok := l.search(lv.Price)
	if ok {
		l.levels[idx] = lv
		return
	}
	l.levels = append(l.levels, PriceLevel{})
	copy(l.levels[idx+1:], l.levels[idx:])
	l.levels[idx] = lv
}

// remove deletes the level at price and returns it.
func (l *ladder) remove(price schema.Price) (PriceLevel, bool) {
	idx, ok := l.search(price)
	if !ok {
		return PriceLevel{}, false
	}
	lv := l.levels[idx]
	l.levels = append(l.levels[:idx], l.levels[idx+1:]...)
	return lv, true
}

func (l *ladder) best() (schema.Price, bool) {
	if len(l.levels) == 0 {
		return 0, false
	}
	return l.levels[0].Price, true
}

func (l *ladder) clear() {
	l.levels = l.levels[:0]
}

// State is the full book snapshot for one instrument. Mutation goes
// through the Processor only.
type State struct {
	symbolID schema.SymbolID

	bids ladder
	asks ladder

	bestBid    schema.Price
	bestAsk    schema.Price
	hasBestBid bool
	hasBestAsk bool

	totalBidVolume schema.Quantity
	totalAskVolume schema.Quantity

	lastUpdateNano int64
	sequence       uint64
}

// NewState creates an empty book state.
func NewState(symbolID schema.SymbolID) *State {
	return &State{
		symbolID: symbolID,
		bids:     ladder{descending: true},
		asks:     ladder{},
	}
}

// SymbolID returns the instrument this state tracks.
func (s *State) SymbolID() schema.SymbolID { return s.symbolID }

// Sequence returns the monotonic mutation counter.
func (s *State) Sequence() uint64 { return s.sequence }

// LastUpdateNano returns the timestamp of the last applied tick.
func (s *State) LastUpdateNano() int64 { return s.lastUpdateNano }

// BestBid returns the highest bid price, if any.
func (s *State) BestBid() (schema.Price, bool) { return s.bestBid, s.hasBestBid }

// BestAsk returns the lowest ask price, if any.
func (s *State) BestAsk() (schema.Price, bool) { return s.bestAsk, s.hasBestAsk }

// TotalBidVolume returns the stored bid side volume total.
func (s *State) TotalBidVolume() schema.Quantity { return s.totalBidVolume }

// TotalAskVolume returns the stored ask side volume total.
func (s *State) TotalAskVolume() schema.Quantity { return s.totalAskVolume }

// Bids returns bid levels best-first. The slice is owned by the state;
// callers must not mutate it.
func (s *State) Bids() []PriceLevel { return s.bids.levels }

// Asks returns ask levels best-first. The slice is owned by the state;
// callers must not mutate it.
func (s *State) Asks() []PriceLevel { return s.asks.levels }

// BidDepth returns the bid ladder level count.
func (s *State) BidDepth() int { return len(s.bids.levels) }

// AskDepth returns the ask ladder level count.
func (s *State) AskDepth() int { return len(s.asks.levels) }

// LevelAt returns the level at a zero-based depth index on a side.
func (s *State) LevelAt(side Side, index int) (PriceLevel, bool) {
	l := s.sideLadder(side)
	if index < 0 || index >= len(l.levels) {
		return PriceLevel{}, false
	}
	return l.levels[index], true
}

// Spread returns best ask minus best bid when both sides are populated.
func (s *State) Spread() (schema.Price, bool) {
	if !s.hasBestBid || !s.hasBestAsk {
		return 0, false
	}
	return s.bestAsk - s.bestBid, true
}

// MidPrice returns (bid+ask)/2 when both sides are populated.
func (s *State) MidPrice() (schema.Price, bool) {
	if !s.hasBestBid || !s.hasBestAsk {
		return 0, false
	}
	return (s.bestBid + s.bestAsk) / 2, true
}

// Imbalance returns (bid_vol-ask_vol)/(bid_vol+ask_vol), 0 with no volume.
func (s *State) Imbalance() float64 {
	total := int64(s.totalBidVolume) + int64(s.totalAskVolume)
	if total == 0 {
		return 0
	}
	return float64(int64(s.totalBidVolume)-int64(s.totalAskVolume)) / float64(total)
}

// IsCrossed reports whether best bid >= best ask. A crossed book is
// counted and logged, never auto-corrected.
func (s *State) IsCrossed() bool {
	if !s.hasBestBid || !s.hasBestAsk {
		return false
	}
	return s.bestBid >= s.bestAsk
}

// Clear empties both ladders, resets aggregates and bumps the sequence.
func (s *State) Clear(tsNano int64) {
	s.bids.clear()
	s.asks.clear()
	s.hasBestBid = false
	s.hasBestAsk = false
	s.bestBid = 0
	s.bestAsk = 0
	s.totalBidVolume = 0
	s.totalAskVolume = 0
	s.lastUpdateNano = tsNano
	s.sequence++
}

// updateBestPrices recomputes best bid/ask from the ladders. Must run
// after every L2 structural change.
func (s *State) updateBestPrices() {
	s.bestBid, s.hasBestBid = s.bids.best()
	s.bestAsk, s.hasBestAsk = s.asks.best()
}

func (s *State) sideLadder(side Side) *ladder {
	if side == SideAsk {
		return &s.asks
	}
	return &s.bids
}

func (s *State) addSideVolume(side Side, delta schema.Quantity) {
	if side == SideAsk {
		s.totalAskVolume += delta
		return
	}
	s.totalBidVolume += delta
}
