package book

import (
	"main/internal/schema"
)

// ProcessorStats counts applied operations.
type ProcessorStats struct {
	TotalUpdates  uint64
	AddOps        uint64
	UpdateOps     uint64
	RemoveOps     uint64
	BookResets    uint64
	CrossedEvents uint64
	TradePrints   uint64
}

// Processor applies normalized ticks to a book state.
type Processor struct {
	stats ProcessorStats
}

// Stats returns accumulated operation counters.
func (p *Processor) Stats() ProcessorStats { return p.stats }

// Apply mutates the state with one tick. Malformed input degrades
// instead of failing: an Update on a missing level becomes an Add.
func (p *Processor) Apply(st *State, t schema.Tick) {
	switch t.Level {
	case schema.LevelL2:
		if t.Op != schema.OpNone {
			p.applyL2(st, t)
		} else if t.Kind == schema.KindTrade {
			p.stats.TradePrints++
		}
	case schema.LevelL1:
		switch t.Kind {
		case schema.KindBidQuote:
			p.applyL1Quote(st, t, SideBid)
		case schema.KindAskQuote:
			p.applyL1Quote(st, t, SideAsk)
		case schema.KindBookReset:
			st.Clear(t.TsEventNano)
			p.stats.BookResets++
		case schema.KindTrade:
			p.stats.TradePrints++
		}
	}

	p.stats.TotalUpdates++
	st.sequence++
	st.lastUpdateNano = t.TsEventNano

	if st.IsCrossed() {
		p.stats.CrossedEvents++
	}
}

func (p *Processor) applyL2(st *State, t schema.Tick) {
	side := sideOf(t.Kind)

	switch t.Op {
	case schema.OpAdd:
		p.addLevel(st, side, t)
		p.stats.AddOps++
	case schema.OpUpdate:
		p.updateLevel(st, side, t)
		p.stats.UpdateOps++
	case schema.OpRemove:
		p.removeLevel(st, side, t.Price)
		p.stats.RemoveOps++
	case schema.OpReset:
		st.Clear(t.TsEventNano)
		p.stats.BookResets++
	}

	st.updateBestPrices()
}

// applyL1Quote replaces the single tracked level per side and sets the
// best price directly, bypassing the general recompute.
func (p *Processor) applyL1Quote(st *State, t schema.Tick, side Side) {
	l := st.sideLadder(side)

	var prevBest schema.Price
	var hadBest bool
	if side == SideBid {
		prevBest, hadBest = st.bestBid, st.hasBestBid
	} else {
		prevBest, hadBest = st.bestAsk, st.hasBestAsk
	}
	if hadBest && prevBest != t.Price {
		if lv, ok := l.remove(prevBest); ok {
			st.addSideVolume(side, -lv.Volume)
		}
	}

	if old := l.get(t.Price); old != nil {
		st.addSideVolume(side, t.Volume-old.Volume)
	} else {
		st.addSideVolume(side, t.Volume)
	}
	l.put(newPriceLevel(t.Price, t.Volume, t.TsEventNano, t.MarketMaker))

	if side == SideBid {
		st.bestBid, st.hasBestBid = t.Price, true
	} else {
		st.bestAsk, st.hasBestAsk = t.Price, true
	}
}

func (p *Processor) addLevel(st *State, side Side, t schema.Tick) {
	l := st.sideLadder(side)
	if lv := l.get(t.Price); lv != nil {
		lv.Volume += t.Volume
		lv.OrderCount++
		lv.LastUpdateNano = t.TsEventNano
		lv.attribute(t.MarketMaker)
	} else {
		l.put(newPriceLevel(t.Price, t.Volume, t.TsEventNano, t.MarketMaker))
	}
	st.addSideVolume(side, t.Volume)
}

func (p *Processor) updateLevel(st *State, side Side, t schema.Tick) {
	l := st.sideLadder(side)
	lv := l.get(t.Price)
	if lv == nil {
		p.addLevel(st, side, t)
		return
	}
	st.addSideVolume(side, t.Volume-lv.Volume)
	lv.Volume = t.Volume
	lv.LastUpdateNano = t.TsEventNano
	lv.attribute(t.MarketMaker)
	if lv.Volume <= 0 {
		l.remove(t.Price)
	}
}

func (p *Processor) removeLevel(st *State, side Side, price schema.Price) {
	if lv, ok := st.sideLadder(side).remove(price); ok {
		st.addSideVolume(side, -lv.Volume)
	}
}

// sideOf resolves the ladder from the event kind. Kinds that carry no
// side information fall back to the bid ladder; downstream runs depend
// on this exact default, keep it.
func sideOf(kind schema.EventKind) Side {
	switch kind {
	case schema.KindAskQuote, schema.KindImpliedAsk:
		return SideAsk
	default:
		return SideBid
	}
}
