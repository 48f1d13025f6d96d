package schema

// DataLevel distinguishes top-of-book and depth market data.
type DataLevel uint16

const (
	LevelUnknown DataLevel = iota
	LevelL1
	LevelL2
)

// EventKind describes the meaning of a tick.
type EventKind uint16

const (
	KindUnknown EventKind = iota
	KindTrade
	KindBidQuote
	KindAskQuote
	KindBookReset
	KindImpliedBid
	KindImpliedAsk
)

// BookOp is the depth operation carried by L2 ticks.
type BookOp uint16

const (
	OpNone BookOp = iota
	OpAdd
	OpUpdate
	OpRemove
	OpReset
)

// Tick is one normalized market data event. Ticks are immutable after
// ingestion; the engines never modify them.
type Tick struct {
	SymbolID    SymbolID
	Level       DataLevel
	Kind        EventKind
	Op          BookOp
	Depth       uint8
	Flags       uint16
	Price       Price
	Volume      Quantity
	TsEventNano int64
	MarketMaker string
}

// IsTrade reports whether the tick is a trade print.
func (t Tick) IsTrade() bool {
	return t.Kind == KindTrade
}
