package schema

// OrderSide describes order direction.
type OrderSide uint16

const (
	OrderSideUnknown OrderSide = iota
	OrderSideBuy
	OrderSideSell
)

// Opposite returns the other side.
func (s OrderSide) Opposite() OrderSide {
	switch s {
	case OrderSideBuy:
		return OrderSideSell
	case OrderSideSell:
		return OrderSideBuy
	default:
		return OrderSideUnknown
	}
}

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "buy"
	case OrderSideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// OrderType describes order type.
type OrderType uint16

const (
	OrderTypeUnknown OrderType = iota
	OrderTypeMarket
	OrderTypeLimit
	OrderTypeStop
	OrderTypeStopLimit
)

// TimeInForce describes order time-in-force.
type TimeInForce uint16

const (
	TimeInForceUnknown TimeInForce = iota
	TimeInForceGTC
	TimeInForceIOC
	TimeInForceFOK
)

// Order is a strategy-issued instruction for the fill simulator.
type Order struct {
	ID          string
	SymbolID    SymbolID
	Type        OrderType
	Side        OrderSide
	Quantity    Quantity
	LimitPrice  Price
	StopPrice   Price
	TimeInForce TimeInForce
	TsNano      int64
	Tag         string
}

// Fill is the immutable result of a simulated execution.
type Fill struct {
	OrderID    string
	SymbolID   SymbolID
	TsNano     int64
	Price      Price
	Quantity   Quantity
	Side       OrderSide
	Commission Fee
	Slippage   Price
}
