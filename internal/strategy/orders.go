package strategy

import (
	"main/internal/schema"

	"github.com/google/uuid"
)

// NewMarketOrder builds an immediate-or-cancel market order.
func NewMarketOrder(symbolID schema.SymbolID, side schema.OrderSide, quantity schema.Quantity, tsNano int64) *schema.Order {
	return &schema.Order{
		ID:          uuid.NewString(),
		SymbolID:    symbolID,
		Type:        schema.OrderTypeMarket,
		Side:        side,
		Quantity:    quantity,
		TimeInForce: schema.TimeInForceIOC,
		TsNano:      tsNano,
	}
}

// NewLimitOrder builds a good-till-cancel limit order.
func NewLimitOrder(symbolID schema.SymbolID, side schema.OrderSide, quantity schema.Quantity, limit schema.Price, tsNano int64) *schema.Order {
	return &schema.Order{
		ID:          uuid.NewString(),
		SymbolID:    symbolID,
		Type:        schema.OrderTypeLimit,
		Side:        side,
		Quantity:    quantity,
		LimitPrice:  limit,
		TimeInForce: schema.TimeInForceGTC,
		TsNano:      tsNano,
	}
}

// NewStopOrder builds a good-till-cancel stop order.
func NewStopOrder(symbolID schema.SymbolID, side schema.OrderSide, quantity schema.Quantity, stop schema.Price, tsNano int64) *schema.Order {
	return &schema.Order{
		ID:          uuid.NewString(),
		SymbolID:    symbolID,
		Type:        schema.OrderTypeStop,
		Side:        side,
		Quantity:    quantity,
		StopPrice:   stop,
		TimeInForce: schema.TimeInForceGTC,
		TsNano:      tsNano,
	}
}

// NewStopLimitOrder builds a good-till-cancel stop-limit order.
func NewStopLimitOrder(symbolID schema.SymbolID, side schema.OrderSide, quantity schema.Quantity, stop, limit schema.Price, tsNano int64) *schema.Order {
	return &schema.Order{
		ID:          uuid.NewString(),
		SymbolID:    symbolID,
		Type:        schema.OrderTypeStopLimit,
		Side:        side,
		Quantity:    quantity,
		StopPrice:   stop,
		LimitPrice:  limit,
		TimeInForce: schema.TimeInForceGTC,
		TsNano:      tsNano,
	}
}

// WithTag labels an order for strategy bookkeeping.
func WithTag(o *schema.Order, tag string) *schema.Order {
	o.Tag = tag
	return o
}
