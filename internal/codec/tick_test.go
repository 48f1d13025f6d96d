package codec

import (
	"testing"

	"main/internal/schema"
)

func TestEncodeDecodeTick(t *testing.T) {
	in := schema.Tick{
		SymbolID:    7,
		Level:       schema.LevelL2,
		Kind:        schema.KindBidQuote,
		Op:          schema.OpUpdate,
		Depth:       3,
		Flags:       0x01,
		Price:       45001250,
		Volume:      120,
		TsEventNano: 1_700_000_000_123_456_789,
		MarketMaker: "MM01",
	}

	buf := EncodeTick(nil, in)
	if len(buf) != TickPayloadSize {
		t.Fatalf("payload size mismatch: got %d want %d", len(buf), TickPayloadSize)
	}

	out, ok := DecodeTick(buf)
	if !ok {
		t.Fatalf("decode failed")
	}
	if out != in {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestEncodeTickTruncatesMarketMaker(t *testing.T) {
	in := schema.Tick{
		SymbolID:    1,
		Kind:        schema.KindAskQuote,
		MarketMaker: "A_VERY_LONG_MARKET_MAKER_NAME",
	}
	out, ok := DecodeTick(EncodeTick(nil, in))
	if !ok {
		t.Fatalf("decode failed")
	}
	if len(out.MarketMaker) != mmFieldSize {
		t.Fatalf("market maker not truncated: %q", out.MarketMaker)
	}
}

func TestDecodeTickShortBuffer(t *testing.T) {
	if _, ok := DecodeTick(make([]byte, TickPayloadSize-1)); ok {
		t.Fatalf("expected short buffer to fail")
	}
}

func TestEncodeDecodeFill(t *testing.T) {
	in := schema.Fill{
		OrderID:    "1f1e9577-8db7-4d07-b87a-1a6e201a2c8b",
		SymbolID:   7,
		TsNano:     1_700_000_000_000_000_042,
		Price:      45047600,
		Quantity:   10,
		Side:       schema.OrderSideBuy,
		Commission: 41800,
		Slippage:   47600,
	}

	buf := EncodeFill(nil, in)
	if len(buf) != FillPayloadSize {
		t.Fatalf("payload size mismatch: got %d want %d", len(buf), FillPayloadSize)
	}

	out, ok := DecodeFill(buf)
	if !ok {
		t.Fatalf("decode failed")
	}
	if out != in {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}
