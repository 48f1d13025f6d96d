package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const FillPayloadSize = 88

// idFieldSize bounds the order ID stored in a payload. UUID strings are
// 36 bytes; the extra room covers tagged IDs.
const idFieldSize = 40

// EncodeFill serializes a fill into a fixed-size payload.
func EncodeFill(dst []byte, f schema.Fill) []byte {
	if cap(dst) < FillPayloadSize {
		dst = make([]byte, FillPayloadSize)
	} else {
		dst = dst[:FillPayloadSize]
	}

	id := f.OrderID
	if len(id) > idFieldSize {
		id = id[:idFieldSize]
	}

	binary.LittleEndian.PutUint32(dst[0:4], uint32(f.SymbolID))
	binary.LittleEndian.PutUint16(dst[4:6], uint16(f.Side))
	dst[6] = byte(len(id))
	dst[7] = 0
	binary.LittleEndian.PutUint64(dst[8:16], uint64(f.TsNano))
	binary.LittleEndian.PutUint64(dst[16:24], uint64(f.Price))
	binary.LittleEndian.PutUint64(dst[24:32], uint64(f.Quantity))
	binary.LittleEndian.PutUint64(dst[32:40], uint64(f.Commission))
	binary.LittleEndian.PutUint64(dst[40:48], uint64(f.Slippage))
	for i := range dst[48:88] {
		dst[48+i] = 0
	}
	copy(dst[48:88], id)

	return dst
}

// DecodeFill parses a fixed-size fill payload.
func DecodeFill(src []byte) (schema.Fill, bool) {
	if len(src) < FillPayloadSize {
		return schema.Fill{}, false
	}
	idLen := int(src[6])
	if idLen > idFieldSize {
		return schema.Fill{}, false
	}
	var id string
	if idLen > 0 {
		id = string(src[48 : 48+idLen])
	}
	return schema.Fill{
		OrderID:    id,
		SymbolID:   schema.SymbolID(binary.LittleEndian.Uint32(src[0:4])),
		Side:       schema.OrderSide(binary.LittleEndian.Uint16(src[4:6])),
		TsNano:     int64(binary.LittleEndian.Uint64(src[8:16])),
		Price:      schema.Price(int64(binary.LittleEndian.Uint64(src[16:24]))),
		Quantity:   schema.Quantity(int64(binary.LittleEndian.Uint64(src[24:32]))),
		Commission: schema.Fee(int64(binary.LittleEndian.Uint64(src[32:40]))),
		Slippage:   schema.Price(int64(binary.LittleEndian.Uint64(src[40:48]))),
	}, true
}
