package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const TickPayloadSize = 56

// mmFieldSize bounds the market maker identifier stored in a payload.
// Longer identifiers are truncated on encode.
const mmFieldSize = 16

// EncodeTick serializes a tick into a fixed-size payload.
func EncodeTick(dst []byte, t schema.Tick) []byte {
	if cap(dst) < TickPayloadSize {
		dst = make([]byte, TickPayloadSize)
	} else {
		dst = dst[:TickPayloadSize]
	}

	mm := t.MarketMaker
	if len(mm) > mmFieldSize {
		mm = mm[:mmFieldSize]
	}

	binary.LittleEndian.PutUint32(dst[0:4], uint32(t.SymbolID))
	binary.LittleEndian.PutUint16(dst[4:6], uint16(t.Level))
	binary.LittleEndian.PutUint16(dst[6:8], uint16(t.Kind))
	binary.LittleEndian.PutUint16(dst[8:10], uint16(t.Op))
	dst[10] = t.Depth
	dst[11] = byte(len(mm))
	binary.LittleEndian.PutUint16(dst[12:14], t.Flags)
	dst[14] = 0
	dst[15] = 0
	binary.LittleEndian.PutUint64(dst[16:24], uint64(t.Price))
	binary.LittleEndian.PutUint64(dst[24:32], uint64(t.Volume))
	binary.LittleEndian.PutUint64(dst[32:40], uint64(t.TsEventNano))
	for i := range dst[40:56] {
		dst[40+i] = 0
	}
	copy(dst[40:56], mm)

	return dst
}

// DecodeTick parses a fixed-size tick payload.
func DecodeTick(src []byte) (schema.Tick, bool) {
	if len(src) < TickPayloadSize {
		return schema.Tick{}, false
	}
	mmLen := int(src[11])
	if mmLen > mmFieldSize {
		return schema.Tick{}, false
	}
	var mm string
	if mmLen > 0 {
		mm = string(src[40 : 40+mmLen])
	}
	return schema.Tick{
		SymbolID:    schema.SymbolID(binary.LittleEndian.Uint32(src[0:4])),
		Level:       schema.DataLevel(binary.LittleEndian.Uint16(src[4:6])),
		Kind:        schema.EventKind(binary.LittleEndian.Uint16(src[6:8])),
		Op:          schema.BookOp(binary.LittleEndian.Uint16(src[8:10])),
		Depth:       src[10],
		Flags:       binary.LittleEndian.Uint16(src[12:14]),
		Price:       schema.Price(int64(binary.LittleEndian.Uint64(src[16:24]))),
		Volume:      schema.Quantity(int64(binary.LittleEndian.Uint64(src[24:32]))),
		TsEventNano: int64(binary.LittleEndian.Uint64(src[32:40])),
		MarketMaker: mm,
	}, true
}
