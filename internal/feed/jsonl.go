package feed

import (
	"bufio"
	"context"
	"os"

	"main/internal/schema"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
)

const maxJSONLineSize = 1 << 20

// tickRecord is one JSONL line. Price and volume arrive as decimal
// strings so no precision is lost in transit.
type tickRecord struct {
	TsEventNano int64           `json:"ts"`
	SymbolID    uint32          `json:"symbol"`
	Level       string          `json:"level"`
	Kind        string          `json:"kind"`
	Op          string          `json:"op,omitempty"`
	Depth       uint8           `json:"depth,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Volume      int64           `json:"volume"`
	MarketMaker string          `json:"mm,omitempty"`
}

// JSONLSource reads one tick per line.
type JSONLSource struct {
	Path string
}

func (s JSONLSource) Load(ctx context.Context) ([]schema.Tick, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", s.Path)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxJSONLineSize)

	var ticks []schema.Tick
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var record tickRecord
		if err := sonic.Unmarshal(raw, &record); err != nil {
			return nil, errors.Wrapf(err, "%s line %d", s.Path, line)
		}
		tick, err := record.toTick()
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d", s.Path, line)
		}
		ticks = append(ticks, tick)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "scan %s", s.Path)
	}
	return ticks, nil
}

func (r tickRecord) toTick() (schema.Tick, error) {
	var t schema.Tick

	level, err := parseLevel(r.Level)
	if err != nil {
		return t, err
	}
	kind, err := parseKind(r.Kind)
	if err != nil {
		return t, err
	}
	op, err := parseOp(r.Op)
	if err != nil {
		return t, err
	}
	price, err := schema.ParsePrice(r.Price.String())
	if err != nil {
		return t, err
	}

	t = schema.Tick{
		SymbolID:    schema.SymbolID(r.SymbolID),
		Level:       level,
		Kind:        kind,
		Op:          op,
		Depth:       r.Depth,
		Price:       price,
		Volume:      schema.Quantity(r.Volume),
		TsEventNano: r.TsEventNano,
		MarketMaker: r.MarketMaker,
	}
	return t, nil
}
