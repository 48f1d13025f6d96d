package feed

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"main/internal/schema"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// csvColumns is the expected column order:
// ts_event_nano,symbol_id,level,kind,op,depth,price,volume,market_maker
const csvColumns = 9

// CSVSource reads ticks from a comma-separated file. A header row is
// skipped when the first column is not numeric. Prices parse through
// the decimal string path, never through float64.
type CSVSource struct {
	Path string
}

func (s CSVSource) Load(ctx context.Context) ([]schema.Tick, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", s.Path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = csvColumns
	reader.ReuseRecord = true

	var ticks []schema.Tick
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			return ticks, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", s.Path)
		}
		line++

		if line == 1 && !isNumeric(record[0]) {
			continue
		}

		tick, err := parseCSVRecord(record)
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d", s.Path, line)
		}
		ticks = append(ticks, tick)
	}
}

func parseCSVRecord(record []string) (schema.Tick, error) {
	var t schema.Tick

	ts, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return t, errors.Wrap(exception.ErrInvalidArgument, "ts_event_nano")
	}
	symbolID, err := strconv.ParseUint(record[1], 10, 32)
	if err != nil {
		return t, errors.Wrap(exception.ErrInvalidArgument, "symbol_id")
	}
	level, err := parseLevel(record[2])
	if err != nil {
		return t, err
	}
	kind, err := parseKind(record[3])
	if err != nil {
		return t, err
	}
	op, err := parseOp(record[4])
	if err != nil {
		return t, err
	}
	depth := uint64(0)
	if record[5] != "" {
		depth, err = strconv.ParseUint(record[5], 10, 8)
		if err != nil {
			return t, errors.Wrap(exception.ErrInvalidArgument, "depth")
		}
	}
	price, err := schema.ParsePrice(record[6])
	if err != nil {
		return t, err
	}
	volume, err := strconv.ParseInt(record[7], 10, 64)
	if err != nil {
		return t, errors.Wrap(exception.ErrInvalidArgument, "volume")
	}

	t = schema.Tick{
		SymbolID:    schema.SymbolID(symbolID),
		Level:       level,
		Kind:        kind,
		Op:          op,
		Depth:       uint8(depth),
		Price:       price,
		Volume:      schema.Quantity(volume),
		TsEventNano: ts,
		MarketMaker: record[8],
	}
	return t, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if c == '-' && i == 0 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
