package feed

import (
	"context"
	"math"

	"main/internal/schema"
	"main/pkg/conn"

	"github.com/yanun0323/errors"
)

const saveBatchSize = 1000

// TickRow is the database representation of one tick.
type TickRow struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	SymbolID    uint32 `gorm:"index:idx_ticks_symbol_ts,priority:1"`
	TsEventNano int64  `gorm:"index:idx_ticks_symbol_ts,priority:2"`
	Level       uint16
	Kind        uint16
	Op          uint16
	Depth       uint8
	Flags       uint16
	Price       int64
	Volume      int64
	MarketMaker string `gorm:"size:16"`
}

// TableName implements the gorm naming hook.
func (TickRow) TableName() string { return "ticks" }

func rowFromTick(t schema.Tick) TickRow {
	return TickRow{
		SymbolID:    uint32(t.SymbolID),
		TsEventNano: t.TsEventNano,
		Level:       uint16(t.Level),
		Kind:        uint16(t.Kind),
		Op:          uint16(t.Op),
		Depth:       t.Depth,
		Flags:       t.Flags,
		Price:       int64(t.Price),
		Volume:      int64(t.Volume),
		MarketMaker: t.MarketMaker,
	}
}

func (r TickRow) toTick() schema.Tick {
	return schema.Tick{
		SymbolID:    schema.SymbolID(r.SymbolID),
		Level:       schema.DataLevel(r.Level),
		Kind:        schema.EventKind(r.Kind),
		Op:          schema.BookOp(r.Op),
		Depth:       r.Depth,
		Flags:       r.Flags,
		Price:       schema.Price(r.Price),
		Volume:      schema.Quantity(r.Volume),
		TsEventNano: r.TsEventNano,
		MarketMaker: r.MarketMaker,
	}
}

// Store persists ticks to PostgreSQL.
type Store struct {
	client *conn.Client
}

// NewStore wraps a database client.
func NewStore(client *conn.Client) *Store {
	return &Store{client: client}
}

// Migrate creates or updates the ticks table.
func (s *Store) Migrate(ctx context.Context) error {
	return errors.Wrap(s.client.DB().WithContext(ctx).AutoMigrate(&TickRow{}), "migrate ticks")
}

// SaveBatch inserts ticks in chunks.
func (s *Store) SaveBatch(ctx context.Context, ticks []schema.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	rows := make([]TickRow, 0, len(ticks))
	for _, t := range ticks {
		rows = append(rows, rowFromTick(t))
	}
	return errors.Wrap(
		s.client.DB().WithContext(ctx).CreateInBatches(rows, saveBatchSize).Error,
		"insert ticks")
}

// LoadRange reads ticks for one symbol inside [startNano, endNano],
// ordered by event time.
func (s *Store) LoadRange(ctx context.Context, symbolID schema.SymbolID, startNano, endNano int64) ([]schema.Tick, error) {
	if endNano == 0 {
		endNano = math.MaxInt64
	}
	var rows []TickRow
	err := s.client.DB().WithContext(ctx).
		Where("symbol_id = ? AND ts_event_nano BETWEEN ? AND ?", uint32(symbolID), startNano, endNano).
		Order("ts_event_nano asc").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "query ticks")
	}

	ticks := make([]schema.Tick, 0, len(rows))
	for _, r := range rows {
		ticks = append(ticks, r.toTick())
	}
	return ticks, nil
}

// Count reports the number of stored ticks for one symbol.
func (s *Store) Count(ctx context.Context, symbolID schema.SymbolID) (int64, error) {
	var count int64
	err := s.client.DB().WithContext(ctx).
		Model(&TickRow{}).
		Where("symbol_id = ?", uint32(symbolID)).
		Count(&count).Error
	return count, errors.Wrap(err, "count ticks")
}

// DBSource adapts a store query to the loader contract.
type DBSource struct {
	Store     *Store
	SymbolID  schema.SymbolID
	StartNano int64
	EndNano   int64
}

func (s DBSource) Load(ctx context.Context) ([]schema.Tick, error) {
	return s.Store.LoadRange(ctx, s.SymbolID, s.StartNano, s.EndNano)
}
