package recorder

import (
	"os"
	"path/filepath"
	"testing"

	"main/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTicks(t *testing.T, dir string, ticks []schema.Tick) {
	t.Helper()
	w, err := NewWriter(DefaultConfig(dir))
	require.NoError(t, err)
	for _, tick := range ticks {
		require.NoError(t, w.AppendTick(tick, 1, tick.TsEventNano+10))
	}
	require.NoError(t, w.Close())
}

func TestJournalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ticks := []schema.Tick{
		{SymbolID: 1, Level: schema.LevelL2, Kind: schema.KindBidQuote, Op: schema.OpAdd, Price: 45000000, Volume: 100, TsEventNano: 1000},
		{SymbolID: 1, Level: schema.LevelL2, Kind: schema.KindAskQuote, Op: schema.OpAdd, Price: 45002500, Volume: 80, TsEventNano: 2000},
		{SymbolID: 1, Kind: schema.KindTrade, Price: 45001250, Volume: 5, TsEventNano: 3000},
	}
	writeTicks(t, dir, ticks)

	p, err := NewPlayback(PlaybackConfig{Dir: dir})
	require.NoError(t, err)

	var got []schema.Tick
	var seqs []uint64
	err = p.RunTicks(t.Context(), func(h schema.EventHeader, tick schema.Tick) error {
		got = append(got, tick)
		seqs = append(seqs, h.Seq)
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, ticks, got)
	assert.Equal(t, []uint64{1, 2, 3}, seqs)
}

func TestJournalSegmentRotation(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.SegmentMaxBytes = 200

	w, err := NewWriter(cfg)
	require.NoError(t, err)
	for i := range 10 {
		require.NoError(t, w.AppendTick(schema.Tick{SymbolID: 1, TsEventNano: int64(i)}, 1, 0))
	}
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Greater(t, len(entries), 1)

	p, err := NewPlayback(PlaybackConfig{Dir: dir})
	require.NoError(t, err)
	var count int
	var lastSeq uint64
	err = p.RunTicks(t.Context(), func(h schema.EventHeader, _ schema.Tick) error {
		count++
		require.Greater(t, h.Seq, lastSeq)
		lastSeq = h.Seq
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestJournalDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	writeTicks(t, dir, []schema.Tick{{SymbolID: 1, Price: 100, TsEventNano: 1}})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	path := filepath.Join(dir, entries[0].Name())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[recordHeaderSize+3] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	p, err := NewPlayback(PlaybackConfig{Dir: dir})
	require.NoError(t, err)
	err = p.Run(t.Context(), func(schema.EventHeader, []byte) error { return nil })
	require.ErrorIs(t, err, ErrChecksumMismatch)
}
