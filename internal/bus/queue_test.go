package bus

import (
	"context"
	"testing"
	"time"

	"main/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(seq uint64) Event {
	return Event{
		Header: schema.NewHeader(schema.EventTick, 1, seq, int64(seq), int64(seq)+10),
		Tick:   schema.Tick{SymbolID: 1, TsEventNano: int64(seq)},
	}
}

func TestQueuePublishAndDrain(t *testing.T) {
	q := NewQueue(8)
	for seq := uint64(1); seq <= 3; seq++ {
		require.NoError(t, q.TryPublish(event(seq)))
	}
	q.Close()

	var got []uint64
	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()
	q.Run(ctx, func(e Event) {
		got = append(got, e.Header.Seq)
	})
	assert.Equal(t, []uint64{1, 2, 3}, got)
}

func TestQueueFullDoesNotBlock(t *testing.T) {
	q := NewQueue(1)
	require.NoError(t, q.TryPublish(event(1)))
	require.ErrorIs(t, q.TryPublish(event(2)), ErrQueueFull)
	assert.Equal(t, 1, q.Len())
}

func TestQueueClosedRejectsPublish(t *testing.T) {
	q := NewQueue(1)
	q.Close()
	require.ErrorIs(t, q.TryPublish(event(1)), ErrQueueClosed)
	require.ErrorIs(t, q.Publish(t.Context(), event(1)), ErrQueueClosed)
}

func TestQueueBlockingPublishHonorsContext(t *testing.T) {
	q := NewQueue(1)
	require.NoError(t, q.Publish(t.Context(), event(1)))

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	err := q.Publish(ctx, event(2))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
