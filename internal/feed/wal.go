package feed

import (
	"context"

	"main/internal/recorder"
	"main/internal/schema"
)

// WALSource drains a journal directory at full speed.
type WALSource struct {
	Dir        string
	FilePrefix string
}

func (s WALSource) Load(ctx context.Context) ([]schema.Tick, error) {
	playback, err := recorder.NewPlayback(recorder.PlaybackConfig{
		Dir:        s.Dir,
		FilePrefix: s.FilePrefix,
	})
	if err != nil {
		return nil, err
	}

	var ticks []schema.Tick
	err = playback.RunTicks(ctx, func(_ schema.EventHeader, t schema.Tick) error {
		ticks = append(ticks, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticks, nil
}
