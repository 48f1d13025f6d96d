package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"main/internal/book"
	"main/internal/bus"
	"main/internal/codec"
	"main/internal/feed"
	"main/internal/obs"
	"main/internal/recorder"
	"main/internal/schema"
)

func main() {
	// convert mode
	input := flag.String("input", "", "Tick file to convert into a journal")
	format := flag.String("format", "csv", "Input format: csv|jsonl")
	outDir := flag.String("out", "", "Journal output directory for conversion")

	// replay mode
	dir := flag.String("dir", "", "Journal directory to replay")
	prefix := flag.String("prefix", "", "Journal file prefix (default: ticks)")
	speed := flag.Float64("speed", 0, "Playback speed (1=real-time, 0=no pacing)")
	noChecksum := flag.Bool("no-checksum", false, "Disable checksum validation")
	queueCap := flag.Int("queue", 4096, "Tick queue capacity")
	source := flag.Uint("source", 1, "Source ID stamped on converted records")
	traceSeed := flag.Uint64("trace-seed", 0, "Trace ID seed (0=time-based)")
	flag.Parse()

	ctx := context.Background()

	switch {
	case *input != "":
		if *outDir == "" {
			log.Fatalf("-out is required for conversion")
		}
		if err := convert(ctx, *input, *format, *outDir, uint16(*source), *traceSeed); err != nil {
			log.Fatalf("convert failed: %v", err)
		}

	case *dir != "":
		cfg := recorder.PlaybackConfig{
			Dir:             *dir,
			FilePrefix:      *prefix,
			Speed:           *speed,
			DisableChecksum: *noChecksum,
		}
		if err := replay(ctx, cfg, *queueCap); err != nil {
			log.Fatalf("replay failed: %v", err)
		}

	default:
		log.Fatalf("either -input (convert) or -dir (replay) is required")
	}
}

// convert loads a tick file and journals it with trace IDs assigned.
func convert(ctx context.Context, input, format, outDir string, source uint16, traceSeed uint64) error {
	var loader feed.Source
	switch format {
	case "csv":
		loader = feed.CSVSource{Path: input}
	case "jsonl":
		loader = feed.JSONLSource{Path: input}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	ticks, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	writer, err := recorder.NewWriter(recorder.Config{Dir: outDir})
	if err != nil {
		return err
	}

	traces := obs.NewTraceGenerator(traceSeed)
	var payload []byte
	for i, tick := range ticks {
		payload = codec.EncodeTick(payload, tick)
		header := schema.NewHeader(schema.EventTick, source, uint64(i)+1, tick.TsEventNano, tick.TsEventNano)
		header.TraceID = traces.Next()
		if err := writer.Append(header, payload); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	fmt.Printf("converted %d ticks into %s\n", len(ticks), outDir)
	return nil
}

// replay drives journal playback through the queue into the books.
func replay(ctx context.Context, cfg recorder.PlaybackConfig, queueCap int) error {
	playback, err := recorder.NewPlayback(cfg)
	if err != nil {
		return err
	}

	metrics := obs.NewMetrics()
	queue := bus.NewQueue(queueCap)
	manager := book.NewManager()

	done := make(chan struct{})
	go func() {
		defer close(done)
		queue.Run(ctx, func(e bus.Event) {
			start := time.Now()
			manager.ProcessTick(e.Tick)
			metrics.ObserveApply(time.Since(start))
		})
	}()

	runErr := playback.RunTicks(ctx, func(header schema.EventHeader, tick schema.Tick) error {
		metrics.ObserveEvent(header)
		metrics.ObserveTick(tick)
		return queue.Publish(ctx, bus.Event{Header: header, Tick: tick})
	})
	queue.Close()
	<-done
	if runErr != nil {
		return runErr
	}

	fmt.Print(manager.Report())
	printMetrics(metrics.Snapshot())
	return nil
}

func printMetrics(snap obs.Snapshot) {
	fmt.Printf("--- Pipeline ---\n")
	fmt.Printf("Ticks Replayed:  %d\n", snap.EventCounts[schema.EventTick])
	fmt.Printf("Trade Prints:    %d\n", snap.TradePrints)
	fmt.Printf("Queue Drops:     %d\n", snap.QueueDrops)
	if snap.ApplyLatency.Count > 0 {
		fmt.Printf("Apply Latency:   avg=%s min=%s max=%s\n",
			snap.ApplyLatency.Avg, snap.ApplyLatency.Min, snap.ApplyLatency.Max)
	}
	if snap.IngestLatency.Count > 0 {
		fmt.Printf("Ingest Latency:  avg=%s min=%s max=%s\n",
			snap.IngestLatency.Avg, snap.IngestLatency.Min, snap.IngestLatency.Max)
	}
}
