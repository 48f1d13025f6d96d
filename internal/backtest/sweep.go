package backtest

import (
	"context"
	"runtime"
	"sync"

	"main/internal/strategy"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// SweepVariant names one configuration in a parameter sweep.
type SweepVariant struct {
	Name   string
	Config Config
}

// SweepResult pairs a variant with its run outcome.
type SweepResult struct {
	Name   string
	Result Result
	Err    error
}

// RunSweep runs every variant over the same tick set in parallel.
// Each worker owns an independent engine and strategy so variants
// never share mutable state; results come back in variant order. The
// tick source is loaded once and shared read-only.
func RunSweep(ctx context.Context, variants []SweepVariant, newStrategy func() strategy.Strategy, source TickSource, workers int) ([]SweepResult, error) {
	if len(variants) == 0 {
		return nil, errors.Wrap(exception.ErrInvalidConfig, "no sweep variants")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(variants) {
		workers = len(variants)
	}

	ticks, err := source.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(exception.ErrData, err.Error())
	}
	shared := TickSlice(ticks)

	results := make([]SweepResult, len(variants))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = runVariant(ctx, variants[i], newStrategy(), shared)
			}
		}()
	}

	for i := range variants {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, r := range results {
		if r.Err != nil {
			logs.Warnf("sweep variant %s failed, err: %+v", r.Name, r.Err)
		}
	}
	return results, nil
}

func runVariant(ctx context.Context, v SweepVariant, strat strategy.Strategy, ticks TickSlice) SweepResult {
	engine, err := NewEngine(v.Config)
	if err != nil {
		return SweepResult{Name: v.Name, Err: err}
	}
	result, err := engine.Run(ctx, strat, ticks)
	return SweepResult{Name: v.Name, Result: result, Err: err}
}

// BestByReturn picks the successful variant with the highest total
// return. The second return is false when every variant failed.
func BestByReturn(results []SweepResult) (SweepResult, bool) {
	best := SweepResult{}
	found := false
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if !found || r.Result.TotalReturn > best.Result.TotalReturn {
			best = r
			found = true
		}
	}
	return best, found
}
