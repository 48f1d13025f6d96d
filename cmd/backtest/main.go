package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"main/internal/backtest"
	"main/internal/ops"
	"main/internal/strategy"

	"github.com/bytedance/sonic"
	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/pkg/sys"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	mode := flag.String("mode", "batch", "Engine mode: batch|hft")
	reportPath := flag.String("report", "", "Write the run report as JSON to this path")
	equityPath := flag.String("equity", "", "Write the equity curve as JSON to this path")
	profile := flag.Bool("profile", false, "Enable continuous profiling")
	profileAddr := flag.String("profile-addr", "http://localhost:4040", "Profiling server address")
	flag.Parse()

	if *configPath == "" {
		log.Fatalf("-config is required")
	}

	if *profile {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "backtest",
			ServerAddress:   *profileAddr,
			Logger:          emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
			},
		})
		if err != nil {
			log.Fatalf("profiler start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	source, closeSource, err := ops.BuildSource(loaded)
	if err != nil {
		log.Fatalf("feed init failed: %v", err)
	}
	defer closeSource()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sys.Shutdown()
		cancel()
	}()

	strat := strategy.NewImbalance(loaded.Strategy)

	var result backtest.Result
	switch *mode {
	case "batch":
		engine, err := backtest.NewEngine(loaded.Backtest)
		if err != nil {
			log.Fatalf("engine init failed: %v", err)
		}
		result, err = engine.Run(ctx, strat, source)
		if err != nil {
			log.Fatalf("run failed: %v", err)
		}

	case "hft":
		engine, err := backtest.NewHFTEngine(backtest.HFTConfig{Config: loaded.Backtest})
		if err != nil {
			log.Fatalf("engine init failed: %v", err)
		}
		ticks, err := source.Load(ctx)
		if err != nil {
			log.Fatalf("feed load failed: %v", err)
		}
		result, err = engine.Run(ctx, strat, ticks)
		if err != nil {
			log.Fatalf("run failed: %v", err)
		}

	default:
		log.Fatalf("unknown mode: %s", *mode)
	}

	fmt.Print(result.Summary())

	if *reportPath != "" {
		if err := writeJSON(*reportPath, buildReport(result)); err != nil {
			log.Fatalf("report write failed: %v", err)
		}
	}
	if *equityPath != "" {
		if err := writeJSON(*equityPath, result.EquityCurve); err != nil {
			log.Fatalf("equity write failed: %v", err)
		}
	}
}

// report is the JSON shape of a run. Money fields serialize as decimal
// strings.
type report struct {
	InitialCapital string  `json:"initialCapital"`
	FinalEquity    string  `json:"finalEquity"`
	TotalReturn    float64 `json:"totalReturn"`
	MaxDrawdown    float64 `json:"maxDrawdown"`
	SharpeRatio    float64 `json:"sharpeRatio"`
	SortinoRatio   float64 `json:"sortinoRatio"`
	CalmarRatio    float64 `json:"calmarRatio"`

	TotalTrades  uint32  `json:"totalTrades"`
	WinRate      float64 `json:"winRate"`
	ProfitFactor float64 `json:"profitFactor"`
	TotalPnL     string  `json:"totalPnl"`

	OrdersSubmitted uint64 `json:"ordersSubmitted"`
	OrdersFilled    uint64 `json:"ordersFilled"`
	OrdersRejected  uint64 `json:"ordersRejected"`
	Commission      string `json:"commission"`

	TicksProcessed uint64  `json:"ticksProcessed"`
	TicksPerSecond float64 `json:"ticksPerSecond"`
	DurationMs     int64   `json:"durationMs"`
}

func buildReport(r backtest.Result) report {
	return report{
		InitialCapital:  r.InitialCapital.String(),
		FinalEquity:     r.FinalEquity.String(),
		TotalReturn:     r.TotalReturn,
		MaxDrawdown:     r.MaxDrawdown,
		SharpeRatio:     r.SharpeRatio,
		SortinoRatio:    r.SortinoRatio,
		CalmarRatio:     r.CalmarRatio,
		TotalTrades:     r.Trades.TotalTrades,
		WinRate:         r.Trades.WinRate,
		ProfitFactor:    r.Trades.ProfitFactor,
		TotalPnL:        r.Trades.TotalPnL.String(),
		OrdersSubmitted: r.Orders.OrdersSubmitted,
		OrdersFilled:    r.Orders.OrdersFilled,
		OrdersRejected:  r.Orders.OrdersRejected,
		Commission:      r.Orders.TotalCommission.String(),
		TicksProcessed:  r.TicksProcessed,
		TicksPerSecond:  r.TicksPerSecond,
		DurationMs:      r.Duration.Milliseconds(),
	}
}

func writeJSON(path string, v any) error {
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
