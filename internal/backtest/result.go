package backtest

import (
	"fmt"
	"strings"
	"time"

	"main/internal/schema"
	"main/internal/strategy"
)

// Result is everything a finished run produced.
type Result struct {
	InitialCapital schema.Notional
	FinalEquity    schema.Notional
	TotalReturn    float64

	Trades strategy.Metrics
	Orders ExecutorStats

	SharpeRatio  float64
	SortinoRatio float64
	CalmarRatio  float64
	MaxDrawdown  float64

	TicksProcessed uint64
	Duration       time.Duration
	TicksPerSecond float64

	EquityCurve []EquityPoint
}

func buildResult(cfg Config, perf *Performance, trades strategy.Metrics, orders ExecutorStats, ticks uint64, elapsed time.Duration) Result {
	r := Result{
		InitialCapital: cfg.InitialCapital,
		FinalEquity:    perf.FinalEquity(),
		TotalReturn:    perf.TotalReturn(),
		Trades:         trades,
		Orders:         orders,
		SharpeRatio:    perf.SharpeRatio(),
		SortinoRatio:   perf.SortinoRatio(),
		CalmarRatio:    perf.CalmarRatio(),
		MaxDrawdown:    perf.MaxDrawdown(),
		TicksProcessed: ticks,
		Duration:       elapsed,
		EquityCurve:    perf.EquityCurve(),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		r.TicksPerSecond = float64(ticks) / secs
	}
	return r
}

// Summary renders the result as a readable report.
func (r Result) Summary() string {
	var b strings.Builder
	b.WriteString("=== Backtest Result ===\n")
	fmt.Fprintf(&b, "Initial Capital:  %s\n", r.InitialCapital)
	fmt.Fprintf(&b, "Final Equity:     %s\n", r.FinalEquity)
	fmt.Fprintf(&b, "Total Return:     %.2f%%\n", r.TotalReturn*100)
	fmt.Fprintf(&b, "Max Drawdown:     %.2f%%\n", r.MaxDrawdown*100)
	fmt.Fprintf(&b, "Sharpe Ratio:     %.3f\n", r.SharpeRatio)
	fmt.Fprintf(&b, "Sortino Ratio:    %.3f\n", r.SortinoRatio)
	fmt.Fprintf(&b, "Calmar Ratio:     %.3f\n", r.CalmarRatio)
	b.WriteString("--- Trades ---\n")
	fmt.Fprintf(&b, "Total Trades:     %d\n", r.Trades.TotalTrades)
	fmt.Fprintf(&b, "Win Rate:         %.1f%%\n", r.Trades.WinRate)
	fmt.Fprintf(&b, "Profit Factor:    %.2f\n", r.Trades.ProfitFactor)
	fmt.Fprintf(&b, "Total P&L:        %s\n", r.Trades.TotalPnL)
	b.WriteString("--- Execution ---\n")
	fmt.Fprintf(&b, "Orders Submitted: %d\n", r.Orders.OrdersSubmitted)
	fmt.Fprintf(&b, "Orders Filled:    %d\n", r.Orders.OrdersFilled)
	fmt.Fprintf(&b, "Orders Rejected:  %d\n", r.Orders.OrdersRejected)
	fmt.Fprintf(&b, "Commission Paid:  %s\n", r.Orders.TotalCommission)
	fmt.Fprintf(&b, "Slippage Paid:    %s\n", r.Orders.TotalSlippage)
	b.WriteString("--- Throughput ---\n")
	fmt.Fprintf(&b, "Ticks Processed:  %d\n", r.TicksProcessed)
	fmt.Fprintf(&b, "Elapsed:          %s\n", r.Duration)
	fmt.Fprintf(&b, "Ticks/Second:     %.0f\n", r.TicksPerSecond)
	return b.String()
}
